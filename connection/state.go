package connection

import "fmt"

// Name length bounds for connection configuration.
const (
	minNameLength = 3
	maxNameLength = 64
)

// DefaultPriority orders webhook connections among other connection types
// when the configuration does not override it.
const DefaultPriority = 100

// State is the validated, human-editable configuration of a webhook
// connection. ValidateState is the only producer of State values.
type State struct {
	// Name labels the connection and derives the synthetic sender identity.
	Name string `json:"name"`

	// TransformationFunction is the source of the user-supplied payload
	// transformation script. Empty means the heuristic formatter is used.
	TransformationFunction string `json:"transformationFunction,omitempty"`

	// PayloadSchema optionally constrains inbound payloads with a JSON
	// Schema. Failing payloads take the fail-soft fallback path.
	PayloadSchema map[string]any `json:"payloadSchema,omitempty"`

	// Priority overrides the connection ordering. 0 means DefaultPriority.
	Priority int `json:"priority,omitempty"`
}

// ValidationError is a bad-request-class configuration error. It is surfaced
// to the provisioning or config-update caller, never to the room.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("hookbridge: invalid %s: %s", e.Field, e.Message)
}

// ValidateState checks raw connection configuration. allowScripts is the
// server-wide policy flag; supplying a transformation function while it is
// false is rejected.
func ValidateState(raw map[string]any, allowScripts bool) (*State, error) {
	name, ok := raw["name"].(string)
	if !ok || name == "" {
		return nil, &ValidationError{Field: "name", Message: "required and must be a string"}
	}
	if len(name) < minNameLength || len(name) > maxNameLength {
		return nil, &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("must be between %d and %d characters", minNameLength, maxNameLength),
		}
	}

	st := &State{Name: name}

	if tf, present := raw["transformationFunction"]; present && tf != nil {
		if !allowScripts {
			return nil, &ValidationError{
				Field:   "transformationFunction",
				Message: "transformation functions are not enabled on this bridge",
			}
		}
		src, ok := tf.(string)
		if !ok {
			return nil, &ValidationError{Field: "transformationFunction", Message: "must be a string"}
		}
		st.TransformationFunction = src
	}

	if ps, present := raw["payloadSchema"]; present && ps != nil {
		obj, ok := ps.(map[string]any)
		if !ok {
			return nil, &ValidationError{Field: "payloadSchema", Message: "must be an object"}
		}
		st.PayloadSchema = obj
	}

	if p, present := raw["priority"]; present && p != nil {
		switch n := p.(type) {
		case float64:
			st.Priority = int(n)
		case int:
			st.Priority = n
		default:
			return nil, &ValidationError{Field: "priority", Message: "must be a number"}
		}
	}

	return st, nil
}

// Content serializes the state back into state-event content.
func (s *State) Content() map[string]any {
	content := map[string]any{"name": s.Name}
	if s.TransformationFunction != "" {
		content["transformationFunction"] = s.TransformationFunction
	}
	if s.PayloadSchema != nil {
		content["payloadSchema"] = s.PayloadSchema
	}
	if s.Priority != 0 {
		content["priority"] = s.Priority
	}
	return content
}
