package connection_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/xraph/hookbridge/connection"
)

func TestValidateState(t *testing.T) {
	tests := []struct {
		name         string
		raw          map[string]any
		allowScripts bool
		wantField    string
	}{
		{
			name: "valid minimal",
			raw:  map[string]any{"name": "alerts"},
		},
		{
			name:      "missing name",
			raw:       map[string]any{},
			wantField: "name",
		},
		{
			name:      "name not a string",
			raw:       map[string]any{"name": 42},
			wantField: "name",
		},
		{
			name:      "name too short",
			raw:       map[string]any{"name": "ab"},
			wantField: "name",
		},
		{
			name:      "name too long",
			raw:       map[string]any{"name": strings.Repeat("x", 65)},
			wantField: "name",
		},
		{
			name: "name at upper bound",
			raw:  map[string]any{"name": strings.Repeat("x", 64)},
		},
		{
			name:      "script while scripts disabled",
			raw:       map[string]any{"name": "alerts", "transformationFunction": "result = 'hi';"},
			wantField: "transformationFunction",
		},
		{
			name:         "script while scripts enabled",
			raw:          map[string]any{"name": "alerts", "transformationFunction": "result = 'hi';"},
			allowScripts: true,
		},
		{
			name:         "script not a string",
			raw:          map[string]any{"name": "alerts", "transformationFunction": 7},
			allowScripts: true,
			wantField:    "transformationFunction",
		},
		{
			name: "nil script ignored",
			raw:  map[string]any{"name": "alerts", "transformationFunction": nil},
		},
		{
			name:      "payload schema not an object",
			raw:       map[string]any{"name": "alerts", "payloadSchema": "nope"},
			wantField: "payloadSchema",
		},
		{
			name: "payload schema object",
			raw:  map[string]any{"name": "alerts", "payloadSchema": map[string]any{"type": "object"}},
		},
		{
			name:      "priority not a number",
			raw:       map[string]any{"name": "alerts", "priority": "high"},
			wantField: "priority",
		},
		{
			name: "priority as json number",
			raw:  map[string]any{"name": "alerts", "priority": float64(5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := connection.ValidateState(tt.raw, tt.allowScripts)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateState() error = %v", err)
				}
				if st == nil {
					t.Fatal("ValidateState() returned nil state")
				}
				return
			}

			var verr *connection.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateState() error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestStateContentRoundTrip(t *testing.T) {
	raw := map[string]any{
		"name":                   "alerts",
		"transformationFunction": "result = 'hi';",
		"payloadSchema":          map[string]any{"type": "object"},
		"priority":               float64(7),
	}

	st, err := connection.ValidateState(raw, true)
	if err != nil {
		t.Fatalf("ValidateState() error = %v", err)
	}

	content := st.Content()
	st2, err := connection.ValidateState(content, true)
	if err != nil {
		t.Fatalf("ValidateState(Content()) error = %v", err)
	}

	if st2.Name != st.Name || st2.TransformationFunction != st.TransformationFunction || st2.Priority != st.Priority {
		t.Errorf("round trip mismatch: got %+v, want %+v", st2, st)
	}
}
