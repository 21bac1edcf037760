package api

// ---------------------------------------------------------------------------
// Connection requests
// ---------------------------------------------------------------------------

// CreateConnectionForgeRequest binds path + body for PUT /rooms/:roomId/connections.
type CreateConnectionForgeRequest struct {
	RoomID                 string         `description:"Room identifier"                  path:"roomId"`
	Name                   string         `description:"Connection name"                  json:"name"`
	TransformationFunction string         `description:"JavaScript transformation source" json:"transformationFunction,omitempty"`
	PayloadSchema          map[string]any `description:"JSON Schema payload guard"        json:"payloadSchema,omitempty"`
	Priority               int            `description:"Connection ordering priority"     json:"priority,omitempty"`
}

// ListConnectionsForgeRequest binds the path for GET /rooms/:roomId/connections.
type ListConnectionsForgeRequest struct {
	RoomID string `description:"Room identifier" path:"roomId"`
}

// ConnectionForgeRequest binds the path for single-connection operations.
type ConnectionForgeRequest struct {
	RoomID   string `description:"Room identifier"            path:"roomId"`
	StateKey string `description:"Connection state event key" path:"stateKey"`
}

// UpdateConnectionForgeRequest binds path + body for PATCH /rooms/:roomId/connections/:stateKey.
type UpdateConnectionForgeRequest struct {
	RoomID                 string         `description:"Room identifier"                  path:"roomId"`
	StateKey               string         `description:"Connection state event key"       path:"stateKey"`
	Name                   string         `description:"Connection name"                  json:"name,omitempty"`
	TransformationFunction string         `description:"JavaScript transformation source" json:"transformationFunction,omitempty"`
	PayloadSchema          map[string]any `description:"JSON Schema payload guard"        json:"payloadSchema,omitempty"`
	Priority               int            `description:"Connection ordering priority"     json:"priority,omitempty"`
}

// ListRecentEventsForgeRequest binds path + query for GET /rooms/:roomId/connections/:stateKey/events.
type ListRecentEventsForgeRequest struct {
	RoomID   string `description:"Room identifier"            path:"roomId"`
	StateKey string `description:"Connection state event key" path:"stateKey"`
	Limit    int    `description:"Page size (default 100)"    query:"limit"`
}
