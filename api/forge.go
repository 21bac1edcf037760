package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/connection"
	"github.com/xraph/hookbridge/webhook"
)

// ForgeAPI wires the Forge-style admin handlers together. It covers the
// provisioning surface only; the public inbound webhook endpoint is served by
// Handler, because webhook senders post arbitrary bodies that do not fit a
// request schema.
type ForgeAPI struct {
	bridge *hookbridge.Bridge
	log    forge.Logger
}

// NewForgeAPI creates a ForgeAPI from a Bridge.
func NewForgeAPI(b *hookbridge.Bridge, log forge.Logger) *ForgeAPI {
	return &ForgeAPI{
		bridge: b,
		log:    log,
	}
}

// RegisterRoutes registers the Hookbridge admin API routes into the given
// Forge router with full OpenAPI metadata.
func (a *ForgeAPI) RegisterRoutes(router forge.Router) {
	a.registerConnectionRoutes(router)
}

// ---------------------------------------------------------------------------
// Connection routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerConnectionRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("connections"))

	if err := g.PUT("/rooms/:roomId/connections", a.createConnection,
		forge.WithSummary("Create connection"),
		forge.WithDescription("Provisions a webhook connection in a room and returns its secret hook URL."),
		forge.WithOperationID("createConnection"),
		forge.WithRequestSchema(CreateConnectionForgeRequest{}),
		forge.WithCreatedResponse(connection.Details{}),
		forge.WithErrorResponses(),
	); err != nil {
		// Log the error and continue registering other routes instead of failing completely.
		// This ensures that if one route has an issue, the rest of the API remains available.
		// The error will be caught during testing or can be monitored via logs.
		a.log.Error("Failed to register createConnection route", forge.Error(err))
	}

	if err := g.GET("/rooms/:roomId/connections", a.listConnections,
		forge.WithSummary("List connections"),
		forge.WithDescription("Returns all webhook connections in a room, without secrets."),
		forge.WithOperationID("listConnections"),
		forge.WithRequestSchema(ListConnectionsForgeRequest{}),
		forge.WithListResponse(connection.Details{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listConnections route", forge.Error(err))
	}

	if err := g.GET("/rooms/:roomId/connections/:stateKey", a.getConnection,
		forge.WithSummary("Get connection"),
		forge.WithDescription("Returns details of a specific connection, including its hook URL."),
		forge.WithOperationID("getConnection"),
		forge.WithResponseSchema(http.StatusOK, "Connection details", connection.Details{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getConnection route", forge.Error(err))
	}

	if err := g.PATCH("/rooms/:roomId/connections/:stateKey", a.updateConnection,
		forge.WithSummary("Update connection"),
		forge.WithDescription("Applies a partial configuration update to a connection."),
		forge.WithOperationID("updateConnection"),
		forge.WithRequestSchema(UpdateConnectionForgeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Connection details", connection.Details{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register updateConnection route", forge.Error(err))
	}

	if err := g.DELETE("/rooms/:roomId/connections/:stateKey", a.deleteConnection,
		forge.WithSummary("Remove connection"),
		forge.WithDescription("Removes a connection. Its hook URL stops accepting webhooks."),
		forge.WithOperationID("deleteConnection"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register deleteConnection route", forge.Error(err))
	}

	if err := g.GET("/rooms/:roomId/connections/:stateKey/events", a.listRecentEvents,
		forge.WithSummary("List recent webhook events"),
		forge.WithDescription("Returns the most recent webhook deliveries recorded for a connection."),
		forge.WithOperationID("listRecentEvents"),
		forge.WithRequestSchema(ListRecentEventsForgeRequest{}),
		forge.WithListResponse(webhook.Event{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listRecentEvents route", forge.Error(err))
	}
}

func (a *ForgeAPI) createConnection(ctx forge.Context, req *CreateConnectionForgeRequest) (*connection.Details, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	config := map[string]any{
		"name": req.Name,
	}
	if req.TransformationFunction != "" {
		config["transformationFunction"] = req.TransformationFunction
	}
	if req.PayloadSchema != nil {
		config["payloadSchema"] = req.PayloadSchema
	}
	if req.Priority != 0 {
		config["priority"] = req.Priority
	}

	conn, err := a.bridge.Provision(ctx.Context(), req.RoomID, config)
	if err != nil {
		return nil, mapError(err)
	}

	// The hook URL is only ever returned here, to the provisioner.
	details := conn.Details(true)

	err = ctx.JSON(http.StatusCreated, details)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.JSON.
	return nil, nil
}

func (a *ForgeAPI) listConnections(ctx forge.Context, req *ListConnectionsForgeRequest) ([]connection.Details, error) {
	conns := a.bridge.Connections().ForRoom(req.RoomID)

	details := make([]connection.Details, len(conns))
	for i, conn := range conns {
		details[i] = conn.Details(false)
	}

	return details, nil
}

func (a *ForgeAPI) getConnection(ctx forge.Context, req *ConnectionForgeRequest) (*connection.Details, error) {
	conn, err := a.findConnection(req.RoomID, req.StateKey)
	if err != nil {
		return nil, err
	}

	details := conn.Details(true)
	return &details, nil
}

func (a *ForgeAPI) updateConnection(ctx forge.Context, req *UpdateConnectionForgeRequest) (*connection.Details, error) {
	conn, err := a.findConnection(req.RoomID, req.StateKey)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if req.Name != "" {
		patch["name"] = req.Name
	}
	if req.TransformationFunction != "" {
		patch["transformationFunction"] = req.TransformationFunction
	}
	if req.PayloadSchema != nil {
		patch["payloadSchema"] = req.PayloadSchema
	}
	if req.Priority != 0 {
		patch["priority"] = req.Priority
	}

	if updateErr := conn.UpdateConfig(ctx.Context(), patch); updateErr != nil {
		return nil, mapError(updateErr)
	}

	details := conn.Details(true)
	return &details, nil
}

func (a *ForgeAPI) deleteConnection(ctx forge.Context, req *ConnectionForgeRequest) (*connection.Details, error) {
	conn, err := a.findConnection(req.RoomID, req.StateKey)
	if err != nil {
		return nil, err
	}

	if removeErr := a.bridge.RemoveConnection(ctx.Context(), conn); removeErr != nil {
		return nil, mapError(removeErr)
	}

	err = ctx.NoContent(http.StatusNoContent)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.NoContent.
	return nil, nil
}

func (a *ForgeAPI) listRecentEvents(ctx forge.Context, req *ListRecentEventsForgeRequest) ([]*webhook.Event, error) {
	conn, err := a.findConnection(req.RoomID, req.StateKey)
	if err != nil {
		return nil, err
	}

	events, listErr := a.bridge.Store().ListRecentWebhooks(ctx.Context(), conn.HookID(), req.Limit)
	if listErr != nil {
		return nil, mapError(listErr)
	}

	return events, nil
}

func (a *ForgeAPI) findConnection(roomID, stateKey string) (*connection.Connection, error) {
	conn := a.bridge.Connections().FindByStateKey(stateKey)
	if conn == nil || conn.RoomID() != roomID {
		return nil, forge.NotFound("connection not found")
	}
	return conn, nil
}
