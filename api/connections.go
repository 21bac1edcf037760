package api

import (
	"errors"
	"net/http"

	"github.com/xraph/hookbridge/connection"
)

func (h *Handler) serviceInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bridge.ProvisionerInfo())
}

func (h *Handler) createConnection(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")

	var config map[string]any
	if err := decodeJSON(r, &config); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conn, err := h.bridge.Provision(r.Context(), roomID, config)
	if err != nil {
		var verr *connection.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The hook URL is only ever returned here, to the provisioner.
	writeJSON(w, http.StatusCreated, conn.Details(true))
}

func (h *Handler) listConnections(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")

	conns := h.bridge.Connections().ForRoom(roomID)
	details := make([]connection.Details, len(conns))
	for i, conn := range conns {
		details[i] = conn.Details(false)
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) getConnection(w http.ResponseWriter, r *http.Request) {
	conn := h.findConnection(w, r)
	if conn == nil {
		return
	}
	writeJSON(w, http.StatusOK, conn.Details(true))
}

func (h *Handler) updateConnection(w http.ResponseWriter, r *http.Request) {
	conn := h.findConnection(w, r)
	if conn == nil {
		return
	}

	var patch map[string]any
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := conn.UpdateConfig(r.Context(), patch); err != nil {
		var verr *connection.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, conn.Details(true))
}

func (h *Handler) deleteConnection(w http.ResponseWriter, r *http.Request) {
	conn := h.findConnection(w, r)
	if conn == nil {
		return
	}

	if err := h.bridge.RemoveConnection(r.Context(), conn); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listRecentEvents(w http.ResponseWriter, r *http.Request) {
	conn := h.findConnection(w, r)
	if conn == nil {
		return
	}

	limit := queryInt(r, "limit", 0)
	events, err := h.bridge.Store().ListRecentWebhooks(r.Context(), conn.HookID(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// findConnection resolves the room/state-key pair from the path, writing a
// 404 and returning nil when no such connection exists.
func (h *Handler) findConnection(w http.ResponseWriter, r *http.Request) *connection.Connection {
	roomID := r.PathValue("roomID")
	stateKey := r.PathValue("stateKey")

	conn := h.bridge.Connections().FindByStateKey(stateKey)
	if conn == nil || conn.RoomID() != roomID {
		writeError(w, http.StatusNotFound, "connection not found")
		return nil
	}
	return conn
}
