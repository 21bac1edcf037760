package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/xraph/hookbridge"
)

// maxWebhookBody bounds inbound webhook payload size (1 MiB).
const maxWebhookBody = 1 << 20

// handleWebhook is the public inbound entry point. The hook ID in the path is
// the only credential; callers holding the URL can post.
//
// Processing failures still answer 200: the sender did its part, the failure
// is between the bridge and the room and is surfaced there.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	hookID := r.PathValue("hookID")

	payload, err := decodePayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	ok, err := h.bridge.HandleWebhook(r.Context(), hookID, payload)
	switch {
	case errors.Is(err, hookbridge.ErrHookNotFound):
		writeError(w, http.StatusNotFound, "unknown hook")
	case errors.Is(err, hookbridge.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limited")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to deliver message")
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
	}
}

// decodePayload reads the body as JSON, falling back to a raw string for
// non-JSON senders. An empty body becomes an empty object.
func decodePayload(r *http.Request) (any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return nil, err
	}
	defer r.Body.Close()

	if len(body) == 0 {
		return map[string]any{}, nil
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(body), nil
	}
	return payload, nil
}
