package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/connection"
	"github.com/xraph/hookbridge/registry"
)

// mapError converts hookbridge sentinel errors to Forge HTTP errors.
func mapError(err error) error {
	var verr *connection.ValidationError
	switch {
	case errors.As(err, &verr):
		return forge.BadRequest(verr.Error())
	case errors.Is(err, registry.ErrNotFound):
		return forge.NotFound(err.Error())
	case errors.Is(err, connection.ErrStateEventNotFound):
		return forge.NotFound(err.Error())
	case errors.Is(err, hookbridge.ErrRateLimited):
		return forge.NewHTTPError(429, err.Error())
	case errors.Is(err, hookbridge.ErrStoreClosed):
		return forge.InternalError(err)
	case errors.Is(err, hookbridge.ErrMigrationFailed):
		return forge.InternalError(err)
	default:
		return forge.InternalError(err)
	}
}
