package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "enrolld/pkg/domain-errors"
)

// Validatable lets request types run their own validation after decoding.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the JSON request body into T, runs Validate when T
// implements Validatable, and writes the error envelope itself on failure.
// The boolean reports whether the handler should proceed.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "malformed request body",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return nil, false
	}

	if v, ok := any(&req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			logger.WarnContext(ctx, "request validation failed",
				"request_id", requestID,
				"error", err,
			)
			WriteError(w, err)
			return nil, false
		}
	}

	return &req, true
}
