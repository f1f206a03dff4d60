package errorhandler

import (
	"context"
	"net/http"

	"github.com/famfin/famfin-api/internal/pkg/logger"
	"github.com/famfin/famfin-api/internal/pkg/response"
)

// Internal logs err against the request-scoped logger and answers with a
// generic 500. Details never reach the client.
func Internal(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	logger.FromContext(ctx).Error().
		Str("operation", operation).
		Err(err).
		Msg("request failed")

	response.InternalError(w)
}

// Panic records a recovered panic with its stack and answers with a 500.
func Panic(ctx context.Context, w http.ResponseWriter, r *http.Request, recovered interface{}, stack []byte) {
	logger.FromContext(ctx).Error().
		Interface("error", recovered).
		Str("stack", truncate(string(stack), 8192)).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Panic recovered")

	response.InternalError(w)
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "...<truncated>"
	}
	return s
}
