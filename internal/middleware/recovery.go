package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/akz4ol/baselayer/internal/apperr"
	"github.com/akz4ol/baselayer/internal/jsonutil"
)

// Recoverer recovers from panics, logging the stack and writing the
// standard error envelope instead of letting the connection die.
func Recoverer(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Interface("panic", rec).
						Bytes("stack", debug.Stack()).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					jsonutil.ErrorFrom(w, apperr.Internal("internal error", nil))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
