package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/homeboard/homeboard/internal/api/respond"
)

// Middleware intercepts panics from downstream handlers, logs details, and
// answers with the standard error envelope. The panic value never reaches
// the client.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("url", r.URL.String()).
					Str("remote", r.RemoteAddr).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				respond.WriteInternalError(w, "unexpected server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
