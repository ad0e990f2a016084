package httpapi

import (
	"net/http"

	"github.com/riskibarqy/komiti/internal/platform/logging"
)

type RouterOptions struct {
	CORSAllowedOrigins []string
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// Observer receives one observation per request when set.
	Observer RequestObserver
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, opts RouterOptions) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, opts.Metrics)
	registerPublicRoutes(mux, handler)
	registerAuthorizedRoutes(mux, handler, verifier)

	return RequestTracing(
		RequestLogging(logger, opts.Observer,
			CORS(opts.CORSAllowedOrigins,
				recoverPanic(logger, capturePattern(mux)),
			),
		),
	)
}
