package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/transitlab/stopgraph/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI serving the application's layers
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.Server.RateLimit),
	}
}

// Handler returns the routed API behind rate limiting, compression,
// security headers and request logging.
func (api *RestAPI) Handler() http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)

	var handler http.Handler = router
	handler = api.rateLimiter.Handler(handler)
	handler = NewCompressionMiddleware(DefaultCompressionConfig())(handler)
	handler = securityHeaders(handler)
	return NewRequestLoggingMiddleware(api.Logger)(handler)
}

// Close releases background resources held by the API.
func (api *RestAPI) Close() {
	api.rateLimiter.Stop()
}
