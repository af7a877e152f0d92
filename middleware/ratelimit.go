package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/mhollis/dispatchrpc/httprpc"
)

// RateLimit rejects requests beyond a token-bucket budget of r requests per
// second with bursts of up to burst. Rejected requests get HTTP 429 without
// reaching the dispatcher.
func RateLimit(r float64, burst int) httprpc.Processor {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return httprpc.ProcessorFunc(func(w http.ResponseWriter, req *http.Request, next func(w http.ResponseWriter, r *http.Request) error) error {
		if !limiter.Allow() {
			return httprpc.Error(http.StatusTooManyRequests, "rate limit exceeded")
		}
		return next(w, req)
	})
}
