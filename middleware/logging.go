// Package middleware provides httprpc.Processor implementations for
// cross-cutting concerns around JSON-RPC dispatch: structured request
// logging, Prometheus metrics, and rate limiting.
package middleware

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/mhollis/dispatchrpc/httprpc"
)

// NewLogger builds a console zerolog logger tagged with the application name.
func NewLogger(app string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", app).Logger()
}

// RequestLogger logs one line per RPC HTTP request: method, path, status and
// duration. Severity follows the HTTP status.
func RequestLogger(logger zerolog.Logger) httprpc.Processor {
	return httprpc.ProcessorFunc(func(w http.ResponseWriter, r *http.Request, next func(w http.ResponseWriter, r *http.Request) error) error {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		err := next(rec, r)

		status := rec.status
		event := logger.Info()
		if err != nil || status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Int("bytes", rec.bytes).
			Msg("rpc_request")

		return err
	})
}

// DispatchLogger adapts a zerolog.Logger to the jsonrpc.Logger collaborator,
// reporting failures the dispatcher classified as internal.
type DispatchLogger struct {
	Log zerolog.Logger
}

func (l DispatchLogger) LogError(method string, err error) {
	l.Log.Error().Str("rpc_method", method).Err(err).Msg("rpc_internal_failure")
}

// statusRecorder captures the status and size written by the terminal
// handler, since processors cannot observe them otherwise.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}
