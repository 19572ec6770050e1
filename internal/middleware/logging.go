package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// statusRecorder remembers the status code written by the wrapped handler
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (recorder *statusRecorder) WriteHeader(statusCode int) {
	recorder.statusCode = statusCode
	recorder.ResponseWriter.WriteHeader(statusCode)
}

func (recorder *statusRecorder) Write(data []byte) (int, error) {
	written, err := recorder.ResponseWriter.Write(data)
	recorder.bytes += written
	return written, err
}

// LoggingMiddleware logs one line per request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		startTime := time.Now()
		recorder := &statusRecorder{ResponseWriter: responseWriter, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, request)

		event := log.Info()
		if recorder.statusCode >= http.StatusInternalServerError {
			event = log.Error()
		} else if recorder.statusCode >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", request.Method).
			Str("path", request.URL.Path).
			Int("status", recorder.statusCode).
			Int("bytes", recorder.bytes).
			Dur("duration", time.Since(startTime)).
			Str("remote_addr", request.RemoteAddr).
			Msg("Request handled")
	})
}
