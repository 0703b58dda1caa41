package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = NewLogger("http")
}

// NewLogger returns the JSON stdout logger used across the service, tagged
// with the component name.
func NewLogger(component string) zerolog.Logger {
	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// ConfigureLogging sets the global level for every logger built by NewLogger.
func ConfigureLogging(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.statusCode == 0 {
		lrw.statusCode = http.StatusOK
	}
	if lrw.body.Len() < maxCapturedBody {
		lrw.body.Write(b)
	}
	return lrw.ResponseWriter.Write(b)
}

const maxCapturedBody = 64 << 10

var businessKeys = []string{"user_id", "offer_id", "partner_id", "pass_id", "itinerary_id", "post_id"}

func extractBusinessMetrics(body []byte) map[string]string {
	metrics := make(map[string]string)

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return metrics
	}

	for _, key := range businessKeys {
		if v, ok := data[key].(string); ok && v != "" {
			metrics[key] = v
		}
	}
	if status, ok := data["status"].(string); ok && status != "" {
		metrics["status"] = status
	}
	if state, ok := data["state"].(string); ok && state != "" {
		metrics["scan_state"] = state
	}

	return metrics
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, "application/json")
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "...(truncated)"
	}
	return s
}

func RequestLoggerWithBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := middleware.GetReqID(r.Context())

		logEvent := logger.Info().
			Str("event", "request_start").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent())

		if requestID != "" {
			logEvent = logEvent.Str("request_id", requestID)
		}
		if r.URL.RawQuery != "" {
			logEvent = logEvent.Str("query", r.URL.RawQuery)
		}

		var requestMetrics map[string]string
		if r.Body != nil && isJSON(r.Header.Get("Content-Type")) {
			bodyBytes, err := io.ReadAll(r.Body)
			if err == nil && len(bodyBytes) > 0 {
				requestMetrics = extractBusinessMetrics(bodyBytes)
				r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

				for k, v := range requestMetrics {
					logEvent = logEvent.Str(k, v)
				}

				// credentials never reach the log
				if !strings.HasPrefix(r.URL.Path, "/auth/") {
					logEvent = logEvent.Str("request_body", truncate(string(bodyBytes), 1000))
				}
			}
		}

		logEvent.Msg("HTTP request started")

		lrw := &loggingResponseWriter{ResponseWriter: w}

		next.ServeHTTP(lrw, r)
		if lrw.statusCode == 0 {
			lrw.statusCode = http.StatusOK
		}

		duration := time.Since(start)
		durationMs := float64(duration.Nanoseconds()) / 1e6

		var responseMetrics map[string]string
		if isJSON(lrw.Header().Get("Content-Type")) {
			responseMetrics = extractBusinessMetrics(lrw.body.Bytes())
		}

		logEvent = logger.Info().
			Str("event", "request_complete").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status_code", lrw.statusCode).
			Float64("duration_ms", durationMs).
			Dur("duration", duration).
			Str("remote_addr", r.RemoteAddr)

		if requestID != "" {
			logEvent = logEvent.Str("request_id", requestID)
		}

		for k, v := range requestMetrics {
			logEvent = logEvent.Str(k, v)
		}
		for k, v := range responseMetrics {
			if _, dup := requestMetrics[k]; !dup {
				logEvent = logEvent.Str(k, v)
			}
		}

		if lrw.statusCode >= 400 {
			logEvent = logEvent.Int("error_code", lrw.statusCode)
			if respBody := lrw.body.String(); respBody != "" {
				logEvent = logEvent.Str("error_response", truncate(respBody, 500))
			}
		}

		if lrw.statusCode >= 500 {
			logEvent.Msg("HTTP request failed")
		} else if lrw.statusCode >= 400 {
			logEvent.Msg("HTTP request client error")
		} else {
			logEvent.Msg("HTTP request completed")
		}
	})
}
