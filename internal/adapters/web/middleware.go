package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	requestLogKey contextKey = "request_log"
)

var validRequestID = regexp.MustCompile(`^[a-zA-Z0-9\-]{1,64}$`)

// requestIDFromContext returns the request ID from ctx, or empty string.
func requestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// RequestID injects a unique X-Request-ID header into each request and its context.
// Caller-supplied IDs are kept only if they are short alphanumeric/hyphen strings,
// so a CRM client can correlate a booking submission with our log line.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLog collects booking details that handlers learn while serving a
// request. Logger prints them once the response is written.
type requestLog struct {
	booking       string
	invalidFields int
}

func requestLogFrom(r *http.Request) *requestLog {
	l, _ := r.Context().Value(requestLogKey).(*requestLog)
	return l
}

// noteBooking records the booking number a request created or touched.
func noteBooking(r *http.Request, number string) {
	if l := requestLogFrom(r); l != nil {
		l.booking = number
	}
}

// noteInvalidFields records how many fields a rejected submission got wrong.
func noteInvalidFields(r *http.Request, n int) {
	if l := requestLogFrom(r); l != nil {
		l.invalidFields = n
	}
}

// Logger writes one line per request: request ID, method, the matched route
// pattern, status and duration, followed by the company code, the booking
// reference and the number of rejected fields when the request had them.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		entry := &requestLog{}
		r = r.WithContext(context.WithValue(r.Context(), requestLogKey, entry))

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		var company string
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
			company = rctx.URLParam("code")
			if entry.booking == "" {
				entry.booking = rctx.URLParam("ref")
			}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "[%s] %s %s %d %s", requestIDFromContext(r.Context()), r.Method, route, rec.status, time.Since(start))
		if company != "" {
			fmt.Fprintf(&b, " company=%s", company)
		}
		if entry.booking != "" {
			fmt.Fprintf(&b, " booking=%s", entry.booking)
		}
		if entry.invalidFields > 0 {
			fmt.Fprintf(&b, " invalid_fields=%d", entry.invalidFields)
		}
		log.Print(b.String())
	})
}

// Recoverer catches panics, logs them, and returns HTTP 500.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				log.Printf("[%s] panic in %s %s: %v", requestIDFromContext(r.Context()), r.Method, r.URL.Path, rv)
				writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// CORS answers cross-origin requests from the CRM frontends listed in
// ALLOWED_ORIGINS (comma-separated). With no origins configured CORS is off.
// Idempotency-Key is allowed in, and Content-Disposition is exposed so a
// browser can name the bookings register download.
func CORS(allowedOrigins string) func(http.Handler) http.Handler {
	origins := splitAndTrim(allowedOrigins)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && slices.Contains(origins, origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Idempotency-Key, X-Request-ID")
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
				h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder wraps ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func splitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// RequestBodyLimit caps request bodies at maxBytes; decodeJSON turns an
// oversized body into HTTP 413.
func RequestBodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
