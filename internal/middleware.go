package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/derWhity/fyyur/internal/cache"
	"github.com/derWhity/fyyur/internal/ctxhelper"
	"github.com/derWhity/fyyur/internal/log"
)

const (
	// HeaderRequestID carries the ID of a request in both directions
	HeaderRequestID = "X-Request-ID"
	// HeaderCache tells if an answer was served from the response cache
	HeaderCache = "X-Cache"
	// Inbound request IDs longer than this are replaced
	maxRequestIDLength = 64
)

// responseRecorder remembers the status of a response and, if body is set, a copy of everything written
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	if r.body != nil {
		r.body.Write(data)
	}
	return r.ResponseWriter.Write(data)
}

// Status returns the status sent - 200 if the handler did not write anything
func (r *responseRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// RequestLogger is a middleware assigning an ID to every request and logging every request served
func RequestLogger(logger *logrus.Entry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := r.Header.Get(HeaderRequestID)
			if id == "" || len(id) > maxRequestIDLength {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, id)
			rec := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), ctxhelper.KeyRequestID, id)))
			logger.WithFields(logrus.Fields{
				log.FldRequestID: id,
				log.FldMethod:    r.Method,
				log.FldPath:      r.URL.Path,
				log.FldStatus:    rec.Status(),
				log.FldDuration:  time.Since(start).String(),
			}).Info("Request served")
		})
	}
}

// cachedResponse is a page as it is stored inside the response cache
type cachedResponse struct {
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// cacheKey builds the key a GET request is cached under. HTML and JSON answers are cached separately.
func cacheKey(r *http.Request) string {
	variant := "html"
	if wantsJSON(r) {
		variant = "json"
	}
	return variant + " " + r.URL.RequestURI()
}

// ResponseCache is a middleware serving successful GET requests from the cache. Every successful request with
// another method is seen as a change of data and purges the whole cache. Cache failures are logged and never fail
// the request.
func ResponseCache(c cache.Cache, logger *logrus.Entry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if r.Method != http.MethodGet {
				rec := &responseRecorder{ResponseWriter: w}
				next.ServeHTTP(rec, r)
				if rec.Status() < http.StatusBadRequest {
					if err := c.Purge(ctx); err != nil {
						logger.WithError(err).Warn("Failed to purge response cache")
					}
				}
				return
			}

			key := cacheKey(r)
			data, found, err := c.Get(ctx, key)
			if err != nil {
				logger.WithError(err).WithField(log.FldCacheKey, key).Warn("Failed to read from response cache")
			}
			if found {
				var entry cachedResponse
				if err := json.Unmarshal(data, &entry); err == nil {
					w.Header().Set("Content-Type", entry.ContentType)
					w.Header().Set(HeaderCache, "HIT")
					w.WriteHeader(http.StatusOK)
					w.Write(entry.Body)
					return
				}
				logger.WithField(log.FldCacheKey, key).Warn("Dropping unreadable cache entry")
			}

			w.Header().Set(HeaderCache, "MISS")
			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}}
			next.ServeHTTP(rec, r)
			if rec.Status() != http.StatusOK {
				return
			}
			data, err = json.Marshal(cachedResponse{ContentType: w.Header().Get("Content-Type"), Body: rec.body.Bytes()})
			if err == nil {
				err = c.Set(ctx, key, data)
			}
			if err != nil {
				logger.WithError(err).WithField(log.FldCacheKey, key).Warn("Failed to store response in cache")
			}
		})
	}
}
