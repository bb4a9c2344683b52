// Package handlers implements the HTTP API over the cache service.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"cache-service/internal/cache"
)

// maxValueBytes bounds a single cached payload accepted over HTTP.
const maxValueBytes = 1 << 20

// Handlers bundles the HTTP endpoints exposed by the cache service.
type Handlers struct {
	cache *cache.Service
}

// New creates the handler set around a cache service.
func New(service *cache.Service) *Handlers {
	return &Handlers{cache: service}
}

// HealthCheck returns the service health document, embedding the cache
// backend's own health snapshot.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.cache.Health(r.Context())

	response := map[string]interface{}{
		"status":    health.Status,
		"timestamp": time.Now().UTC(),
		"cache":     health,
		"api":       "operational",
	}

	code := http.StatusOK
	if health.Status == cache.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, response)
}

// GetStats returns cumulative hit/miss counters merged with the active
// backend's sizing.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cache.Stats(r.Context()))
}

// ClearCache removes every cached key from the active backend. Hit/miss
// counters are unaffected.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	removed, ok := h.cache.Clear(r.Context())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      ok,
		"keys_removed": removed,
	})
}

// GetKey returns the cached value for a key, or 404 on a miss.
func (h *Handlers) GetKey(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	value, found := h.cache.Get(r.Context(), key)
	if !found {
		http.Error(w, "Key not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{"key": key}
	if json.Valid(value) {
		response["value"] = json.RawMessage(value)
	} else {
		response["value"] = string(value)
	}

	writeJSON(w, http.StatusOK, response)
}

// SetKey stores the JSON request body under a key. An optional ttl query
// parameter overrides the default TTL in seconds.
func (h *Handlers) SetKey(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	body, err := io.ReadAll(io.LimitReader(r.Body, maxValueBytes+1))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) > maxValueBytes {
		http.Error(w, "Value too large", http.StatusRequestEntityTooLarge)
		return
	}
	if !json.Valid(body) {
		http.Error(w, "Request body must be valid JSON", http.StatusBadRequest)
		return
	}

	var ttl time.Duration
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 1 {
			http.Error(w, "ttl must be a positive number of seconds", http.StatusBadRequest)
			return
		}
		ttl = time.Duration(seconds) * time.Second
	}

	if err := h.cache.Set(r.Context(), key, json.RawMessage(body), ttl); err != nil {
		http.Error(w, "Failed to store value", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"key":     key,
	})
}

// DeleteKey removes a key from the cache.
func (h *Handlers) DeleteKey(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	deleted := h.cache.Delete(r.Context(), key)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"key":     key,
		"deleted": deleted,
	})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
