package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/eugenenazirov/dwbft/internal/config"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Settings is the read-only view of the resolved configuration the handler serves.
type Settings interface {
	Path() string
	Keys() []config.Key
	Known(key config.Key) bool
	Get(key config.Key) config.Value
	Overridden(key config.Key) bool
}

// Handler exposes the resolved configuration over HTTP.
type Handler struct {
	settings Settings
	pageSize int

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithPageSize sets how many settings a page of /api/settings holds.
func WithPageSize(size int) HandlerOption {
	return func(h *Handler) {
		if size > 0 {
			h.pageSize = size
		}
	}
}

// NewHandler constructs a Handler over the provided settings.
func NewHandler(settings Settings, opts ...HandlerOption) *Handler {
	h := &Handler{
		settings: settings,
		pageSize: 25,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListSettings(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid page", "page must be a positive integer")
			return
		}
		page = n
	}

	keys := h.settings.Keys()
	pages := (len(keys) + h.pageSize - 1) / h.pageSize
	// Pages past the end are empty; compare before multiplying so a huge
	// page number cannot overflow the offset.
	start := len(keys)
	if page <= pages {
		start = (page - 1) * h.pageSize
	}
	end := min(start+h.pageSize, len(keys))

	items := make([]settingResponse, 0, end-start)
	for _, key := range keys[start:end] {
		items = append(items, h.setting(key))
	}

	resp := settingsPageResponse{
		Source:   h.settings.Path(),
		Page:     page,
		PageSize: h.pageSize,
		Total:    len(keys),
		Settings: items,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !h.settings.Known(key) {
		writeError(w, http.StatusNotFound, "Unknown setting", key+" is not a recognised setting",
			"GET /api/settings lists every recognised setting")
		return
	}
	writeJSON(w, http.StatusOK, h.setting(key))
}

func (h *Handler) setting(key config.Key) settingResponse {
	return settingResponse{
		Key:        key,
		Value:      jsonValue(config.MaskValue(key, h.settings.Get(key))),
		Overridden: h.settings.Overridden(key),
	}
}

// jsonValue rewrites YAML values encoding/json cannot represent: mappings
// with non-string keys get their keys formatted, and NaN or infinite floats
// become the strings ".nan", ".inf" and "-.inf".
func jsonValue(v any) any {
	switch val := v.(type) {
	case float64:
		switch {
		case math.IsNaN(val):
			return ".nan"
		case math.IsInf(val, 1):
			return ".inf"
		case math.IsInf(val, -1):
			return "-.inf"
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = jsonValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonValue(item)
		}
		return out
	default:
		return v
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type settingResponse struct {
	Key        string `json:"key"`
	Value      any    `json:"value"`
	Overridden bool   `json:"overridden"`
}

type settingsPageResponse struct {
	Source   string            `json:"source"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Total    int               `json:"total"`
	Settings []settingResponse `json:"settings"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorResponse{
			Error:   "Encoding failed",
			Details: err.Error(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}
