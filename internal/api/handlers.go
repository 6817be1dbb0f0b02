package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/pkg/httputil"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/pkg/logger"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/service/popup"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/storage"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/suppression"
)

// Handlers holds the API's service dependencies.
type Handlers struct {
	popups     *popup.Service
	assets     storage.Storage
	redis      *redis.Client
	sessionTTL time.Duration
}

// NewHandlers creates the handler set.
func NewHandlers(popups *popup.Service, assets storage.Storage, redisClient *redis.Client, sessionTTL time.Duration) *Handlers {
	return &Handlers{
		popups:     popups,
		assets:     assets,
		redis:      redisClient,
		sessionTTL: sessionTTL,
	}
}

// HandleHealth reports service liveness.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status":    "healthy",
		"service":   "popup-engine",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// activePopupsResponse is the public feed envelope. Popups is never null so
// front-end consumers can iterate without a guard.
type activePopupsResponse struct {
	Popups []domain.Popup `json:"popups"`
}

// HandleActivePopups returns the popups targeting the viewer's current page
// visit, in priority order, with suppressed ones filtered out. Any backend
// failure degrades to an empty list: a broken popup feed must never break the
// page that embeds it.
func (h *Handlers) HandleActivePopups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	route := q.Get("route")
	if route == "" {
		httputil.BadRequest(w, "route query parameter is required")
		return
	}
	device := domain.ParseDevice(q.Get("device"))
	role := domain.ParseRole(q.Get("role"))

	candidates, err := h.popups.ActiveForViewer(r.Context(), route, device, role)
	if err != nil {
		logger.Warn("active popup lookup failed, returning empty feed",
			"route", route, "error", err)
		httputil.OK(w, activePopupsResponse{Popups: []domain.Popup{}})
		return
	}

	policy := h.policyFor(r)
	out := make([]domain.Popup, 0, len(candidates))
	for _, c := range candidates {
		if policy.IsSuppressed(r.Context(), c.ID, c.Frequency) {
			continue
		}
		out = append(out, c)
	}
	httputil.OK(w, activePopupsResponse{Popups: out})
}

// HandlePopupShown records a display: the viewer's suppression record is
// written under the popup's frequency rule and the impression counter bumped.
func (h *Handlers) HandlePopupShown(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.popups.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, popup.ErrNotFound) {
			httputil.NotFound(w, "popup not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	h.policyFor(r).MarkShown(r.Context(), p.ID, p.Frequency)
	h.popups.RecordImpression(r.Context(), p.ID)
	httputil.NoContent(w)
}

// HandlePopupClick records a CTA click-through.
func (h *Handlers) HandlePopupClick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.popups.Get(r.Context(), id); err != nil {
		if errors.Is(err, popup.ErrNotFound) {
			httputil.NotFound(w, "popup not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	h.popups.RecordClick(r.Context(), id)
	httputil.NoContent(w)
}

// policyFor builds the suppression policy for the request's viewer. Identity
// comes from headers first, cookies second; an absent identity still yields a
// working policy whose records simply key on the empty ID, so anonymous
// requests never error.
func (h *Handlers) policyFor(r *http.Request) *suppression.Policy {
	store := suppression.NewRedisStore(h.redis, viewerID(r), sessionID(r), h.sessionTTL)
	return suppression.NewPolicy(store)
}

func viewerID(r *http.Request) string {
	if id := r.Header.Get("X-Viewer-ID"); id != "" {
		return id
	}
	if c, err := r.Cookie("viewer_id"); err == nil {
		return c.Value
	}
	return ""
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get("X-Session-ID"); id != "" {
		return id
	}
	if c, err := r.Cookie("session_id"); err == nil {
		return c.Value
	}
	return ""
}
