package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tunafishyummy/kosen-website/internal/view"
)

// FragmentSurface is a surface whose rendered output can be served back
// to clients as a plain-text fragment.
type FragmentSurface interface {
	view.Surface
	Fragment(sessionID string) (string, bool)
}

// ViewHandler serves the rendered surfaces (badge, listing, summary).
// Surfaces are re-rendered by the notifier after every mutation; a
// session that has not mutated anything yet gets an on-demand render,
// so reads are always fresh.
type ViewHandler struct {
	notifier *view.Notifier
	surfaces map[string]FragmentSurface
	log      *zap.Logger
}

func NewViewHandler(notifier *view.Notifier, log *zap.Logger, surfaces ...FragmentSurface) *ViewHandler {
	if log == nil {
		log = zap.NewNop()
	}
	byName := make(map[string]FragmentSurface, len(surfaces))
	for _, s := range surfaces {
		byName[s.Name()] = s
	}
	return &ViewHandler{
		notifier: notifier,
		surfaces: byName,
		log:      log,
	}
}

func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(h.log, w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	name := chi.URLParam(r, "surface")
	surface, ok := h.surfaces[name]
	if !ok {
		respondError(h.log, w, http.StatusNotFound, "unknown_surface", "no such view surface")
		return
	}

	fragment, ok := surface.Fragment(sessionID)
	if !ok {
		h.notifier.Refresh(r.Context(), sessionID, name)
		fragment, _ = surface.Fragment(sessionID)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fragment))
}
