package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"linkbio/pkg/middleware"
	"linkbio/pkg/service"
	"linkbio/pkg/store"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	bio *service.BioService
}

func NewHandler(bio *service.BioService) *Handler {
	return &Handler{bio: bio}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  uint   `json:"code,omitempty"`
}

type idResponse struct {
	ID uint64 `json:"id"`
}

// writeStoreError maps the store's stable error codes onto HTTP
// statuses. Unknown errors are internal.
func writeStoreError(w http.ResponseWriter, err error) {
	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	var status int
	switch storeErr.Code {
	case 100, 200:
		status = http.StatusForbidden
	case 101, 201:
		status = http.StatusNotFound
	case 102:
		status = http.StatusConflict
	case 202:
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorResponse{Error: storeErr.Message, Code: storeErr.Code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var params store.CreateProfileParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	caller := middleware.GetCallerFromContext(r.Context())
	id, err := h.bio.CreateProfile(r.Context(), caller, params)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd store.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	caller := middleware.GetCallerFromContext(r.Context())
	if err := h.bio.UpdateProfile(r.Context(), caller, upd); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var theme store.Theme
	if err := json.NewDecoder(r.Body).Decode(&theme); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	caller := middleware.GetCallerFromContext(r.Context())
	if err := h.bio.UpdateTheme(r.Context(), caller, theme); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) VerifyProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid profile id"})
		return
	}

	caller := middleware.GetCallerFromContext(r.Context())
	if err := h.bio.VerifyProfile(r.Context(), caller, id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCallerFromContext(r.Context())
	p, ok := h.bio.GetProfileByOwner(r.Context(), caller)
	if !ok {
		writeStoreError(w, store.ErrProfileNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UsernameAvailable(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	available := h.bio.IsUsernameAvailable(r.Context(), username)
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var params store.CreateLinkParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	caller := middleware.GetCallerFromContext(r.Context())
	id, err := h.bio.CreateLink(r.Context(), caller, params)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid link id"})
		return
	}

	link, found := h.bio.GetLink(r.Context(), id)
	if !found {
		writeStoreError(w, store.ErrLinkNotFound)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *Handler) ListMyLinks(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCallerFromContext(r.Context())
	p, ok := h.bio.GetProfileByOwner(r.Context(), caller)
	if !ok {
		writeStoreError(w, store.ErrProfileNotFound)
		return
	}
	links := h.bio.GetLinksByProfile(r.Context(), p.ID)
	writeJSON(w, http.StatusOK, links)
}

func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid link id"})
		return
	}

	var upd store.LinkUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	caller := middleware.GetCallerFromContext(r.Context())
	if err := h.bio.UpdateLink(r.Context(), caller, id, upd); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateLinkStyle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid link id"})
		return
	}

	var style store.LinkStyle
	if err := json.NewDecoder(r.Body).Decode(&style); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	caller := middleware.GetCallerFromContext(r.Context())
	if err := h.bio.UpdateLinkStyle(r.Context(), caller, id, style); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid link id"})
		return
	}

	caller := middleware.GetCallerFromContext(r.Context())
	if err := h.bio.DeleteLink(r.Context(), caller, id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetProfileTotals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid profile id"})
		return
	}
	writeJSON(w, http.StatusOK, h.bio.GetProfileTotals(r.Context(), id))
}

// PublicProfile is the visitor-facing profile page: the profile plus
// its active links. Serving it records one profile view.
func (h *Handler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	view, err := h.bio.GetPublicProfile(r.Context(), username)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if view.Missing || view.Profile == nil {
		writeStoreError(w, store.ErrProfileNotFound)
		return
	}

	// The view is best effort: failures are logged by the service and
	// must not break the page.
	_ = h.bio.RecordProfileView(r.Context(), view.Profile.ID, visitorID(r))

	writeJSON(w, http.StatusOK, view)
}

// Click records a visitor click on a link: the link's own counter
// always increments by exactly one, and analytics totals follow.
func (h *Handler) Click(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid link id"})
		return
	}

	link, found := h.bio.GetLink(r.Context(), id)
	if !found {
		writeStoreError(w, store.ErrLinkNotFound)
		return
	}

	if err := h.bio.IncrementClickCount(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	// Best effort, same as profile views.
	_ = h.bio.RecordLinkClick(r.Context(), link.ProfileID, id, visitorID(r))

	writeJSON(w, http.StatusOK, map[string]string{"url": link.URL})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// visitorID identifies a visitor by client IP and user agent. The
// ephemeral source port must not participate, or every request would
// count as a new visitor.
func visitorID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return host + "|" + r.UserAgent()
}

// SetupRoutes wires the authenticated management API and the public
// visitor endpoints.
func SetupRoutes(r *chi.Mux, handler *Handler, authMiddleware *middleware.AuthMiddleware) {
	r.Get("/health", handler.HealthCheck)
	r.Route("/v1", func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware.Authenticate())
		}
		r.Post("/profiles", handler.CreateProfile)
		r.Get("/profiles/me", handler.GetMyProfile)
		r.Patch("/profiles/me", handler.UpdateProfile)
		r.Put("/profiles/me/theme", handler.UpdateTheme)
		r.Post("/profiles/{id}/verify", handler.VerifyProfile)
		r.Get("/profiles/{id}/totals", handler.GetProfileTotals)
		r.Get("/usernames/{username}/available", handler.UsernameAvailable)
		r.Post("/links", handler.CreateLink)
		r.Get("/links", handler.ListMyLinks)
		r.Get("/links/{id}", handler.GetLink)
		r.Patch("/links/{id}", handler.UpdateLink)
		r.Put("/links/{id}/style", handler.UpdateLinkStyle)
		r.Delete("/links/{id}", handler.DeleteLink)
	})
	r.Get("/u/{username}", handler.PublicProfile)
	r.Post("/l/{id}/click", handler.Click)
}
