package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// HTTPServer is a thin facade over the simplecms service. It exposes the
// library over HTTP; all semantics live in the service.
type HTTPServer struct {
	svc simplecms.Service
}

// NewHTTPServer creates an HTTP server wrapping the service.
func NewHTTPServer(svc simplecms.Service) *HTTPServer {
	return &HTTPServer{svc: svc}
}

// Routes builds the router.
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/{kind}", func(r chi.Router) {
			r.Post("/", s.createEntity)
			r.Get("/roots", s.listRoots)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getEntity)
				r.Patch("/", s.updateEntity)
				r.Delete("/", s.softDeleteEntity)
				r.Delete("/force", s.forceDeleteEntity)
				r.Get("/children", s.listChildren)
				r.Get("/ancestors", s.listAncestors)
				r.Post("/translations", s.createTranslation)
			})
		})
		r.Delete("/translations/{id}", s.deleteTranslation)
	})

	return r
}

func (s *HTTPServer) createEntity(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(w, r)
	if !ok {
		return
	}

	var req simplecms.CreateEntityRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Kind = kind

	entity, err := s.svc.Create(r.Context(), req)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, entity)
}

func (s *HTTPServer) getEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	entity, err := s.svc.GetByID(r.Context(), id)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	if entity == nil {
		renderError(w, r, http.StatusNotFound, "entity not found")
		return
	}
	render.JSON(w, r, entity)
}

func (s *HTTPServer) updateEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req simplecms.UpdateEntityRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = id

	entity, err := s.svc.Update(r.Context(), req)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, entity)
}

func (s *HTTPServer) softDeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.svc.SoftDelete(r.Context(), id); err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (s *HTTPServer) forceDeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.svc.ForceDelete(r.Context(), id); err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (s *HTTPServer) listRoots(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(w, r)
	if !ok {
		return
	}

	entities, err := s.svc.GetRootEntities(r.Context(), kind, listQueryFromParams(r))
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, entities)
}

func (s *HTTPServer) listChildren(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.loadEntity(w, r)
	if !ok {
		return
	}

	children, err := s.svc.GetChildren(r.Context(), entity, listQueryFromParams(r))
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, children)
}

func (s *HTTPServer) listAncestors(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.loadEntity(w, r)
	if !ok {
		return
	}

	ancestors, err := s.svc.GetAncestors(r.Context(), entity)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, ancestors)
}

func (s *HTTPServer) createTranslation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var payload simplecms.TranslationPayload
	if err := render.DecodeJSON(r.Body, &payload); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	translation, err := s.svc.CreateTranslation(r.Context(), simplecms.CreateTranslationRequest{
		EntityID: id,
		Payload:  payload,
	})
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, translation)
}

func (s *HTTPServer) deleteTranslation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteTranslation(r.Context(), id); err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// Helpers

func (s *HTTPServer) loadEntity(w http.ResponseWriter, r *http.Request) (*simplecms.Entity, bool) {
	id, ok := parseID(w, r)
	if !ok {
		return nil, false
	}
	entity, err := s.svc.GetByID(r.Context(), id)
	if err != nil {
		renderServiceError(w, r, err)
		return nil, false
	}
	if entity == nil {
		renderError(w, r, http.StatusNotFound, "entity not found")
		return nil, false
	}
	return entity, true
}

func parseKind(w http.ResponseWriter, r *http.Request) (simplecms.EntityKind, bool) {
	kind := simplecms.EntityKind(chi.URLParam(r, "kind"))
	switch kind {
	case simplecms.KindContent, simplecms.KindBlock:
		return kind, true
	}
	renderError(w, r, http.StatusNotFound, "unknown entity kind")
	return "", false
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func listQueryFromParams(r *http.Request) simplecms.ListQuery {
	query := simplecms.ListQuery{}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		query.Page = &page
	}
	if perPage, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil {
		query.PerPage = &perPage
	}
	if lang := r.URL.Query().Get("lang"); lang != "" {
		query.Filters = map[string]any{"lang": lang}
	}
	return query
}

func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if simplecms.IsValidationError(err) {
		renderError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	renderError(w, r, http.StatusInternalServerError, err.Error())
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": message})
}
