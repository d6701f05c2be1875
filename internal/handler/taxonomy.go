package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogsite-backend/internal/httputil"
	"blogsite-backend/internal/model"
	"blogsite-backend/internal/service"
)

type TaxonomyHandler struct {
	taxonomyService *service.TaxonomyService
}

func NewTaxonomyHandler(taxonomyService *service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{
		taxonomyService: taxonomyService,
	}
}

// CreateTag handles POST /tags
func (h *TaxonomyHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	tag, err := h.taxonomyService.CreateTag(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNameRequired):
			httputil.WriteBadRequest(w, "Tag name is required")
		case errors.Is(err, model.ErrTagExists):
			httputil.WriteConflict(w, "Tag already exists")
		default:
			log.Printf("[ERROR] Create tag handler: err=%v", err)
			httputil.WriteInternalError(w, "Failed to create tag")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, tag)
}

// ListTags handles GET /tags
func (h *TaxonomyHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.taxonomyService.ListTags(r.Context())
	if err != nil {
		log.Printf("[ERROR] List tags handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to list tags")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tags)
}

// GetTag handles GET /tags/{slug}
func (h *TaxonomyHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	tag, err := h.taxonomyService.GetTag(r.Context(), slug)
	if err != nil {
		if errors.Is(err, model.ErrTagNotFound) {
			httputil.WriteNotFound(w, "Tag not found")
			return
		}
		log.Printf("[ERROR] Get tag handler: slug=%s err=%v", slug, err)
		httputil.WriteInternalError(w, "Failed to get tag")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tag)
}

// DeleteTag handles DELETE /tags/{id}
func (h *TaxonomyHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid tag ID")
		return
	}

	if err := h.taxonomyService.DeleteTag(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrTagNotFound) {
			httputil.WriteNotFound(w, "Tag not found")
			return
		}
		log.Printf("[ERROR] Delete tag handler: id=%s err=%v", id, err)
		httputil.WriteInternalError(w, "Failed to delete tag")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Tag deleted successfully",
	})
}

// CreateCategory handles POST /categories
func (h *TaxonomyHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	category, err := h.taxonomyService.CreateCategory(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNameRequired):
			httputil.WriteBadRequest(w, "Category name is required")
		case errors.Is(err, model.ErrCategoryExists):
			httputil.WriteConflict(w, "Category already exists")
		default:
			log.Printf("[ERROR] Create category handler: err=%v", err)
			httputil.WriteInternalError(w, "Failed to create category")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, category)
}

// ListCategories handles GET /categories
func (h *TaxonomyHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.taxonomyService.ListCategories(r.Context())
	if err != nil {
		log.Printf("[ERROR] List categories handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to list categories")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, categories)
}

// GetCategory handles GET /categories/{slug}
func (h *TaxonomyHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	category, err := h.taxonomyService.GetCategory(r.Context(), slug)
	if err != nil {
		if errors.Is(err, model.ErrCategoryNotFound) {
			httputil.WriteNotFound(w, "Category not found")
			return
		}
		log.Printf("[ERROR] Get category handler: slug=%s err=%v", slug, err)
		httputil.WriteInternalError(w, "Failed to get category")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /categories/{id}
func (h *TaxonomyHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid category ID")
		return
	}

	if err := h.taxonomyService.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrCategoryNotFound) {
			httputil.WriteNotFound(w, "Category not found")
			return
		}
		log.Printf("[ERROR] Delete category handler: id=%s err=%v", id, err)
		httputil.WriteInternalError(w, "Failed to delete category")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Category deleted successfully",
	})
}
