package book

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// List handles GET /api/books/
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Query{
		Title:      query.Get("title"),
		AuthorName: query.Get("author__name"),
		Search:     query.Get("search"),
		Ordering:   query.Get("ordering"),
	}

	if yearStr := query.Get("publication_year"); yearStr != "" {
		if val, err := strconv.Atoi(yearStr); err == nil {
			params.Year = &val
		}
	}
	if gteStr := query.Get("publication_year__gte"); gteStr != "" {
		if val, err := strconv.Atoi(gteStr); err == nil {
			params.YearGTE = &val
		}
	}
	if lteStr := query.Get("publication_year__lte"); lteStr != "" {
		if val, err := strconv.Atoi(lteStr); err == nil {
			params.YearLTE = &val
		}
	}

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	params.Limit = pageSize
	params.Offset = (page - 1) * pageSize

	books, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	if books == nil {
		books = []Book{}
	}

	httpx.JSONSuccess(w, books, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// GetByID handles GET /api/books/{id}/
func (h *HTTPHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	b, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, b, nil)
}

type createBookRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	PublicationYear *int   `json:"publication_year" validate:"required,pub_year"`
	Author          *int64 `json:"author" validate:"required,gt=0"`
}

// Create handles POST /api/books/create/
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", httpx.Details(validationErrors))
		return
	}

	b := Book{
		Title:           req.Title,
		PublicationYear: *req.PublicationYear,
		AuthorID:        *req.Author,
	}
	if err := h.service.Create(r.Context(), &b); err != nil {
		if errors.Is(err, ErrAuthorNotFound) {
			httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
				{Field: "author", Message: "author does not exist"},
			})
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessCreated(w, b)
}

type updateBookRequest struct {
	Title           *string `json:"title" validate:"omitempty,max=200"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,pub_year"`
	Author          *int64  `json:"author" validate:"omitempty,gt=0"`
}

// Update handles PUT and PATCH /api/books/{id}/update/.
// PUT replaces every field; PATCH only the fields present in the body.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	var req updateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if r.Method == http.MethodPut {
		var missing []httpx.ErrorDetail
		if req.Title == nil {
			missing = append(missing, httpx.ErrorDetail{Field: "title", Message: "title is required"})
		}
		if req.PublicationYear == nil {
			missing = append(missing, httpx.ErrorDetail{Field: "publication_year", Message: "publication_year is required"})
		}
		if req.Author == nil {
			missing = append(missing, httpx.ErrorDetail{Field: "author", Message: "author is required"})
		}
		if len(missing) > 0 {
			httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", missing)
			return
		}
	}

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", httpx.Details(validationErrors))
		return
	}
	if req.Title != nil && *req.Title == "" {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
			{Field: "title", Message: "title must not be empty"},
		})
		return
	}

	b, err := h.service.Update(r.Context(), id, Patch{
		Title:           req.Title,
		PublicationYear: req.PublicationYear,
		AuthorID:        req.Author,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		case errors.Is(err, ErrAuthorNotFound):
			httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
				{Field: "author", Message: "author does not exist"},
			})
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}
	httpx.JSONSuccess(w, b, nil)
}

// Delete handles DELETE /api/books/{id}/delete/
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// pathID parses the {id} path value. Non-numeric ids behave as not found.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
