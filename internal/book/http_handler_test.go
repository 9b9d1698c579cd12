package book

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"libraryapi/internal/testutil"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockRepository(ctrl)
	return NewHTTPHandler(NewService(mockRepo)), mockRepo
}

func TestHTTPHandler_List(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	testBook := Book{
		ID:              1,
		Title:           "The Hobbit",
		PublicationYear: 1937,
		AuthorID:        2,
		AuthorName:      "J.R.R. Tolkien",
	}

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]Book{testBook}, 1, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/books/", nil)

		handler.List(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, true, resp.Body["success"])
	})

	t.Run("filters forwarded", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, q Query) ([]Book, int, error) {
				assert.Equal(t, "hobbit", q.Title)
				assert.Equal(t, "tolkien", q.AuthorName)
				if assert.NotNil(t, q.YearGTE) {
					assert.Equal(t, 1930, *q.YearGTE)
				}
				if assert.NotNil(t, q.YearLTE) {
					assert.Equal(t, 1960, *q.YearLTE)
				}
				assert.Equal(t, "-publication_year", q.Ordering)
				return []Book{testBook}, 1, nil
			})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet,
			"/api/books/?title=hobbit&author__name=tolkien&publication_year__gte=1930&publication_year__lte=1960&ordering=-publication_year", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("exact year forwarded", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, q Query) ([]Book, int, error) {
				if assert.NotNil(t, q.Year) {
					assert.Equal(t, 1937, *q.Year)
				}
				return nil, 0, nil
			})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/books/?publication_year=1937", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("repo error", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/books/", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_GetByID(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	testBook := Book{ID: 7, Title: "1984", PublicationYear: 1949, AuthorID: 3, AuthorName: "George Orwell"}

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), int64(7)).Return(testBook, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/books/7/", nil)
		r.SetPathValue("id", "7")

		handler.GetByID(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusOK, resp.Code)
		data := resp.Body["data"].(map[string]interface{})
		assert.Equal(t, "1984", data["title"])
		assert.Equal(t, float64(1949), data["publication_year"])
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), int64(99)).Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/books/99/", nil)
		r.SetPathValue("id", "99")

		handler.GetByID(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/books/abc/", nil)
		r.SetPathValue("id", "abc")

		handler.GetByID(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, b *Book) error {
				assert.Equal(t, "1984", b.Title)
				assert.Equal(t, 1949, b.PublicationYear)
				assert.Equal(t, int64(3), b.AuthorID)
				b.ID = 42
				b.AuthorName = "George Orwell"
				return nil
			})

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/api/books/create/", map[string]any{
			"title":            "1984",
			"publication_year": 1949,
			"author":           3,
		})

		handler.Create(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusCreated, resp.Code)
		data := resp.Body["data"].(map[string]interface{})
		assert.Equal(t, float64(42), data["id"])
	})

	t.Run("missing fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/api/books/create/", map[string]any{
			"title": "No Year",
		})

		handler.Create(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		errBody := resp.Body["error"].(map[string]interface{})
		assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
	})

	t.Run("future year rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/api/books/create/", map[string]any{
			"title":            "From The Future",
			"publication_year": 3000,
			"author":           1,
		})

		handler.Create(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("three-digit year rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/api/books/create/", map[string]any{
			"title":            "Too Old",
			"publication_year": 999,
			"author":           1,
		})

		handler.Create(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown author", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(ErrAuthorNotFound)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/api/books/create/", map[string]any{
			"title":            "Orphaned",
			"publication_year": 2001,
			"author":           12345,
		})

		handler.Create(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		errBody := resp.Body["error"].(map[string]interface{})
		assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/books/create/", nil)

		handler.Create(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_Update(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	updated := Book{ID: 7, Title: "Nineteen Eighty-Four", PublicationYear: 1949, AuthorID: 3, AuthorName: "George Orwell"}

	t.Run("put replaces all fields", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), int64(7), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ int64, p Patch) (Book, error) {
				assert.NotNil(t, p.Title)
				assert.NotNil(t, p.PublicationYear)
				assert.NotNil(t, p.AuthorID)
				return updated, nil
			})

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPut, "/api/books/7/update/", map[string]any{
			"title":            "Nineteen Eighty-Four",
			"publication_year": 1949,
			"author":           3,
		})
		r.SetPathValue("id", "7")

		handler.Update(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("put with missing field rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPut, "/api/books/7/update/", map[string]any{
			"title": "Only Title",
		})
		r.SetPathValue("id", "7")

		handler.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("patch updates subset", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), int64(7), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ int64, p Patch) (Book, error) {
				if assert.NotNil(t, p.Title) {
					assert.Equal(t, "Nineteen Eighty-Four", *p.Title)
				}
				assert.Nil(t, p.PublicationYear)
				assert.Nil(t, p.AuthorID)
				return updated, nil
			})

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPatch, "/api/books/7/update/", map[string]any{
			"title": "Nineteen Eighty-Four",
		})
		r.SetPathValue("id", "7")

		handler.Update(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("patch empty title rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPatch, "/api/books/7/update/", map[string]any{
			"title": "",
		})
		r.SetPathValue("id", "7")

		handler.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), int64(99), gomock.Any()).Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPatch, "/api/books/99/update/", map[string]any{
			"title": "Ghost",
		})
		r.SetPathValue("id", "99")

		handler.Update(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown author", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), int64(7), gomock.Any()).Return(Book{}, ErrAuthorNotFound)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPatch, "/api/books/7/update/", map[string]any{
			"author": 12345,
		})
		r.SetPathValue("id", "7")

		handler.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_Delete(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), int64(7)).Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/api/books/7/delete/", nil)
		r.SetPathValue("id", "7")

		handler.Delete(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), int64(99)).Return(ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/api/books/99/delete/", nil)
		r.SetPathValue("id", "99")

		handler.Delete(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
