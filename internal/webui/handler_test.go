package webui_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"go-directory/internal/apiclient"
	"go-directory/internal/form"
	"go-directory/internal/view"
	"go-directory/internal/webui"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	mu        sync.Mutex
	rows      []view.Record
	createErr error
	deleteErr error
}

func (s *stubSource) List(context.Context) ([]view.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]view.Record(nil), s.rows...), nil
}

func (s *stubSource) Create(_ context.Context, v form.Values) (view.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return view.Record{}, s.createErr
	}
	rec := view.Record{ID: "new", Name: v.Name, Phone: v.Phone, Email: v.Email, Address: v.Address}
	s.rows = append(s.rows, rec)
	return rec, nil
}

func (s *stubSource) Update(_ context.Context, id string, v form.Values) (view.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Name = v.Name
			return s.rows[i], nil
		}
	}
	return view.Record{}, &apiclient.APIError{Code: "NOT_FOUND", Message: "Employee not found"}
}

func (s *stubSource) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return &apiclient.APIError{Code: "NOT_FOUND", Message: "Employee not found"}
}

func seed(n int) []view.Record {
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi", "Ivan", "Judy", "Mallory", "Niaj"}
	out := make([]view.Record, n)
	for i := range out {
		out[i] = view.Record{
			ID:    "id-" + names[i],
			Name:  names[i],
			Email: strings.ToLower(names[i]) + "@x.io",
		}
	}
	return out
}

func setup(src *stubSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	session := view.NewSession(src, view.LogNotifier{Logger: zap.NewNop()})
	webui.RegisterRoutes(r, webui.NewHandler(session, nil, zap.NewNop()))
	return r
}

func get(t *testing.T, r http.Handler, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return w, doc
}

func post(t *testing.T, r http.Handler, target string, values url.Values) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return w, doc
}

func validValues() url.Values {
	return url.Values{
		"name":    {"Jane Doe"},
		"phone":   {"1234567890"},
		"email":   {"jane@x.io"},
		"address": {"12 Long Street"},
	}
}

func TestCards(t *testing.T) {
	r := setup(&stubSource{rows: seed(7)})

	w, doc := get(t, r, "/?notice=deleted")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, doc.Find("article.card").Length())
	assert.Equal(t, view.NoticeDeleted, doc.Find(".notice-success").Text())
	assert.Equal(t, 1, doc.Find("form.employee-form").Length())
}

func TestTable(t *testing.T) {
	r := setup(&stubSource{rows: seed(12)})

	t.Run("second page of five", func(t *testing.T) {
		_, doc := get(t, r, "/table-view?page=2")

		names := doc.Find("tbody td.name").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
		assert.Equal(t, []string{"Frank", "Grace", "Heidi", "Ivan", "Judy"}, names)
		assert.Equal(t, 3, doc.Find("nav.pagination a.page").Length())
		assert.Equal(t, "2", doc.Find("nav.pagination a.current").Text())
	})

	t.Run("search matches name or email", func(t *testing.T) {
		_, doc := get(t, r, "/table-view?search=ALICE&page=3")

		assert.Equal(t, 1, doc.Find("tbody tr").Length())
		assert.Equal(t, "1", doc.Find("nav.pagination a.current").Text())
	})

	t.Run("page size clamps page", func(t *testing.T) {
		_, doc := get(t, r, "/table-view?page=3&page_size=10")

		assert.Equal(t, 2, doc.Find("tbody tr").Length())
		assert.Equal(t, "2", doc.Find("nav.pagination a.current").Text())
	})

	t.Run("unknown page size falls back to default", func(t *testing.T) {
		_, doc := get(t, r, "/table-view?page_size=7")

		assert.Equal(t, 5, doc.Find("tbody tr").Length())
	})
}

func TestCreate(t *testing.T) {
	t.Run("success redirects", func(t *testing.T) {
		src := &stubSource{}
		r := setup(src)

		w, _ := post(t, r, "/employees", validValues())

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/?notice=created", w.Header().Get("Location"))
		assert.Len(t, src.rows, 1)
	})

	t.Run("form violations re-render", func(t *testing.T) {
		src := &stubSource{}
		r := setup(src)
		values := validValues()
		values.Set("name", "Al")

		w, doc := post(t, r, "/employees", values)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "Name must be at least 3 characters", doc.Find(".field-error[data-field=name]").Text())
		kept, _ := doc.Find("input[name=email]").Attr("value")
		assert.Equal(t, "jane@x.io", kept)
		assert.Empty(t, src.rows)
	})

	t.Run("conflict shows notice", func(t *testing.T) {
		src := &stubSource{createErr: &apiclient.APIError{
			Status:  http.StatusConflict,
			Code:    "CONFLICT",
			Message: "Employee with the same email already exists",
		}}
		r := setup(src)

		w, doc := post(t, r, "/employees", validValues())

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, doc.Find(".notice-error").Text(), "same email already exists")
	})
}

func TestEditAndUpdate(t *testing.T) {
	src := &stubSource{rows: seed(2)}
	r := setup(src)

	w, doc := get(t, r, "/employees/id-Bob/edit")
	require.Equal(t, http.StatusOK, w.Code)
	name, _ := doc.Find("input[name=name]").Attr("value")
	assert.Equal(t, "Bob", name)

	values := validValues()
	values.Set("name", "Robert")
	w, _ = post(t, r, "/employees/id-Bob", values)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "Robert", src.rows[1].Name)

	w, _ = get(t, r, "/employees/ghost/edit")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDelete(t *testing.T) {
	t.Run("confirm then delete", func(t *testing.T) {
		src := &stubSource{rows: seed(3)}
		r := setup(src)

		w, doc := get(t, r, "/employees/id-Carol/delete")
		require.Equal(t, http.StatusOK, w.Code)
		action, _ := doc.Find("form.confirm-delete").Attr("action")
		assert.Equal(t, "/employees/id-Carol/delete", action)

		w, _ = post(t, r, "/employees/id-Carol/delete", nil)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Len(t, src.rows, 2)
	})

	t.Run("failure keeps the card", func(t *testing.T) {
		src := &stubSource{rows: seed(3), deleteErr: &apiclient.StoreError{APIError: apiclient.APIError{
			Code:    "STORE_ERROR",
			Message: "Error deleting employee",
		}}}
		r := setup(src)

		w, doc := post(t, r, "/employees/id-Carol/delete", nil)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, view.NoticeDeleteFail, doc.Find(".notice-error").Text())
		assert.Equal(t, 1, doc.Find("article.card[data-id=id-Carol]").Length())
	})

	t.Run("unknown id", func(t *testing.T) {
		r := setup(&stubSource{rows: seed(1)})

		w, _ := post(t, r, "/employees/ghost/delete", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
