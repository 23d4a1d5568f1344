// Package webui serves the directory pages: a card view and a searchable,
// paginated table, both backed by a view.Session.
package webui

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"go-directory/internal/apiclient"
	"go-directory/internal/form"
	"go-directory/internal/view"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	titleCards = "Employees"
	titleTable = "Employee Table"
	titleEdit  = "Edit Employee"
	titleAdd   = "Add Employee"
	titleDel   = "Delete Employee"
)

// notices that survive the post/redirect/get round trip
var redirectNotices = map[string]string{
	"created": view.NoticeCreated,
	"updated": view.NoticeUpdated,
	"deleted": view.NoticeDeleted,
}

type Handler struct {
	session  *view.Session
	renderer *view.Renderer
	logger   *zap.Logger
}

func NewHandler(session *view.Session, renderer *view.Renderer, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("webui.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("webui.handler")
	}
	if renderer == nil {
		renderer = view.NewRenderer()
	}
	return &Handler{session: session, renderer: renderer, logger: l}
}

func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.GET("/", h.Cards)
	r.GET("/table-view", h.Table)
	r.POST("/employees", h.Create)
	r.GET("/employees/:id/edit", h.Edit)
	r.POST("/employees/:id", h.Update)
	r.GET("/employees/:id/delete", h.ConfirmDelete)
	r.POST("/employees/:id/delete", h.Delete)
}

func (h *Handler) render(c *gin.Context, status int, name string, page view.Page) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, name, page); err != nil {
		h.logger.Error("render page failed", zap.String("template", name), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// load refreshes the session and reports a failed load on the page.
func (h *Handler) load(c *gin.Context, page *view.Page) {
	if err := h.session.Load(c.Request.Context()); err != nil {
		page.LoadError = view.NoticeLoadFailed
	}
}

func noticeFromQuery(c *gin.Context) *view.Notice {
	if msg, ok := redirectNotices[c.Query("notice")]; ok {
		return &view.Notice{Kind: view.NoticeSuccess, Message: msg}
	}
	return nil
}

func addForm(values form.Input, violations form.Violations) *view.FormData {
	return &view.FormData{
		Title:      titleAdd,
		Action:     "/employees",
		Submit:     "Create",
		Values:     values,
		Violations: violations,
	}
}

func editForm(id string, values form.Input, violations form.Violations) *view.FormData {
	return &view.FormData{
		Title:      titleEdit,
		Action:     "/employees/" + id,
		Submit:     "Update",
		Values:     values,
		Violations: violations,
	}
}

func inputFromRequest(c *gin.Context) form.Input {
	return form.Input{
		Name:     c.PostForm("name"),
		Phone:    c.PostForm("phone"),
		Email:    c.PostForm("email"),
		Address:  c.PostForm("address"),
		ImageURL: c.PostForm("imageUrl"),
	}
}

func (h *Handler) Cards(c *gin.Context) {
	page := view.Page{Title: titleCards, Notice: noticeFromQuery(c), Form: addForm(form.Input{}, nil)}
	h.load(c, &page)
	page.Records = h.session.Cache().All()
	h.render(c, http.StatusOK, view.TemplateCards, page)
}

func (h *Handler) Table(c *gin.Context) {
	page := view.Page{Title: titleTable, Notice: noticeFromQuery(c)}
	h.load(c, &page)

	cache := h.session.Cache()
	cache.SetSearch(c.Query("search"))
	size, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(view.DefaultPageSize)))
	if err != nil || cache.SetPageSize(size) != nil {
		_ = cache.SetPageSize(view.DefaultPageSize)
	}
	if n, err := strconv.Atoi(c.Query("page")); err == nil {
		cache.SetPage(n)
	}

	page.Records = cache.CurrentPage()
	page.Table = &view.TableData{
		Search:    cache.Search(),
		Page:      cache.Page(),
		PageSize:  cache.PageSize(),
		PageSizes: view.PageSizes,
		Pages:     cache.Pages(),
	}
	h.render(c, http.StatusOK, view.TemplateTable, page)
}

// failure turns a rejected save into a status, the field violations to show
// and a notice.
func failure(err error) (int, form.Violations, *view.Notice) {
	var violations form.Violations
	if errors.As(err, &violations) {
		return http.StatusUnprocessableEntity, violations, nil
	}

	notice := &view.Notice{Kind: view.NoticeError, Message: view.NoticeSaveFailed, Err: err}
	var verr *apiclient.ValidationError
	switch {
	case errors.As(err, &verr):
		notice.Message += ": " + verr.Message
		return http.StatusUnprocessableEntity, verr.Violations, notice
	case errors.Is(err, apiclient.ErrConflict):
		notice.Message += ": " + err.Error()
		return http.StatusConflict, nil, notice
	case errors.Is(err, apiclient.ErrNotFound):
		return http.StatusNotFound, nil, notice
	default:
		return http.StatusBadGateway, nil, notice
	}
}

func (h *Handler) Create(c *gin.Context) {
	in := inputFromRequest(c)
	if _, err := h.session.Create(c.Request.Context(), in); err != nil {
		status, violations, notice := failure(err)
		page := view.Page{Title: titleCards, Notice: notice, Form: addForm(in, violations)}
		h.load(c, &page)
		page.Records = h.session.Cache().All()
		h.render(c, status, view.TemplateCards, page)
		return
	}
	c.Redirect(http.StatusSeeOther, "/?notice=created")
}

func (h *Handler) find(c *gin.Context, id string) (view.Record, bool) {
	cache := h.session.Cache()
	if rec, ok := cache.Find(id); ok {
		return rec, true
	}
	if err := h.session.Load(c.Request.Context()); err != nil {
		return view.Record{}, false
	}
	return cache.Find(id)
}

func (h *Handler) notFound(c *gin.Context) {
	page := view.Page{
		Title:  titleCards,
		Notice: &view.Notice{Kind: view.NoticeError, Message: "Employee not found"},
	}
	page.Records = h.session.Cache().All()
	h.render(c, http.StatusNotFound, view.TemplateCards, page)
}

func (h *Handler) Edit(c *gin.Context) {
	id := c.Param("id")
	rec, ok := h.find(c, id)
	if !ok {
		h.notFound(c)
		return
	}
	values := form.Input{
		Name:     rec.Name,
		Phone:    rec.Phone,
		Email:    rec.Email,
		Address:  rec.Address,
		ImageURL: rec.ImageURL,
	}
	h.render(c, http.StatusOK, view.TemplateEdit, view.Page{Title: titleEdit, Form: editForm(id, values, nil)})
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	in := inputFromRequest(c)
	if _, err := h.session.Update(c.Request.Context(), id, in); err != nil {
		status, violations, notice := failure(err)
		h.render(c, status, view.TemplateEdit, view.Page{
			Title:  titleEdit,
			Notice: notice,
			Form:   editForm(id, in, violations),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/?notice=updated")
}

func (h *Handler) ConfirmDelete(c *gin.Context) {
	rec, ok := h.find(c, c.Param("id"))
	if !ok {
		h.notFound(c)
		return
	}
	h.render(c, http.StatusOK, view.TemplateConfirm, view.Page{Title: titleDel, Confirm: &rec})
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.find(c, id); !ok {
		h.notFound(c)
		return
	}

	if err := h.session.Delete(c.Request.Context(), id); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, apiclient.ErrNotFound) {
			status = http.StatusNotFound
		}
		page := view.Page{
			Title:  titleCards,
			Notice: &view.Notice{Kind: view.NoticeError, Message: view.NoticeDeleteFail, Err: err},
		}
		page.Records = h.session.Cache().All()
		h.render(c, status, view.TemplateCards, page)
		return
	}
	c.Redirect(http.StatusSeeOther, "/?notice=deleted")
}
