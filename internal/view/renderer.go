package view

import (
	"html/template"
	"io"
	"strings"
	"unicode/utf8"

	"go-directory/internal/form"
)

// FormData is the state of the employee form on a page.
type FormData struct {
	Title      string
	Action     string
	Submit     string
	Values     form.Input
	Violations form.Violations
}

// Error returns the message for field, used by the templates.
func (f FormData) Error(field string) string {
	return f.Violations.For(field)
}

type TableData struct {
	Search    string
	Page      int
	PageSize  int
	PageSizes []int
	Pages     []int
}

// Page is everything a directory page renders.
type Page struct {
	Title     string
	Notice    *Notice
	LoadError string
	Records   []Record
	Form      *FormData
	Table     *TableData
	Confirm   *Record
}

const (
	TemplateCards   = "cards"
	TemplateTable   = "table"
	TemplateEdit    = "edit"
	TemplateConfirm = "confirm"
)

var funcs = template.FuncMap{
	"initial": func(name string) string {
		r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
		if r == utf8.RuneError {
			return "?"
		}
		return strings.ToUpper(string(r))
	},
}

const layout = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<nav><a href="/">Cards</a> <a href="/table-view">Table</a></nav>
<main>
<h1>{{.Title}}</h1>
{{with .Notice}}<p class="notice notice-{{.Kind}}" role="status">{{.Message}}</p>{{end}}
{{with .LoadError}}<p class="load-error" role="alert">{{.}}</p>{{end}}
{{template "content" .}}
</main>
</body>
</html>{{end}}
{{define "avatar"}}<span class="avatar"><img src="{{.ImageURL}}" alt="{{.Name}}"><span class="avatar-fallback">{{initial .Name}}</span></span>{{end}}
{{define "form"}}<form class="employee-form" method="post" action="{{.Action}}">
<h2>{{.Title}}</h2>
<label>Name <input name="name" value="{{.Values.Name}}"></label>{{with .Error "name"}}<span class="field-error" data-field="name">{{.}}</span>{{end}}
<label>Phone <input name="phone" value="{{.Values.Phone}}"></label>{{with .Error "phone"}}<span class="field-error" data-field="phone">{{.}}</span>{{end}}
<label>Email <input name="email" value="{{.Values.Email}}"></label>{{with .Error "email"}}<span class="field-error" data-field="email">{{.}}</span>{{end}}
<label>Address <input name="address" value="{{.Values.Address}}"></label>{{with .Error "address"}}<span class="field-error" data-field="address">{{.}}</span>{{end}}
<label>Image URL <input name="imageUrl" value="{{.Values.ImageURL}}"></label>{{with .Error "imageUrl"}}<span class="field-error" data-field="imageUrl">{{.}}</span>{{end}}
<button type="submit">{{.Submit}}</button>
</form>{{end}}`

var pages = map[string]string{
	TemplateCards: `{{define "content"}}
{{with .Form}}{{template "form" .}}{{end}}
<section class="cards">
{{range .Records}}<article class="card" data-id="{{.ID}}">
{{template "avatar" .}}
<h3>{{.Name}}</h3>
<p class="email">{{.Email}}</p>
<p class="phone">{{.Phone}}</p>
<p class="address">{{.Address}}</p>
<a class="edit" href="/employees/{{.ID}}/edit">Edit</a>
<a class="delete" href="/employees/{{.ID}}/delete">Delete</a>
</article>
{{else}}<p class="empty">No employees found.</p>{{end}}
</section>{{end}}`,

	TemplateTable: `{{define "content"}}
{{with .Form}}{{template "form" .}}{{end}}
{{with .Table}}<form class="filters" method="get" action="/table-view">
<input id="search" name="search" placeholder="Search by name or email..." value="{{.Search}}">
<label>Rows per page: <select name="page_size">{{$size := .PageSize}}{{range .PageSizes}}<option value="{{.}}"{{if eq . $size}} selected{{end}}>{{.}}</option>{{end}}</select></label>
<button type="submit">Apply</button>
</form>{{end}}
<table>
<thead><tr><th>Profile Picture</th><th>Name</th><th>Phone</th><th>Email</th><th>Address</th><th>Action</th></tr></thead>
<tbody>
{{range .Records}}<tr data-id="{{.ID}}"><td>{{template "avatar" .}}</td><td class="name">{{.Name}}</td><td>{{.Phone}}</td><td class="email">{{.Email}}</td><td>{{.Address}}</td>
<td><a class="edit" href="/employees/{{.ID}}/edit">Edit</a> <a class="delete" href="/employees/{{.ID}}/delete">Delete</a></td></tr>
{{end}}</tbody>
</table>
{{with .Table}}<nav class="pagination">{{$t := .}}{{range .Pages}}<a class="page{{if eq . $t.Page}} current{{end}}" href="/table-view?search={{$t.Search}}&page={{.}}&page_size={{$t.PageSize}}">{{.}}</a>{{end}}</nav>{{end}}
{{end}}`,

	TemplateEdit: `{{define "content"}}{{with .Form}}{{template "form" .}}{{end}}{{end}}`,

	TemplateConfirm: `{{define "content"}}{{with .Confirm}}<form class="confirm-delete" method="post" action="/employees/{{.ID}}/delete">
<p>Delete {{.Name}} ({{.Email}})? This cannot be undone.</p>
<button type="submit">Delete</button> <a href="/">Cancel</a>
</form>{{end}}{{end}}`,
}

// Renderer renders the directory pages with html/template.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() *Renderer {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for name, content := range pages {
		t := template.Must(template.New(name).Funcs(funcs).Parse(layout))
		r.templates[name] = template.Must(t.Parse(content))
	}
	return r
}

func (r *Renderer) Render(w io.Writer, name string, page Page) error {
	t, ok := r.templates[name]
	if !ok {
		return &UnknownTemplateError{Name: name}
	}
	return t.ExecuteTemplate(w, "layout", page)
}

type UnknownTemplateError struct {
	Name string
}

func (e *UnknownTemplateError) Error() string {
	return "view: unknown template " + e.Name
}
