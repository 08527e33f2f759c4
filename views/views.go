// Package views renders the CareMate pages from embedded templates and serves
// the embedded stylesheet.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/caremate/caremate-web/chat"
	"github.com/caremate/caremate-web/forms"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// NotFound is the template rendered for unknown routes
const NotFound = "not-found"

// NavLink is one entry of the navigation bar
type NavLink struct {
	Path  string
	Label string
}

var navLinks = []NavLink{
	{Path: forms.RouteHome, Label: "Home"},
	{Path: forms.RouteProfile, Label: "Profile"},
	{Path: forms.RouteFood, Label: "Food Entry"},
	{Path: forms.RouteMedicines, Label: "Medicines"},
	{Path: forms.RouteResults, Label: "Results"},
}

// FormID is the id of the form on pages that have one. The chat button
// submits that form so typed values reach the server.
const FormID = "page-form"

type pageInfo struct {
	template string
	title    string
	hasForm  bool
}

var pages = map[string]pageInfo{
	forms.RouteHome:      {"home", "Home", false},
	forms.RouteProfile:   {"profile", "User Profile", true},
	forms.RouteFood:      {"food", "Food Entry", true},
	forms.RouteMedicines: {"medicines", "Medicines Entry", true},
	forms.RouteResults:   {"output", "Results", false},
}

// ChatView is the chat widget part of a page
type ChatView struct {
	Kind     string
	Open     bool
	Greeting string
	Embed    *chat.EmbedOptions // loader options, rendered on every page for the embed widget
}

// Page is the data handed to a page template
type Page struct {
	Title string
	Route string
	Token string
	Alert string
	State forms.PageState
	Chat  ChatView
}

// NewPage builds the page data for a mounted route
func NewPage(route, token string, state forms.PageState) Page {
	return Page{
		Title: pages[route].title,
		Route: route,
		Token: token,
		State: state,
	}
}

// HasForm reports whether the page template renders a form with FormID
func (p Page) HasForm() bool {
	return pages[p.Route].hasForm
}

// Renderer executes the page templates
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"navLinks":       func() []NavLink { return navLinks },
		"formID":         func() string { return FormID },
		"noResults":      func() string { return forms.NoResultsPlaceholder },
		"noAlternatives": func() string { return forms.NoAlternativesPlaceholder },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the template of page.Route with the given status. The page is
// executed into a buffer first, so a template error leaves w untouched.
func (r *Renderer) Render(w http.ResponseWriter, status int, page Page) error {
	info, ok := pages[page.Route]
	if !ok {
		return fmt.Errorf("no template for route %q", page.Route)
	}
	return r.execute(w, status, info.template, page)
}

// RenderNotFound writes the 404 page inside the navigation shell
func (r *Renderer) RenderNotFound(w http.ResponseWriter, path string) error {
	return r.execute(w, http.StatusNotFound, NotFound, Page{Title: "Not Found", Route: path})
}

func (r *Renderer) execute(w http.ResponseWriter, status int, name string, page Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded static files. Mount it under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// static is embedded at build time, Sub only fails on an invalid name
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
