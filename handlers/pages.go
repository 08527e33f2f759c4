package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/caremate/caremate-web/chat"
	"github.com/caremate/caremate-web/forms"
	"github.com/caremate/caremate-web/interfaces"
	"github.com/caremate/caremate-web/logging"
	"github.com/caremate/caremate-web/metrics"
	"github.com/caremate/caremate-web/session"
	"github.com/caremate/caremate-web/views"
)

// Form field names shared by every page
const (
	fieldToken = "_token"
	fieldRoute = "_route"
)

// actionResult is what an action hands back to the page it re-renders
type actionResult struct {
	alert    string
	rejected bool // input was ignored, e.g. an empty ingredient
}

type actionFunc func(state forms.PageState, form url.Values) (actionResult, error)

// on adapts a typed action to the page state stored in the session
func on[T forms.PageState](fn func(T, url.Values) actionResult) actionFunc {
	return func(state forms.PageState, form url.Values) (actionResult, error) {
		s, ok := state.(T)
		if !ok {
			return actionResult{}, fmt.Errorf("unexpected page state %T", state)
		}
		return fn(s, form), nil
	}
}

// embedOptioner is implemented by widgets that render a loader on every page
type embedOptioner interface {
	Options() chat.EmbedOptions
}

// PageHandler serves the HTML pages and their form actions
type PageHandler struct {
	store    interfaces.PageStore
	widget   interfaces.ChatWidget
	renderer *views.Renderer
}

// NewPageHandler creates the page handler with injected dependencies
func NewPageHandler(store interfaces.PageStore, widget interfaces.ChatWidget, renderer *views.Renderer) *PageHandler {
	return &PageHandler{
		store:    store,
		widget:   widget,
		renderer: renderer,
	}
}

// Page mounts fresh state for route and renders it. Whatever the visitor had
// on the previous page is dropped. HEAD requests render the fresh page without
// mounting it, so the visitor's current page survives.
func (h *PageHandler) Page(route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor := session.VisitorID(r.Context())
		if visitor == "" {
			logging.Error("Request reached a page without a visitor ID", "path", r.URL.Path)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		state, ok := forms.NewPageState(route)
		if !ok {
			h.NotFound(w, r)
			return
		}

		if r.Method == http.MethodHead {
			h.render(w, r, h.page(&session.Mount{Route: route, State: state}, "", nil))
			return
		}

		m := h.store.Mount(visitor, state)
		h.render(w, r, h.page(m, "", nil))
	}
}

// NotFound renders the 404 page inside the navigation shell
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.RenderNotFound(w, r.URL.Path); err != nil {
		logging.Error("Failed to render not found page", "error", err)
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	}
}

func (h *PageHandler) ProfileSave() http.HandlerFunc {
	return h.action(forms.RouteProfile, "save", on(func(p *forms.Profile, form url.Values) actionResult {
		p.Update(profileFields(form))
		return actionResult{alert: forms.ProfileSavedAlert}
	}))
}

func (h *PageHandler) ProfileDelete() http.HandlerFunc {
	return h.action(forms.RouteProfile, "delete", on(func(p *forms.Profile, _ url.Values) actionResult {
		p.Reset()
		return actionResult{alert: forms.ProfileDeletedAlert}
	}))
}

func (h *PageHandler) FoodAdd() http.HandlerFunc {
	return h.action(forms.RouteFood, "add", on(func(f *forms.FoodEntry, form url.Values) actionResult {
		f.SetDish(form.Get("dish"))
		return actionResult{rejected: !f.AddIngredient(form.Get("ingredient"))}
	}))
}

func (h *PageHandler) FoodClear() http.HandlerFunc {
	return h.action(forms.RouteFood, "clear", on(func(f *forms.FoodEntry, _ url.Values) actionResult {
		f.Clear()
		return actionResult{}
	}))
}

// FoodSubmit shows the summary. Text left in the ingredient box stays there.
func (h *PageHandler) FoodSubmit() http.HandlerFunc {
	return h.action(forms.RouteFood, "submit", on(func(f *forms.FoodEntry, form url.Values) actionResult {
		keepTyped(f, form)
		return actionResult{alert: f.Summary()}
	}))
}

func (h *PageHandler) MedicinesAdd() http.HandlerFunc {
	return h.action(forms.RouteMedicines, "add", on(func(m *forms.MedicineEntry, form url.Values) actionResult {
		return actionResult{rejected: !m.AddMedicine(form.Get("medicine"))}
	}))
}

func (h *PageHandler) MedicinesClear() http.HandlerFunc {
	return h.action(forms.RouteMedicines, "clear", on(func(m *forms.MedicineEntry, _ url.Values) actionResult {
		m.Clear()
		return actionResult{}
	}))
}

func (h *PageHandler) MedicinesSubmit() http.HandlerFunc {
	return h.action(forms.RouteMedicines, "submit", on(func(m *forms.MedicineEntry, form url.Values) actionResult {
		keepTyped(m, form)
		return actionResult{alert: m.Summary()}
	}))
}

func profileFields(form url.Values) forms.Profile {
	return forms.Profile{
		Name:        form.Get("name"),
		DateOfBirth: form.Get("dob"),
		Age:         form.Get("age"),
		Conditions:  form.Get("conditions"),
		Allergies:   form.Get("allergies"),
	}
}

// keepTyped copies the values typed into the page's inputs into its state
// without running an action. Fields absent from form are left alone.
func keepTyped(state forms.PageState, form url.Values) {
	set := func(dst *string, key string) {
		if form.Has(key) {
			*dst = form.Get(key)
		}
	}

	switch s := state.(type) {
	case *forms.Profile:
		set(&s.Name, "name")
		set(&s.DateOfBirth, "dob")
		set(&s.Age, "age")
		set(&s.Conditions, "conditions")
		set(&s.Allergies, "allergies")
	case *forms.FoodEntry:
		set(&s.Dish, "dish")
		set(&s.Pending, "ingredient")
	case *forms.MedicineEntry:
		set(&s.Pending, "medicine")
	}
}

// ChatOpen handles the floating chat button. On pages with a form the button
// submits that form, so typed values are kept. The page is re-rendered either
// with the chat opened or with the loading alert.
func (h *PageHandler) ChatOpen(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badForm(w, err)
		return
	}

	route := r.PostForm.Get(fieldRoute)
	if _, ok := forms.NewPageState(route); !ok {
		route = forms.RouteHome
	}

	m, err := h.store.Apply(session.VisitorID(r.Context()), route, r.PostForm.Get(fieldToken), func(state forms.PageState) error {
		keepTyped(state, r.PostForm)
		return nil
	})
	if err != nil {
		h.stale(w, r, route, "chat", err)
		return
	}

	kind := h.widget.Kind()
	launch, err := h.widget.Open()
	if err != nil {
		if !errors.Is(err, chat.ErrNotReady) {
			logging.Error("Failed to open chat", "kind", kind, "error", err)
		}
		metrics.ChatOpensTotal.WithLabelValues(kind, "not_ready").Inc()
		h.render(w, r, h.page(m, chat.NotReadyAlert, nil))
		return
	}

	metrics.ChatOpensTotal.WithLabelValues(kind, "opened").Inc()
	h.render(w, r, h.page(m, "", &launch))
}

// action runs fn against the visitor's mounted page when the posted token
// still matches it, then re-renders that page
func (h *PageHandler) action(route, name string, fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.badForm(w, err)
			return
		}

		var result actionResult
		m, err := h.store.Apply(session.VisitorID(r.Context()), route, r.PostForm.Get(fieldToken), func(state forms.PageState) error {
			var err error
			result, err = fn(state, r.PostForm)
			return err
		})

		switch {
		case errors.Is(err, session.ErrNoMount), errors.Is(err, session.ErrStale):
			h.stale(w, r, route, name, err)
			return
		case err != nil:
			logging.Error("Form action failed", "page", route, "action", name, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		outcome := metrics.OutcomeApplied
		if result.rejected {
			outcome = metrics.OutcomeRejected
		}
		metrics.RecordFormAction(route, name, outcome)

		h.render(w, r, h.page(m, result.alert, nil))
	}
}

// stale sends the visitor to a fresh copy of route
func (h *PageHandler) stale(w http.ResponseWriter, r *http.Request, route, name string, err error) {
	metrics.RecordFormAction(route, name, metrics.OutcomeStale)
	logging.Debug("Stale form action, remounting page", "page", route, "action", name, "reason", err)
	http.Redirect(w, r, route, http.StatusSeeOther)
}

func (h *PageHandler) badForm(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
		return
	}
	logging.Warn("Failed to parse form", "error", err)
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
}

// page builds the view of a mounted page. launch is set when the chat was
// just opened.
func (h *PageHandler) page(m *session.Mount, alert string, launch *chat.Launch) views.Page {
	page := views.NewPage(m.Route, m.Token, m.State)
	page.Alert = alert
	page.Chat = views.ChatView{Kind: h.widget.Kind()}

	if e, ok := h.widget.(embedOptioner); ok {
		opts := e.Options()
		page.Chat.Embed = &opts
	}
	if launch != nil {
		page.Chat.Kind = launch.Kind
		page.Chat.Open = true
		page.Chat.Greeting = launch.Greeting
		if launch.Embed != nil {
			page.Chat.Embed = launch.Embed
		}
	}
	return page
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page views.Page) {
	if err := h.renderer.Render(w, http.StatusOK, page); err != nil {
		logging.Error("Failed to render page", "path", r.URL.Path, "route", page.Route, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
