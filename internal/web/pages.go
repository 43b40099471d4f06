// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookshelf/internal/auth"
	"github.com/taibuivan/bookshelf/internal/form"
	"github.com/taibuivan/bookshelf/internal/inventory"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/bookshelf/internal/platform/request"
	"github.com/taibuivan/bookshelf/internal/platform/respond"
	"github.com/taibuivan/bookshelf/pkg/convert"
)

//go:embed templates/*.html
var templateFS embed.FS

const loginPath = "/login"

var templateFuncs = template.FuncMap{
	"imageSrc": imageSrc,
}

// imageSrc marks http(s) and data:image URLs as safe image sources. Anything
// else renders as an empty src.
func imageSrc(raw string) template.URL {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "data:image/"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "/"):
		return template.URL(raw)
	default:
		return ""
	}
}

// Pages serves the browser surface. It owns the single browser form.
type Pages struct {
	inventory    Inventory
	controller   *form.Controller
	authService  *auth.Service
	templates    *template.Template
	requireOwner func(http.Handler) http.Handler
	secureCookie bool
	logger       *slog.Logger
}

// PagesConfig carries the optional collaborators of [Pages].
type PagesConfig struct {
	Auth         *auth.Service
	RequireOwner func(http.Handler) http.Handler
	SecureCookie bool
}

// NewPages parses the embedded templates and builds the browser handlers.
func NewPages(inventory Inventory, cfg PagesConfig, logger *slog.Logger) (*Pages, error) {
	templates, err := template.New("pages").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	requireOwner := cfg.RequireOwner
	if requireOwner == nil {
		requireOwner = func(next http.Handler) http.Handler { return next }
	}

	return &Pages{
		inventory:    inventory,
		controller:   form.NewController(inventory, logger),
		authService:  cfg.Auth,
		templates:    templates,
		requireOwner: requireOwner,
		secureCookie: cfg.SecureCookie,
		logger:       logger,
	}, nil
}

// Routes returns the browser router.
//
// # Endpoints
//   - GET  /                   : Form and table.
//   - POST /books              : Create from the form.
//   - POST /books/cancel       : Leave edit mode.
//   - GET  /books/{id}/edit    : Load a record into the form.
//   - POST /books/{id}         : Save the edited record.
//   - GET  /books/{id}/delete  : Confirmation page.
//   - POST /books/{id}/delete  : Delete when confirm=yes.
//   - GET  /books/{id}/view    : Redirect to the record's detail URL.
//   - GET|POST /login, POST /logout
func (pages *Pages) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", pages.index)
	router.Get("/books/{id}/view", pages.view)
	router.Get(loginPath, pages.loginForm)
	router.Post(loginPath, pages.login)
	router.Post("/logout", pages.logout)

	router.Group(func(ownerRoute chi.Router) {
		ownerRoute.Use(pages.requireOwner)

		ownerRoute.Post("/books", pages.create)
		ownerRoute.Post("/books/cancel", pages.cancel)
		ownerRoute.Get("/books/{id}/edit", pages.edit)
		ownerRoute.Post("/books/{id}", pages.update)
		ownerRoute.Get("/books/{id}/delete", pages.confirmDelete)
		ownerRoute.Post("/books/{id}/delete", pages.delete)
	})

	return router
}

// # Page Models

type indexPage struct {
	Form        form.View
	Books       []inventory.Book
	Fetch       inventory.FetchStatus
	FetchError  string
	Notice      string
	Query       string
	AuthEnabled bool
	IsOwner     bool
}

type confirmPage struct {
	Book inventory.Book
}

type loginPage struct {
	Next  string
	Error string
}

type errorPage struct {
	Status  int
	Message string
}

// # Handlers

func (pages *Pages) index(writer http.ResponseWriter, request *http.Request) {
	pages.renderIndex(writer, request, http.StatusOK)
}

func (pages *Pages) create(writer http.ResponseWriter, request *http.Request) {
	// A create post always starts from an empty form.
	if pages.controller.View().Mode == form.ModeEditing {
		pages.controller.Cancel()
	}
	pages.submit(writer, request)
}

func (pages *Pages) update(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")
	if pages.controller.View().EditingID != bookID {
		if err := pages.controller.BeginEdit(bookID); err != nil {
			pages.fail(writer, request, err)
			return
		}
	}
	pages.submit(writer, request)
}

// submit feeds the posted form to the controller and submits it.
func (pages *Pages) submit(writer http.ResponseWriter, request *http.Request) {
	input, err := readSubmission(writer, request)
	if err == nil {
		err = input.apply(request.Context(), pages.controller, pages.logger)
	}
	if err == nil {
		_, err = pages.controller.Submit(request.Context())
	}

	if err != nil {
		if apperr.HasCode(err, "VALIDATION_ERROR") {
			pages.renderIndex(writer, request, http.StatusBadRequest)
			return
		}
		pages.fail(writer, request, err)
		return
	}

	http.Redirect(writer, request, "/", http.StatusSeeOther)
}

func (pages *Pages) cancel(writer http.ResponseWriter, request *http.Request) {
	pages.controller.Cancel()
	http.Redirect(writer, request, "/", http.StatusSeeOther)
}

func (pages *Pages) edit(writer http.ResponseWriter, request *http.Request) {
	if err := pages.controller.BeginEdit(requestutil.ID(request, "id")); err != nil {
		pages.fail(writer, request, err)
		return
	}
	http.Redirect(writer, request, "/#book-form", http.StatusSeeOther)
}

func (pages *Pages) confirmDelete(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	// The read-only notice is shown instead of the prompt.
	if inventory.IsRemoteID(bookID) {
		pages.fail(writer, request, apperr.Forbidden(inventory.NoticeCannotDelete))
		return
	}

	book, err := pages.inventory.Get(bookID)
	if err != nil {
		pages.fail(writer, request, err)
		return
	}
	if book.IsRemote() {
		pages.fail(writer, request, apperr.Forbidden(inventory.NoticeCannotDelete))
		return
	}

	pages.render(writer, request, http.StatusOK, "confirm", confirmPage{Book: book})
}

func (pages *Pages) delete(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		pages.fail(writer, request, apperr.ValidationError("Invalid form payload"))
		return
	}

	confirmed := convert.ToBool(request.PostFormValue("confirm"))
	if _, err := pages.inventory.Delete(request.Context(), requestutil.ID(request, "id"), confirmed); err != nil {
		pages.fail(writer, request, err)
		return
	}
	http.Redirect(writer, request, "/", http.StatusSeeOther)
}

func (pages *Pages) view(writer http.ResponseWriter, request *http.Request) {
	book, err := pages.inventory.Get(requestutil.ID(request, "id"))
	if err != nil {
		pages.renderError(writer, request, err)
		return
	}

	target, parseErr := url.Parse(book.URL)
	if book.URL == constants.LocalBookURL || parseErr != nil || (target.Scheme != "http" && target.Scheme != "https") {
		http.Redirect(writer, request, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(writer, request, target.String(), http.StatusFound)
}

func (pages *Pages) loginForm(writer http.ResponseWriter, request *http.Request) {
	pages.render(writer, request, http.StatusOK, "login", loginPage{Next: safeNext(request.URL.Query().Get("next"))})
}

func (pages *Pages) login(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		pages.renderError(writer, request, apperr.ValidationError("Invalid form payload"))
		return
	}
	next := safeNext(request.PostFormValue("next"))

	if pages.authService == nil {
		pages.renderError(writer, request, apperr.Forbidden("Owner login is not enabled"))
		return
	}

	session, err := pages.authService.Login(request.Context(), request.PostFormValue("password"))
	if err != nil {
		appError := respond.Classify(request, err)
		pages.render(writer, request, appError.HTTPStatus, "login", loginPage{Next: next, Error: appError.Message})
		return
	}

	auth.SetSessionCookie(writer, session, pages.secureCookie)
	http.Redirect(writer, request, next, http.StatusSeeOther)
}

func (pages *Pages) logout(writer http.ResponseWriter, request *http.Request) {
	auth.ClearSessionCookie(writer, pages.secureCookie)
	http.Redirect(writer, request, "/", http.StatusSeeOther)
}

// # Rendering

// fail shows user-facing rejections as a notice on the index page and
// anything else as an error page.
func (pages *Pages) fail(writer http.ResponseWriter, request *http.Request, err error) {
	if apperr.HasCode(err, "FORBIDDEN") {
		pages.controller.SetNotice(err.Error())
		http.Redirect(writer, request, "/", http.StatusSeeOther)
		return
	}
	pages.renderError(writer, request, err)
}

func (pages *Pages) renderIndex(writer http.ResponseWriter, request *http.Request, status int) {
	query := request.URL.Query().Get("q")
	snapshot := pages.inventory.Snapshot()

	pages.render(writer, request, status, "index", indexPage{
		Form:        pages.controller.View(),
		Books:       pages.inventory.List(inventory.Filter{Query: query}),
		Fetch:       snapshot.Fetch,
		FetchError:  snapshot.FetchError,
		Notice:      pages.controller.TakeNotice(),
		Query:       query,
		AuthEnabled: pages.authService != nil && pages.authService.Enabled(),
		IsOwner:     ctxutil.IsOwner(request.Context()),
	})
}

func (pages *Pages) renderError(writer http.ResponseWriter, request *http.Request, err error) {
	appError := respond.Classify(request, err)
	pages.render(writer, request, appError.HTTPStatus, "error", errorPage{
		Status:  appError.HTTPStatus,
		Message: appError.Message,
	})
}

// render executes a named template into a buffer so that a template error
// can still produce a clean 500.
func (pages *Pages) render(writer http.ResponseWriter, request *http.Request, status int, name string, data any) {
	var buffer bytes.Buffer
	if err := pages.templates.ExecuteTemplate(&buffer, name, data); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "template_render_failed",
			slog.String("template", name),
			slog.Any("error", err),
		)
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	_, _ = buffer.WriteTo(writer)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
