package engine

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"situs/framework"
)

type Config[C interface{}] struct {
	AppContext C
	Handlers   []framework.RouteHandler[C]

	RenderPage func(r *http.Request, w http.ResponseWriter, component templ.Component) error
	WriteJSON  func(r *http.Request, w http.ResponseWriter, statusCode int, payload interface{}) error

	IsNotFoundError        func(err error) bool
	HandleNotFound         func(w http.ResponseWriter, r *http.Request, notFoundContext framework.NotFoundContext)
	HandleMethodNotAllowed func(w http.ResponseWriter, r *http.Request, allowed []string)
	HandleServerError      func(w http.ResponseWriter, err error)
	ReportError            func(err error)
}

type Engine[C interface{}] struct {
	appContext C
	handlers   []framework.RouteHandler[C]

	renderPage func(r *http.Request, w http.ResponseWriter, component templ.Component) error
	writeJSON  func(r *http.Request, w http.ResponseWriter, statusCode int, payload interface{}) error

	isNotFound       func(err error) bool
	notFound         func(w http.ResponseWriter, r *http.Request, notFoundContext framework.NotFoundContext)
	methodNotAllowed func(w http.ResponseWriter, r *http.Request, allowed []string)
	serverError      func(w http.ResponseWriter, err error)
	reportError      func(err error)
}

func New[C interface{}](cfg Config[C]) (*Engine[C], error) {
	if cfg.RenderPage == nil {
		return nil, errors.New("render page callback is required")
	}

	writeJSON := cfg.WriteJSON
	if writeJSON == nil {
		writeJSON = defaultWriteJSON
	}

	isNotFound := cfg.IsNotFoundError
	if isNotFound == nil {
		isNotFound = func(error) bool { return false }
	}

	notFound := cfg.HandleNotFound
	if notFound == nil {
		notFound = func(w http.ResponseWriter, r *http.Request, _ framework.NotFoundContext) {
			http.NotFound(w, r)
		}
	}

	methodNotAllowed := cfg.HandleMethodNotAllowed
	if methodNotAllowed == nil {
		methodNotAllowed = func(w http.ResponseWriter, _ *http.Request, allowed []string) {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		}
	}

	reportError := cfg.ReportError
	if reportError == nil {
		reportError = func(err error) {
			log.Printf("framework route error: %v", err)
		}
	}

	serverError := cfg.HandleServerError
	if serverError == nil {
		serverError = func(w http.ResponseWriter, err error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			reportError(err)
		}
	}

	return &Engine[C]{
		appContext:       cfg.AppContext,
		handlers:         cfg.Handlers,
		renderPage:       cfg.RenderPage,
		writeJSON:        writeJSON,
		isNotFound:       isNotFound,
		notFound:         notFound,
		methodNotAllowed: methodNotAllowed,
		serverError:      serverError,
		reportError:      reportError,
	}, nil
}

func (engine *Engine[C]) ServeRoute(w http.ResponseWriter, r *http.Request) bool {
	for _, handler := range engine.handlers {
		if handler.TryServe(engine, w, r) {
			return true
		}
	}

	return false
}

func (engine *Engine[C]) AppContext() C {
	return engine.appContext
}

func (engine *Engine[C]) RenderPage(
	r *http.Request,
	w http.ResponseWriter,
	component templ.Component,
) error {
	return engine.renderPage(r, w, component)
}

func (engine *Engine[C]) WriteJSON(
	r *http.Request,
	w http.ResponseWriter,
	statusCode int,
	payload interface{},
) error {
	return engine.writeJSON(r, w, statusCode, payload)
}

func (engine *Engine[C]) IsNotFound(err error) bool {
	return engine.isNotFound(err)
}

func (engine *Engine[C]) RespondNotFound(
	w http.ResponseWriter,
	r *http.Request,
	notFoundContext framework.NotFoundContext,
) {
	engine.notFound(w, r, notFoundContext)
}

func (engine *Engine[C]) RespondMethodNotAllowed(
	w http.ResponseWriter,
	r *http.Request,
	allowed []string,
) {
	engine.methodNotAllowed(w, r, allowed)
}

func (engine *Engine[C]) RespondServerError(w http.ResponseWriter, err error) {
	engine.serverError(w, err)
}

func (engine *Engine[C]) ReportError(err error) {
	engine.reportError(err)
}

func defaultWriteJSON(_ *http.Request, w http.ResponseWriter, statusCode int, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(payload)
}
