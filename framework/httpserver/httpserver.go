package httpserver

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"situs/framework"
	"situs/framework/engine"
)

const defaultCacheControlPolicy = "public, max-age=3600, s-maxage=3600"
const defaultAPICachePolicy = "no-store"
const defaultHealthPath = "/healthz"
const defaultHealthBody = "ok"
const defaultStaticPrefix = "/static/"

type StaticMount struct {
	URLPrefix string
	Dir       string
	FS        fs.FS
}

type Mount struct {
	Pattern string
	Handler http.Handler
}

type CachePolicies struct {
	HTML   string
	API    string
	Static string
	Health string
	Error  string
}

func DefaultCachePolicies() CachePolicies {
	return CachePolicies{
		HTML:   defaultCacheControlPolicy,
		API:    defaultAPICachePolicy,
		Static: defaultCacheControlPolicy,
		Health: defaultCacheControlPolicy,
		Error:  defaultCacheControlPolicy,
	}
}

type Config[C interface{}] struct {
	AppContext C
	Handlers   []framework.RouteHandler[C]

	Static StaticMount
	Mounts []Mount

	CachePolicies CachePolicies

	IsNotFoundError func(err error) bool
	NotFoundPage    func(notFoundContext framework.NotFoundContext) templ.Component
	LogServerError  func(err error)

	HealthPath string
	HealthBody string
}

type server[C interface{}] struct {
	cachePolicies CachePolicies
	notFoundPage  func(notFoundContext framework.NotFoundContext) templ.Component
	logServerErr  func(err error)
	healthPath    string
	healthBody    string
	reserved      map[string]struct{}

	routeEngine *engine.Engine[C]
}

func New[C interface{}](cfg Config[C]) (http.Handler, error) {
	cachePolicies := withDefaultPolicies(cfg.CachePolicies)
	healthPath := normalizeHealthPath(cfg.HealthPath)
	healthBody := strings.TrimSpace(cfg.HealthBody)
	if healthBody == "" {
		healthBody = defaultHealthBody
	}

	srv := &server[C]{
		cachePolicies: cachePolicies,
		notFoundPage:  cfg.NotFoundPage,
		logServerErr:  cfg.LogServerError,
		healthPath:    healthPath,
		healthBody:    healthBody,
		reserved:      make(map[string]struct{}),
	}
	srv.reserve(healthPath)

	routeEngine, err := engine.New(engine.Config[C]{
		AppContext:             cfg.AppContext,
		Handlers:               cfg.Handlers,
		RenderPage:             srv.renderPage,
		WriteJSON:              srv.writeJSON,
		IsNotFoundError:        cfg.IsNotFoundError,
		HandleNotFound:         srv.handleNotFound,
		HandleMethodNotAllowed: srv.handleMethodNotAllowed,
		HandleServerError:      srv.handleServerError,
		ReportError:            srv.reportError,
	})
	if err != nil {
		return nil, fmt.Errorf("create route engine: %w", err)
	}
	srv.routeEngine = routeEngine

	mux := http.NewServeMux()
	if staticFS := staticFileSystem(cfg.Static); staticFS != nil {
		prefix := normalizeStaticPrefix(cfg.Static.URLPrefix)
		fileServer := http.FileServer(staticFS)
		mux.Handle(prefix, withCachePolicy(cachePolicies.Static, http.StripPrefix(prefix, fileServer)))
		srv.reserve(prefix)
	}
	for _, mount := range cfg.Mounts {
		if strings.TrimSpace(mount.Pattern) == "" || mount.Handler == nil {
			return nil, fmt.Errorf("invalid mount %q", mount.Pattern)
		}
		mux.Handle(mount.Pattern, mount.Handler)
		srv.reserve(mount.Pattern)
	}

	mux.HandleFunc("/", srv.handleRoute)
	return mux, nil
}

func staticFileSystem(mount StaticMount) http.FileSystem {
	if mount.FS != nil {
		return http.FS(mount.FS)
	}
	if strings.TrimSpace(mount.Dir) != "" {
		return http.Dir(mount.Dir)
	}
	return nil
}

func (s *server[C]) handleRoute(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == s.healthPath {
		s.handleHealth(w)
		return
	}

	// Paths below a reserved segment never reach the page routes.
	if _, reserved := s.reserved[firstSegment(r.URL.Path)]; !reserved && s.routeEngine.ServeRoute(w, r) {
		return
	}

	s.handleNotFound(w, r, framework.NotFoundContext{
		RequestPath: r.URL.Path,
		Source:      framework.NotFoundSourceUnmatchedRoute,
	})
}

func (s *server[C]) renderPage(r *http.Request, w http.ResponseWriter, component templ.Component) error {
	return s.renderPageWithStatus(r, w, component, 0, s.cachePolicies.HTML)
}

func (s *server[C]) renderPageWithStatus(
	r *http.Request,
	w http.ResponseWriter,
	component templ.Component,
	statusCode int,
	cachePolicy string,
) error {
	setCachePolicy(w, cachePolicy)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if statusCode > 0 {
		w.WriteHeader(statusCode)
	}
	return component.Render(r.Context(), w)
}

func (s *server[C]) writeJSON(
	r *http.Request,
	w http.ResponseWriter,
	statusCode int,
	payload interface{},
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		s.handleServerError(w, fmt.Errorf("encode json response: %w", err))
		return nil
	}

	setCachePolicy(w, s.cachePolicies.API)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if r != nil && r.Method == http.MethodHead {
		return nil
	}
	_, err = w.Write(body)
	return err
}

func (s *server[C]) handleNotFound(
	w http.ResponseWriter,
	r *http.Request,
	notFoundContext framework.NotFoundContext,
) {
	if s.notFoundPage == nil {
		setCachePolicy(w, s.cachePolicies.Error)
		http.NotFound(w, r)
		return
	}

	component := s.notFoundPage(notFoundContext)
	if component == nil {
		setCachePolicy(w, s.cachePolicies.Error)
		http.NotFound(w, r)
		return
	}
	if err := s.renderPageWithStatus(r, w, component, http.StatusNotFound, s.cachePolicies.Error); err != nil {
		s.handleServerError(w, fmt.Errorf("render not found page: %w", err))
	}
}

func (s *server[C]) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed []string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	if strings.HasPrefix(r.URL.Path, "/api/") {
		_ = s.writeJSON(r, w, http.StatusMethodNotAllowed, framework.ErrorBody{
			Error: http.StatusText(http.StatusMethodNotAllowed),
		})
		return
	}

	setCachePolicy(w, s.cachePolicies.Error)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

func (s *server[C]) handleServerError(w http.ResponseWriter, err error) {
	setCachePolicy(w, s.cachePolicies.Error)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	s.reportError(err)
}

func (s *server[C]) reportError(err error) {
	if s.logServerErr != nil {
		s.logServerErr(err)
		return
	}

	log.Printf("framework server error: %v", err)
}

func (s *server[C]) handleHealth(w http.ResponseWriter) {
	setCachePolicy(w, s.cachePolicies.Health)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.healthBody))
}

// reserve claims the first path segment of an infrastructure endpoint.
func (s *server[C]) reserve(pattern string) {
	if segment := firstSegment(pattern); segment != "" {
		s.reserved[segment] = struct{}{}
	}
}

func firstSegment(path string) string {
	segment, _, _ := strings.Cut(strings.TrimLeft(path, "/"), "/")
	return segment
}

func normalizeStaticPrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return defaultStaticPrefix
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

func normalizeHealthPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return defaultHealthPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func withDefaultPolicies(policies CachePolicies) CachePolicies {
	defaults := DefaultCachePolicies()
	if strings.TrimSpace(policies.HTML) == "" {
		policies.HTML = defaults.HTML
	}
	if strings.TrimSpace(policies.API) == "" {
		policies.API = defaults.API
	}
	if strings.TrimSpace(policies.Static) == "" {
		policies.Static = defaults.Static
	}
	if strings.TrimSpace(policies.Health) == "" {
		policies.Health = defaults.Health
	}
	if strings.TrimSpace(policies.Error) == "" {
		policies.Error = defaults.Error
	}
	return policies
}

func setCachePolicy(w http.ResponseWriter, policy string) {
	policy = strings.TrimSpace(policy)
	if policy == "" {
		return
	}
	w.Header().Set("Cache-Control", policy)
}

func withCachePolicy(policy string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCachePolicy(w, policy)
		next.ServeHTTP(w, r)
	})
}
