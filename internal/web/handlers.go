package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"situs/framework"
	"situs/framework/httpserver"
	"situs/internal/config"
	"situs/internal/markdown"
	"situs/internal/web/appcore"
	"situs/internal/web/components"
	"situs/internal/web/static"
)

// NewHandler wires the situs routes, chrome and static assets into one
// http.Handler. Extra mounts (metrics) are served ahead of the route engine.
func NewHandler(
	cfg config.Config,
	service appcore.SitusService,
	logger *zap.Logger,
	mounts ...httpserver.Mount,
) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	components.SetAnnouncement(cfg.Announcement, markdown.Options{RootURL: cfg.RootURL})
	components.SetHighlightTheme(markdown.Theme{Light: cfg.HighlightLightStyle, Dark: cfg.HighlightDarkStyle})

	handlers, err := Handlers()
	if err != nil {
		return nil, err
	}

	appCtx := appcore.NewContext(service, appcore.WithUpdateToken(cfg.UpdateToken))

	handler, err := httpserver.New(httpserver.Config[*appcore.Context]{
		AppContext:      appCtx,
		Handlers:        handlers,
		Static:          staticMount(cfg),
		Mounts:          mounts,
		CachePolicies:   cachePolicies(),
		IsNotFoundError: appcore.IsNotFoundError,
		NotFoundPage:    notFoundPage,
		LogServerError: func(err error) {
			logger.Error("situs server error", zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create situs handler: %w", err)
	}

	return handler, nil
}

func staticMount(cfg config.Config) httpserver.StaticMount {
	if dir := strings.TrimSpace(cfg.StaticDir); dir != "" {
		return httpserver.StaticMount{Dir: dir}
	}
	return httpserver.StaticMount{FS: static.FS}
}

func notFoundPage(notFoundContext framework.NotFoundContext) templ.Component {
	path := strings.TrimSpace(notFoundContext.RequestPath)
	if path == "" {
		path = "/"
	}

	return components.RootLayout(appcore.NewNotFoundLayoutView(), components.NotFound(path))
}
