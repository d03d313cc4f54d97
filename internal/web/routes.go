package web

import (
	"fmt"

	"github.com/a-h/templ"

	"situs/framework"
	"situs/framework/router"
	"situs/internal/web/appcore"
	"situs/internal/web/components"
)

const (
	RouteIndex          = "/"
	RouteDashboard      = "/[situs]"
	RouteAssets         = "/[situs]/assets"
	RouteCertificates   = "/[situs]/certificates/mine"
	RouteMetadata       = "/metadata/[contract]/[tokenId]"
	RouteGetOGs         = "/api/getOGs"
	RouteUpdateDatabase = "/api/updateDatabase"
)

var routePatterns = []string{
	RouteIndex,
	RouteDashboard,
	RouteAssets,
	RouteCertificates,
	RouteMetadata,
	RouteGetOGs,
	RouteUpdateDatabase,
}

// Handlers builds the route table. Precedence between overlapping patterns is
// resolved by the router, so handler order does not matter.
func Handlers() ([]framework.RouteHandler[*appcore.Context], error) {
	appRouter, err := router.NewAppRouter(routePatterns...)
	if err != nil {
		return nil, fmt.Errorf("compile routes: %w", err)
	}

	return []framework.RouteHandler[*appcore.Context]{
		framework.APIRouteHandler[*appcore.Context, framework.EmptyParams]{
			API: framework.APIModule[*appcore.Context, framework.EmptyParams]{
				Pattern:     RouteGetOGs,
				ParseParams: emptyParams(appRouter, RouteGetOGs),
				Handle:      appcore.GetOGs,
			},
		},
		framework.APIRouteHandler[*appcore.Context, framework.EmptyParams]{
			API: framework.APIModule[*appcore.Context, framework.EmptyParams]{
				Pattern:     RouteUpdateDatabase,
				ParseParams: emptyParams(appRouter, RouteUpdateDatabase),
				Handle:      appcore.UpdateDatabase,
			},
		},
		framework.PageOnlyRouteHandler[*appcore.Context, framework.EmptyParams, appcore.IndexPageView]{
			Page: framework.PageModule[*appcore.Context, framework.EmptyParams, appcore.IndexPageView]{
				Pattern:     RouteIndex,
				ParseParams: emptyParams(appRouter, RouteIndex),
				Load:        appcore.LoadIndexPage,
				Render:      components.IndexPage,
				Layouts: []framework.LayoutRenderer[appcore.IndexPageView]{
					rootLayout[appcore.IndexPageView],
				},
			},
		},
		framework.PageOnlyRouteHandler[*appcore.Context, appcore.SitusParams, appcore.DashboardPageView]{
			Page: framework.PageModule[*appcore.Context, appcore.SitusParams, appcore.DashboardPageView]{
				Pattern:     RouteDashboard,
				ParseParams: situsParams(appRouter, RouteDashboard),
				Load:        appcore.LoadDashboardPage,
				Render:      components.DashboardPage,
				Layouts: []framework.LayoutRenderer[appcore.DashboardPageView]{
					rootLayout[appcore.DashboardPageView],
					situsLayout[appcore.DashboardPageView],
				},
			},
		},
		framework.PageOnlyRouteHandler[*appcore.Context, appcore.SitusParams, appcore.AssetsPageView]{
			Page: framework.PageModule[*appcore.Context, appcore.SitusParams, appcore.AssetsPageView]{
				Pattern:     RouteAssets,
				ParseParams: situsParams(appRouter, RouteAssets),
				Load:        appcore.LoadAssetsPage,
				Render:      components.AssetsPage,
				Layouts: []framework.LayoutRenderer[appcore.AssetsPageView]{
					rootLayout[appcore.AssetsPageView],
					situsLayout[appcore.AssetsPageView],
				},
			},
		},
		framework.PageOnlyRouteHandler[*appcore.Context, appcore.SitusParams, appcore.CertificatesPageView]{
			Page: framework.PageModule[*appcore.Context, appcore.SitusParams, appcore.CertificatesPageView]{
				Pattern:     RouteCertificates,
				ParseParams: situsParams(appRouter, RouteCertificates),
				Load:        appcore.LoadCertificatesPage,
				Render:      components.CertificatesPage,
				Layouts: []framework.LayoutRenderer[appcore.CertificatesPageView]{
					rootLayout[appcore.CertificatesPageView],
					situsLayout[appcore.CertificatesPageView],
				},
			},
		},
		framework.PageOnlyRouteHandler[*appcore.Context, appcore.MetadataParams, appcore.MetadataPageView]{
			Page: framework.PageModule[*appcore.Context, appcore.MetadataParams, appcore.MetadataPageView]{
				Pattern:     RouteMetadata,
				ParseParams: metadataParams(appRouter, RouteMetadata),
				Load:        appcore.LoadMetadataPage,
				Render:      components.MetadataPage,
				Layouts: []framework.LayoutRenderer[appcore.MetadataPageView]{
					rootLayout[appcore.MetadataPageView],
				},
			},
		},
	}, nil
}

func emptyParams(appRouter *router.AppRouter, pattern string) framework.ParamsParser[framework.EmptyParams] {
	return func(path string) (framework.EmptyParams, bool) {
		_, ok := appRouter.MatchRoute(pattern, path)
		return framework.EmptyParams{}, ok
	}
}

func situsParams(appRouter *router.AppRouter, pattern string) framework.ParamsParser[appcore.SitusParams] {
	return func(path string) (appcore.SitusParams, bool) {
		match, ok := appRouter.MatchRoute(pattern, path)
		if !ok {
			return appcore.SitusParams{}, false
		}
		slug, ok := match.Param("situs")
		return appcore.SitusParams{Situs: slug}, ok
	}
}

func metadataParams(appRouter *router.AppRouter, pattern string) framework.ParamsParser[appcore.MetadataParams] {
	return func(path string) (appcore.MetadataParams, bool) {
		match, ok := appRouter.MatchRoute(pattern, path)
		if !ok {
			return appcore.MetadataParams{}, false
		}
		contract, okContract := match.Param("contract")
		tokenID, okToken := match.Param("tokenId")
		if !okContract || !okToken {
			return appcore.MetadataParams{}, false
		}
		return appcore.MetadataParams{Contract: contract, TokenID: tokenID}, true
	}
}

func rootLayout[VM appcore.RootLayoutView](view VM, child templ.Component) templ.Component {
	return components.RootLayout(view, child)
}

func situsLayout[VM appcore.SitusLayoutView](view VM, child templ.Component) templ.Component {
	return components.SitusLayout(view, child)
}
