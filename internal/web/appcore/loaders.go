package appcore

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"situs/framework"
)

func LoadIndexPage(
	ctx context.Context,
	appCtx *Context,
	_ *http.Request,
	_ framework.EmptyParams,
) (IndexPageView, error) {
	service, err := situsService(appCtx)
	if err != nil {
		return IndexPageView{}, err
	}

	tenants, err := service.Tenants(ctx)
	if err != nil {
		return IndexPageView{}, fmt.Errorf("list situses: %w", err)
	}

	return IndexPageView{PageTitle: "Situses", Tenants: tenants}, nil
}

func LoadDashboardPage(
	ctx context.Context,
	appCtx *Context,
	_ *http.Request,
	params SitusParams,
) (DashboardPageView, error) {
	service, err := situsService(appCtx)
	if err != nil {
		return DashboardPageView{}, err
	}

	summary, err := service.Dashboard(ctx, params.Situs)
	if err != nil {
		return DashboardPageView{}, fmt.Errorf("load dashboard for %q: %w", params.Situs, err)
	}

	return DashboardPageView{
		PageTitle: DashboardHeading(params.Situs),
		Situs:     params.Situs,
		Summary:   summary,
	}, nil
}

func LoadAssetsPage(
	ctx context.Context,
	appCtx *Context,
	_ *http.Request,
	params SitusParams,
) (AssetsPageView, error) {
	service, err := situsService(appCtx)
	if err != nil {
		return AssetsPageView{}, err
	}

	assets, err := service.Assets(ctx, params.Situs)
	if err != nil {
		return AssetsPageView{}, fmt.Errorf("load assets for %q: %w", params.Situs, err)
	}

	return AssetsPageView{
		PageTitle: AssetsHeading(params.Situs),
		Situs:     params.Situs,
		Assets:    assets,
	}, nil
}

func LoadCertificatesPage(
	ctx context.Context,
	appCtx *Context,
	r *http.Request,
	params SitusParams,
) (CertificatesPageView, error) {
	service, err := situsService(appCtx)
	if err != nil {
		return CertificatesPageView{}, err
	}

	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	certificates, err := service.Certificates(ctx, params.Situs, owner)
	if err != nil {
		return CertificatesPageView{}, fmt.Errorf("load certificates for %q: %w", params.Situs, err)
	}

	return CertificatesPageView{
		PageTitle:    CertificatesHeading(params.Situs),
		Situs:        params.Situs,
		Owner:        owner,
		Certificates: certificates,
	}, nil
}

func LoadMetadataPage(
	ctx context.Context,
	appCtx *Context,
	_ *http.Request,
	params MetadataParams,
) (MetadataPageView, error) {
	service, err := situsService(appCtx)
	if err != nil {
		return MetadataPageView{}, err
	}

	metadata, err := service.TokenMetadata(ctx, params.Contract, params.TokenID)
	if err != nil {
		return MetadataPageView{}, fmt.Errorf("load metadata for %s/%s: %w", params.Contract, params.TokenID, err)
	}

	return MetadataPageView{
		PageTitle: "Metadata " + params.Contract + "/" + params.TokenID,
		Contract:  params.Contract,
		TokenID:   params.TokenID,
		Metadata:  metadata,
	}, nil
}
