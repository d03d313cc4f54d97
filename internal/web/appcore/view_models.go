package appcore

import (
	"net/url"
	"strings"

	"situs/internal/situs"
)

type SitusSection string

const (
	SitusSectionDashboard    SitusSection = "dashboard"
	SitusSectionAssets       SitusSection = "assets"
	SitusSectionCertificates SitusSection = "certificates"
)

type RootLayoutView interface {
	LayoutPageTitle() string
}

type SitusLayoutView interface {
	RootLayoutView
	LayoutSitus() string
	LayoutSection() SitusSection
}

type SitusParams struct {
	Situs string
}

type MetadataParams struct {
	Contract string
	TokenID  string
}

type IndexPageView struct {
	PageTitle string
	Tenants   []situs.Summary
}

type DashboardPageView struct {
	PageTitle string
	Situs     string
	Summary   situs.Summary
}

type AssetsPageView struct {
	PageTitle string
	Situs     string
	Assets    []situs.Token
}

type CertificatesPageView struct {
	PageTitle    string
	Situs        string
	Owner        string
	Certificates []situs.Token
}

type MetadataPageView struct {
	PageTitle string
	Contract  string
	TokenID   string
	Metadata  situs.TokenMetadata
}

type notFoundLayoutView struct{}

func NewNotFoundLayoutView() RootLayoutView {
	return notFoundLayoutView{}
}

func (notFoundLayoutView) LayoutPageTitle() string {
	return "404 Not Found"
}

func (v IndexPageView) LayoutPageTitle() string {
	return v.PageTitle
}

func (v DashboardPageView) LayoutPageTitle() string {
	return v.PageTitle
}

func (v DashboardPageView) LayoutSitus() string {
	return v.Situs
}

func (DashboardPageView) LayoutSection() SitusSection {
	return SitusSectionDashboard
}

func (v AssetsPageView) LayoutPageTitle() string {
	return v.PageTitle
}

func (v AssetsPageView) LayoutSitus() string {
	return v.Situs
}

func (AssetsPageView) LayoutSection() SitusSection {
	return SitusSectionAssets
}

func (v CertificatesPageView) LayoutPageTitle() string {
	return v.PageTitle
}

func (v CertificatesPageView) LayoutSitus() string {
	return v.Situs
}

func (CertificatesPageView) LayoutSection() SitusSection {
	return SitusSectionCertificates
}

func (v MetadataPageView) LayoutPageTitle() string {
	return v.PageTitle
}

func DashboardHeading(slug string) string {
	return slug + " dashboard"
}

func AssetsHeading(slug string) string {
	return slug + " assets"
}

func CertificatesHeading(slug string) string {
	return slug + " certificates"
}

func BuildSitusURL(slug string) string {
	return "/" + url.PathEscape(slug)
}

func BuildAssetsURL(slug string) string {
	return BuildSitusURL(slug) + "/assets"
}

func BuildCertificatesURL(slug string, owner string) string {
	base := BuildSitusURL(slug) + "/certificates/mine"
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return base
	}

	q := make(url.Values)
	q.Set("owner", owner)
	return base + "?" + q.Encode()
}

func BuildMetadataURL(contract string, tokenID string) string {
	return "/metadata/" + url.PathEscape(contract) + "/" + url.PathEscape(tokenID)
}
