package web

import (
	"situs/framework/httpserver"
)

const cacheControlPublicHour = "public, max-age=3600, s-maxage=3600"
const cacheControlTenantPage = "public, max-age=60, s-maxage=300"
const cacheControlNoStore = "no-store"

// Tenant pages are short-lived; errors and API responses are never cached.
func cachePolicies() httpserver.CachePolicies {
	return httpserver.CachePolicies{
		HTML:   cacheControlTenantPage,
		API:    cacheControlNoStore,
		Static: cacheControlPublicHour,
		Health: cacheControlNoStore,
		Error:  cacheControlNoStore,
	}
}
