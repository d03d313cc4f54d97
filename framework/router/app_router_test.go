package router

import "testing"

func TestAppRouterMatch(t *testing.T) {
	router, err := NewAppRouter(
		"/",
		"/[situs]",
		"/[situs]/assets",
		"/[situs]/certificates/mine",
		"/metadata/[contract]/[tokenId]",
		"/api/getOGs",
	)
	if err != nil {
		t.Fatalf("new app router: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		expectedID string
		params     map[string]string
	}{
		{name: "index", path: "/", expectedID: "/"},
		{
			name:       "dashboard",
			path:       "/acme",
			expectedID: "/[situs]",
			params:     map[string]string{"situs": "acme"},
		},
		{
			name:       "dashboard trailing slash",
			path:       "/acme/",
			expectedID: "/[situs]",
			params:     map[string]string{"situs": "acme"},
		},
		{
			name:       "assets",
			path:       "/acme/assets",
			expectedID: "/[situs]/assets",
			params:     map[string]string{"situs": "acme"},
		},
		{
			name:       "certificates",
			path:       "/acme/certificates/mine",
			expectedID: "/[situs]/certificates/mine",
			params:     map[string]string{"situs": "acme"},
		},
		{
			name:       "metadata",
			path:       "/metadata/0xAbC/42",
			expectedID: "/metadata/[contract]/[tokenId]",
			params:     map[string]string{"contract": "0xAbC", "tokenId": "42"},
		},
		{
			name:       "leading static segment wins",
			path:       "/metadata/certificates/mine",
			expectedID: "/metadata/[contract]/[tokenId]",
			params:     map[string]string{"contract": "certificates", "tokenId": "mine"},
		},
		{name: "api static route", path: "/api/getOGs", expectedID: "/api/getOGs"},
		{
			name:       "api prefix as situs",
			path:       "/api/assets",
			expectedID: "/[situs]/assets",
			params:     map[string]string{"situs": "api"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			match, ok := router.Match(tc.path)
			if !ok {
				t.Fatalf("expected a match for %q", tc.path)
			}
			if match.ID != tc.expectedID {
				t.Fatalf("expected route id %q, got %q", tc.expectedID, match.ID)
			}
			for key, expected := range tc.params {
				value, ok := match.Param(key)
				if !ok {
					t.Fatalf("expected param %q", key)
				}
				if value != expected {
					t.Fatalf("expected param %q=%q, got %q", key, expected, value)
				}
			}
		})
	}

	if _, ok := router.Match("/acme/assets/extra/segments"); ok {
		t.Fatal("did not expect a match for a deeper path")
	}
}

func TestAppRouterMatchRoute(t *testing.T) {
	router, err := NewAppRouter("/[situs]/[page]", "/[situs]/assets")
	if err != nil {
		t.Fatalf("new app router: %v", err)
	}

	if _, ok := router.MatchRoute("/[situs]/[page]", "/acme/assets"); ok {
		t.Fatal("expected the static sibling to own /acme/assets")
	}
	match, ok := router.MatchRoute("/[situs]/[page]", "/acme/settings")
	if !ok {
		t.Fatal("expected dynamic route to match /acme/settings")
	}
	if match.Params["page"] != "settings" {
		t.Fatalf("expected page param %q, got %q", "settings", match.Params["page"])
	}
}

func TestAppRouterConflict(t *testing.T) {
	_, err := NewAppRouter("/[situs]/assets", "/[tenant]/assets")
	if err == nil {
		t.Fatal("expected conflict error, got nil")
	}

	_, err = NewAppRouter("/[situs]", "/[situs]")
	if err == nil {
		t.Fatal("expected duplicate error, got nil")
	}
}

func TestAppRouterRejectsInvalidPatterns(t *testing.T) {
	for _, pattern := range []string{"", "assets", "/[1bad]", "/[open", "/a]b", "/a//b"} {
		if _, err := NewAppRouter(pattern); err == nil {
			t.Fatalf("expected error for pattern %q", pattern)
		}
	}
}
