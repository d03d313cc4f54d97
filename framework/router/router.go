package router

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
)

var dynamicSegmentNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

type pathSegment struct {
	name    string
	isParam bool
}

type appRoute struct {
	id          string
	segments    []pathSegment
	staticCount int
	patternKey  string
}

type Match struct {
	ID     string
	Params map[string]string
}

func (m Match) Param(name string) (string, bool) {
	if m.Params == nil {
		return "", false
	}

	value, ok := m.Params[name]
	return value, ok
}

type AppRouter struct {
	routes []appRoute
}

// NewAppRouter compiles patterns like "/[situs]/assets". A static segment
// outranks a dynamic one at the first position where two routes differ.
func NewAppRouter(patterns ...string) (*AppRouter, error) {
	if len(patterns) == 0 {
		return nil, errors.New("no route patterns given")
	}

	routes := make([]appRoute, 0, len(patterns))
	seenPattern := make(map[string]string)

	for _, pattern := range patterns {
		route, err := parseAppRoute(pattern)
		if err != nil {
			return nil, err
		}

		if existing, ok := seenPattern[route.patternKey]; ok {
			if existing == route.id {
				return nil, fmt.Errorf("duplicate route pattern %q", route.id)
			}
			return nil, fmt.Errorf("route pattern conflict: %q and %q", existing, route.id)
		}
		seenPattern[route.patternKey] = route.id
		routes = append(routes, route)
	}

	sort.SliceStable(routes, func(i int, j int) bool {
		return routeLess(routes[i], routes[j])
	})

	return &AppRouter{routes: routes}, nil
}

func routeLess(left appRoute, right appRoute) bool {
	shared := min(len(left.segments), len(right.segments))
	for idx := 0; idx < shared; idx++ {
		l := left.segments[idx]
		r := right.segments[idx]
		if l.isParam != r.isParam {
			return !l.isParam
		}
	}

	if left.staticCount != right.staticCount {
		return left.staticCount > right.staticCount
	}
	if len(left.segments) != len(right.segments) {
		return len(left.segments) > len(right.segments)
	}
	return left.id < right.id
}

func parseAppRoute(pattern string) (appRoute, error) {
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return appRoute{}, errors.New("route pattern cannot be empty")
	}
	if !strings.HasPrefix(trimmed, "/") {
		return appRoute{}, fmt.Errorf("route pattern %q must start with /", pattern)
	}

	parts := []string{}
	if inner := strings.Trim(trimmed, "/"); inner != "" {
		parts = strings.Split(inner, "/")
	}

	segments := make([]pathSegment, 0, len(parts))
	patternParts := make([]string, 0, len(parts))
	staticCount := 0

	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return appRoute{}, fmt.Errorf("route pattern %q has empty path segment", pattern)
		}

		name, isParam, err := parseWildcardSegment(part)
		if err != nil {
			return appRoute{}, fmt.Errorf("route pattern %q: %w", pattern, err)
		}

		if isParam {
			segments = append(segments, pathSegment{name: name, isParam: true})
			patternParts = append(patternParts, ":")
			continue
		}

		segments = append(segments, pathSegment{name: part, isParam: false})
		patternParts = append(patternParts, part)
		staticCount++
	}

	return appRoute{
		id:          "/" + strings.Join(parts, "/"),
		segments:    segments,
		staticCount: staticCount,
		patternKey:  "/" + strings.Join(patternParts, "/"),
	}, nil
}

func parseWildcardSegment(segment string) (string, bool, error) {
	if strings.HasPrefix(segment, "[") || strings.HasSuffix(segment, "]") {
		if !strings.HasPrefix(segment, "[") || !strings.HasSuffix(segment, "]") {
			return "", false, fmt.Errorf("invalid wildcard segment %q", segment)
		}

		name := strings.TrimSpace(segment[1 : len(segment)-1])
		if !dynamicSegmentNamePattern.MatchString(name) {
			return "", false, fmt.Errorf("invalid wildcard name %q", name)
		}

		return name, true, nil
	}

	if strings.ContainsAny(segment, "[]") {
		return "", false, fmt.Errorf("invalid static segment %q", segment)
	}

	return "", false, nil
}

func (router *AppRouter) Match(requestPath string) (Match, bool) {
	requestSegments := splitPathSegments(requestPath)

	for _, route := range router.routes {
		if len(route.segments) != len(requestSegments) {
			continue
		}

		params := make(map[string]string, 2)
		matched := true

		for idx, segment := range route.segments {
			requestValue := requestSegments[idx]
			if segment.isParam {
				params[segment.name] = requestValue
				continue
			}
			if segment.name != requestValue {
				matched = false
				break
			}
		}

		if !matched {
			continue
		}

		if len(params) == 0 {
			return Match{ID: route.id}, true
		}
		return Match{ID: route.id, Params: params}, true
	}

	return Match{}, false
}

// MatchRoute reports whether requestPath resolves to exactly the route
// registered under pattern, so a more specific sibling keeps its paths.
func (router *AppRouter) MatchRoute(pattern string, requestPath string) (Match, bool) {
	match, ok := router.Match(requestPath)
	if !ok || match.ID != pattern {
		return Match{}, false
	}
	return match, true
}

func splitPathSegments(raw string) []string {
	cleaned := path.Clean("/" + strings.TrimSpace(raw))
	if cleaned == "/" {
		return []string{}
	}

	trimmed := strings.Trim(cleaned, "/")
	if trimmed == "" {
		return []string{}
	}

	return strings.Split(trimmed, "/")
}
