package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	genqlientgraphql "github.com/Khan/genqlient/graphql"
)

const situsOGsOperation = "SitusOGs"

const situsOGsQuery = `query SitusOGs($first: Int!, $skip: Int!) {
  ogs(first: $first, skip: $skip, orderBy: id) {
    id
    situs
    contract
    tokenId
    owner
    name
    kind
    metadata
  }
}`

const (
	defaultPageSize = 500
	maxPages        = 10000
)

var (
	ErrMissingClient = errors.New("indexer client is not configured")
	ErrPagingStalled = errors.New("indexer paging did not advance")
)

// JSONObject keeps the raw values of a GraphQL JSONObject scalar.
type JSONObject map[string]json.RawMessage

type OG struct {
	ID       string     `json:"id"`
	Situs    string     `json:"situs"`
	Contract string     `json:"contract"`
	TokenID  string     `json:"tokenId"`
	Owner    string     `json:"owner"`
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Metadata JSONObject `json:"metadata"`
}

// MetadataJSON renders the metadata object back to compact JSON, or "" when absent.
func (og OG) MetadataJSON() (string, error) {
	if len(og.Metadata) == 0 {
		return "", nil
	}
	encoded, err := json.Marshal(og.Metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata for %s/%s: %w", og.Contract, og.TokenID, err)
	}
	return string(encoded), nil
}

type situsOGsResponse struct {
	OGs []OG `json:"ogs"`
}

type Source struct {
	client   genqlientgraphql.Client
	pageSize int
}

func NewSource(client genqlientgraphql.Client, pageSize int) *Source {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return &Source{client: client, pageSize: pageSize}
}

// FetchOGs pages through the indexer until it returns a short page. A page
// that ends on the same id as the one before it means the indexer ignored
// skip, and the fetch fails rather than looping.
func (s *Source) FetchOGs(ctx context.Context) ([]OG, error) {
	if s == nil || s.client == nil {
		return nil, ErrMissingClient
	}

	all := make([]OG, 0, s.pageSize)
	lastID := ""
	for pageIdx := 0; pageIdx < maxPages; pageIdx++ {
		skip := pageIdx * s.pageSize
		page, err := s.fetchPage(ctx, skip)
		if err != nil {
			return nil, err
		}

		if len(page) > 0 {
			pageLastID := page[len(page)-1].ID
			if pageLastID != "" && pageLastID == lastID {
				return nil, fmt.Errorf("%w: skip %d repeated id %q", ErrPagingStalled, skip, pageLastID)
			}
			lastID = pageLastID
		}

		for _, og := range page {
			og.Situs = strings.TrimSpace(og.Situs)
			if og.Situs == "" || og.Contract == "" || og.TokenID == "" {
				continue
			}
			all = append(all, og)
		}

		if len(page) < s.pageSize {
			return all, nil
		}
	}

	return nil, fmt.Errorf("%w: more than %d pages", ErrPagingStalled, maxPages)
}

func (s *Source) fetchPage(ctx context.Context, skip int) ([]OG, error) {
	var data situsOGsResponse
	req := &genqlientgraphql.Request{
		OpName: situsOGsOperation,
		Query:  situsOGsQuery,
		Variables: map[string]interface{}{
			"first": s.pageSize,
			"skip":  skip,
		},
	}
	resp := &genqlientgraphql.Response{Data: &data}

	if err := s.client.MakeRequest(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("query %s (skip %d): %w", situsOGsOperation, skip, err)
	}
	return data.OGs, nil
}
