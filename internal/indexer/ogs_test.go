package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Khan/genqlient/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGraphQLClient struct {
	pages      [][]OG
	ignoreSkip bool
	err        error
	skips      []int
}

func (c *fakeGraphQLClient) MakeRequest(
	_ context.Context,
	req *graphql.Request,
	resp *graphql.Response,
) error {
	if c.err != nil {
		return c.err
	}
	if req.OpName != situsOGsOperation {
		return fmt.Errorf("unexpected operation %q", req.OpName)
	}

	vars, ok := req.Variables.(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected variables %T", req.Variables)
	}
	skip, _ := vars["skip"].(int)
	c.skips = append(c.skips, skip)

	page := len(c.skips) - 1
	if c.ignoreSkip {
		page = 0
	}
	var ogs []OG
	if page < len(c.pages) {
		ogs = c.pages[page]
	}

	payload, err := json.Marshal(map[string]interface{}{"ogs": ogs})
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, resp.Data)
}

func og(situs string, tokenID string) OG {
	return OG{Situs: situs, Contract: "0xA", TokenID: tokenID}
}

func TestFetchOGsPaginates(t *testing.T) {
	client := &fakeGraphQLClient{pages: [][]OG{
		{og("acme", "1"), og("acme", "2")},
		{og(" globex ", "3"), og("", "4")},
		{og("acme", "5")},
	}}

	ogs, err := NewSource(client, 2).FetchOGs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2, 4}, client.skips)
	require.Len(t, ogs, 4, "records without a situs are skipped")
	assert.Equal(t, "globex", ogs[2].Situs)
	assert.Equal(t, "5", ogs[3].TokenID)
}

func TestFetchOGsStopsWhenPagingStalls(t *testing.T) {
	client := &fakeGraphQLClient{
		ignoreSkip: true,
		pages: [][]OG{{
			{ID: "og-1", Situs: "acme", Contract: "0xA", TokenID: "1"},
			{ID: "og-2", Situs: "acme", Contract: "0xA", TokenID: "2"},
		}},
	}

	_, err := NewSource(client, 2).FetchOGs(context.Background())
	require.ErrorIs(t, err, ErrPagingStalled)
	assert.Equal(t, []int{0, 2}, client.skips)
}

func TestFetchOGsPropagatesErrors(t *testing.T) {
	errDown := errors.New("indexer down")
	_, err := NewSource(&fakeGraphQLClient{err: errDown}, 10).FetchOGs(context.Background())
	assert.ErrorIs(t, err, errDown)

	_, err = NewSource(nil, 10).FetchOGs(context.Background())
	assert.ErrorIs(t, err, ErrMissingClient)
}

func TestMetadataJSON(t *testing.T) {
	empty, err := OG{}.MetadataJSON()
	require.NoError(t, err)
	assert.Empty(t, empty)

	encoded, err := OG{Metadata: JSONObject{"name": json.RawMessage(`"Deed"`)}}.MetadataJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Deed"}`, encoded)
}
