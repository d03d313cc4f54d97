package indexer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestClientSendsHeadersAndLogsRequests(t *testing.T) {
	var gotAuth, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"ogs":[{"id":"og-1","situs":"acme","contract":"0xA","tokenId":"1"}]}}`))
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	client := NewClient(ClientOptions{
		Endpoint:  server.URL,
		AuthToken: "indexer-secret",
		UserAgent: "situs-test",
		Logger:    zap.New(core),
	})

	ogs, err := NewSource(client, 10).FetchOGs(context.Background())
	require.NoError(t, err)
	require.Len(t, ogs, 1)

	assert.Equal(t, "Bearer indexer-secret", gotAuth)
	assert.Equal(t, "situs-test", gotAgent)

	entries := logs.FilterMessage("indexer request").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])
}

func TestClientDefaults(t *testing.T) {
	var gotAuth, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"ogs":[]}}`))
	}))
	defer server.Close()

	_, err := NewSource(NewClient(ClientOptions{Endpoint: server.URL}), 10).FetchOGs(context.Background())
	require.NoError(t, err)

	assert.Empty(t, gotAuth)
	assert.Equal(t, defaultUserAgent, gotAgent)
}
