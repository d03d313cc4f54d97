package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"situs/internal/store"
)

func newIndexerServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OperationName string                 `json:"operationName"`
			Variables     map[string]interface{} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		assert.Equal(t, "SitusOGs", req.OperationName)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"ogs":[
			{"id":"1","situs":"acme","contract":"0xA","tokenId":"1","owner":"alice","name":"Deed #1","kind":"asset","metadata":{"image":"ipfs://deed"}},
			{"id":"2","situs":"acme","contract":"0xC","tokenId":"7","owner":"alice","name":"Cert #7","kind":"certificate","metadata":null}
		]}}`))
	}))
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetArgs(args)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func openStore(t *testing.T, dsn string) *store.Store {
	t.Helper()

	db, err := store.Open(store.Options{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	s := store.New(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMigrateCreatesSchema(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "situs.db")

	out, err := runCommand(t, "migrate", "--database-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "database schema is up to date")

	result, err := openStore(t, dsn).AllOGs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
}

func TestUpdateDatabaseSyncsFromIndexer(t *testing.T) {
	indexerServer := newIndexerServer(t)
	defer indexerServer.Close()

	dsn := filepath.Join(t.TempDir(), "situs.db")
	out, err := runCommand(t,
		"update-database",
		"--database-dsn", dsn,
		"--indexer-endpoint", indexerServer.URL,
		"--log-format", "json",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "situs database updated")

	s := openStore(t, dsn)
	result, err := s.AllOGs(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)

	summary, err := s.SitusSummary(context.Background(), "acme")
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.AssetCount)
	assert.EqualValues(t, 1, summary.CertificateCount)
}

func TestUnknownDriverFails(t *testing.T) {
	_, err := runCommand(t, "migrate", "--database-driver", "oracle")
	assert.ErrorContains(t, err, "unsupported database driver")
}
