package indexer

import (
	"net/http"
	"strings"
	"time"

	genqlientgraphql "github.com/Khan/genqlient/graphql"
	"go.uber.org/zap"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "situs-indexer-client"
)

type ClientOptions struct {
	Endpoint  string
	AuthToken string
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
	Transport http.RoundTripper
}

// NewClient builds a GraphQL client for the OG indexer. Every request carries
// the user agent and, when set, the bearer token, and is logged at debug level.
func NewClient(opts ClientOptions) genqlientgraphql.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &indexerTransport{
			base:      base,
			token:     strings.TrimSpace(opts.AuthToken),
			userAgent: userAgent,
			logger:    logger,
		},
	}

	return genqlientgraphql.NewClient(opts.Endpoint, client)
}

type indexerTransport struct {
	base      http.RoundTripper
	token     string
	userAgent string
	logger    *zap.Logger
}

func (t *indexerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	if t.token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.token)
	}

	started := time.Now()
	resp, err := t.base.RoundTrip(clone)
	fields := []zap.Field{
		zap.String("url", clone.URL.Redacted()),
		zap.Duration("duration", time.Since(started)),
	}
	if err != nil {
		t.logger.Debug("indexer request failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	t.logger.Debug("indexer request", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}
