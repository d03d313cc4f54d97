package appcore

import (
	"context"
	"errors"

	"situs/internal/situs"
	"situs/internal/store"
)

type SitusService interface {
	AllOGs(ctx context.Context) (store.OGResult, error)
	UpdateDatabase(ctx context.Context) error
	Dashboard(ctx context.Context, slug string) (situs.Summary, error)
	Tenants(ctx context.Context) ([]situs.Summary, error)
	Assets(ctx context.Context, slug string) ([]situs.Token, error)
	Certificates(ctx context.Context, slug string, owner string) ([]situs.Token, error)
	TokenMetadata(ctx context.Context, contract string, tokenID string) (situs.TokenMetadata, error)
}

type Context struct {
	service     SitusService
	updateToken string
}

type Option func(*Context)

// WithUpdateToken guards the database update route with a bearer token.
func WithUpdateToken(token string) Option {
	return func(c *Context) {
		c.updateToken = token
	}
}

func NewContext(service SitusService, opts ...Option) *Context {
	appCtx := &Context{service: service}
	for _, opt := range opts {
		opt(appCtx)
	}
	return appCtx
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func situsService(appCtx *Context) (SitusService, error) {
	if appCtx == nil || appCtx.service == nil {
		return nil, situs.ErrServiceUnavailable
	}
	return appCtx.service, nil
}
