package situs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"situs/internal/indexer"
	"situs/internal/store"
)

var ErrServiceUnavailable = errors.New("situs service unavailable")

type OGSource interface {
	FetchOGs(ctx context.Context) ([]indexer.OG, error)
}

type Service struct {
	store  *store.Store
	source OGSource
	logger *zap.Logger
}

func NewService(s *store.Store, source OGSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, source: source, logger: logger}
}

type Summary struct {
	Situs            string
	Known            bool
	AssetCount       int64
	CertificateCount int64
}

type Token struct {
	Contract string
	TokenID  string
	Owner    string
	Name     string
	Kind     store.OGKind
}

type TokenMetadata struct {
	Contract string
	TokenID  string
	Found    bool
	Situs    string
	Name     string
	Owner    string
	Document string
}

func (s *Service) ready() error {
	if s == nil || s.store == nil {
		return ErrServiceUnavailable
	}
	return nil
}

// AllOGs is the read side of the API: every row, shape untouched.
func (s *Service) AllOGs(ctx context.Context) (store.OGResult, error) {
	if err := s.ready(); err != nil {
		return store.OGResult{}, err
	}
	return s.store.AllOGs(ctx)
}

// UpdateDatabase pulls the full OG set from the indexer and syncs it.
func (s *Service) UpdateDatabase(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if s.source == nil {
		return fmt.Errorf("update database: %w", indexer.ErrMissingClient)
	}

	ogs, err := s.source.FetchOGs(ctx)
	if err != nil {
		return fmt.Errorf("fetch ogs from indexer: %w", err)
	}

	records := make([]store.OGRecord, 0, len(ogs))
	for _, og := range ogs {
		metadata, err := og.MetadataJSON()
		if err != nil {
			return err
		}
		records = append(records, store.OGRecord{
			Situs:    og.Situs,
			Contract: og.Contract,
			TokenID:  og.TokenID,
			Owner:    og.Owner,
			Name:     og.Name,
			Kind:     kindOf(og.Kind),
			Metadata: metadata,
		})
	}

	if err := s.store.SyncOGs(ctx, records); err != nil {
		return fmt.Errorf("sync ogs: %w", err)
	}

	s.logger.Info("situs database updated", zap.Int("ogs", len(records)))
	return nil
}

func kindOf(raw string) store.OGKind {
	if strings.EqualFold(strings.TrimSpace(raw), string(store.OGKindCertificate)) {
		return store.OGKindCertificate
	}
	return store.OGKindAsset
}

// Dashboard never fails for an unknown situs; it reports zero counts instead.
func (s *Service) Dashboard(ctx context.Context, situs string) (Summary, error) {
	if err := s.ready(); err != nil {
		return Summary{}, err
	}

	record, err := s.store.SitusSummary(ctx, situs)
	if errors.Is(err, store.ErrNotFound) {
		return Summary{Situs: situs}, nil
	}
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Situs:            situs,
		Known:            true,
		AssetCount:       record.AssetCount,
		CertificateCount: record.CertificateCount,
	}, nil
}

func (s *Service) Tenants(ctx context.Context) ([]Summary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	records, err := s.store.ListSituses(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(records))
	for _, record := range records {
		out = append(out, Summary{
			Situs:            record.Slug,
			Known:            true,
			AssetCount:       record.AssetCount,
			CertificateCount: record.CertificateCount,
		})
	}
	return out, nil
}

func (s *Service) Assets(ctx context.Context, situs string) ([]Token, error) {
	return s.tokens(ctx, store.OGFilter{Situs: situs, Kind: store.OGKindAsset})
}

// Certificates lists the certificates held by owner. An empty owner yields
// no certificates rather than every certificate of the situs.
func (s *Service) Certificates(ctx context.Context, situs string, owner string) ([]Token, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return []Token{}, nil
	}
	return s.tokens(ctx, store.OGFilter{Situs: situs, Kind: store.OGKindCertificate, Owner: owner})
}

func (s *Service) tokens(ctx context.Context, filter store.OGFilter) ([]Token, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	records, err := s.store.ListOGs(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]Token, 0, len(records))
	for _, record := range records {
		out = append(out, Token{
			Contract: record.Contract,
			TokenID:  record.TokenID,
			Owner:    record.Owner,
			Name:     record.Name,
			Kind:     record.Kind,
		})
	}
	return out, nil
}

// TokenMetadata looks up indexed metadata. A missing token is reported with
// Found=false, not as an error.
func (s *Service) TokenMetadata(ctx context.Context, contract string, tokenID string) (TokenMetadata, error) {
	view := TokenMetadata{Contract: contract, TokenID: tokenID}
	if err := s.ready(); err != nil {
		return view, err
	}

	record, err := s.store.FindToken(ctx, contract, tokenID)
	if errors.Is(err, store.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return view, err
	}

	view.Found = true
	view.Situs = record.Situs
	view.Name = record.Name
	view.Owner = record.Owner
	view.Document = record.Metadata
	return view, nil
}
