package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("not found")

const upsertBatchSize = 200

type Options struct {
	Driver string
	DSN    string
	Debug  bool
}

// Open connects to sqlite (glebarez, pure Go) or postgres.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "sqlite":
		dialector = sqlite.Open(opts.DSN)
	case "postgres", "postgresql":
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	logLevel := logger.Silent
	if opts.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Driver, err)
	}
	return db, nil
}

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&OGRecord{}); err != nil {
		return fmt.Errorf("auto-migrate ogs: %w", err)
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&SitusRecord{}); err != nil {
		return fmt.Errorf("auto-migrate situses: %w", err)
	}
	return nil
}

// AllOGs returns every ogs row as a column map, ordered by id.
func (s *Store) AllOGs(ctx context.Context) (OGResult, error) {
	rows := make([]map[string]interface{}, 0)
	if err := s.db.WithContext(ctx).Table(OGRecord{}.TableName()).Order("id").Find(&rows).Error; err != nil {
		return OGResult{}, fmt.Errorf("select ogs: %w", err)
	}
	return OGResult{Rows: rows}, nil
}

// SyncOGs replaces the ogs table contents with records and rebuilds the
// situs summaries, all in one transaction. Rows are matched on
// (contract, token_id); rows absent from records are deleted. When records
// repeat a token the last occurrence wins.
func (s *Store) SyncOGs(ctx context.Context, records []OGRecord) error {
	syncID := uuid.NewString()
	syncedAt := s.now().UTC()

	batch := make([]OGRecord, 0, len(records))
	positions := make(map[tokenKey]int, len(records))
	for _, record := range records {
		record.ID = 0
		record.SyncID = syncID
		record.UpdatedAt = syncedAt
		if record.Kind == "" {
			record.Kind = OGKindAsset
		}

		// Postgres rejects an upsert that touches the same row twice.
		key := tokenKey{contract: record.Contract, tokenID: record.TokenID}
		if idx, seen := positions[key]; seen {
			batch[idx] = record
			continue
		}
		positions[key] = len(batch)
		batch = append(batch, record)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(batch) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "contract"}, {Name: "token_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"situs", "owner", "name", "kind", "metadata", "sync_id", "updated_at",
				}),
			}).CreateInBatches(&batch, upsertBatchSize).Error
			if err != nil {
				return fmt.Errorf("upsert ogs: %w", err)
			}
		}

		if err := tx.Where("sync_id <> ?", syncID).Delete(&OGRecord{}).Error; err != nil {
			return fmt.Errorf("delete stale ogs: %w", err)
		}

		return rebuildSituses(tx, syncedAt)
	})
}

type tokenKey struct {
	contract string
	tokenID  string
}

type situsKindCount struct {
	Situs string
	Kind  OGKind
	Count int64
}

func rebuildSituses(tx *gorm.DB, syncedAt time.Time) error {
	var counts []situsKindCount
	err := tx.Model(&OGRecord{}).
		Select("situs, kind, count(*) as count").
		Group("situs, kind").
		Order("situs").
		Scan(&counts).Error
	if err != nil {
		return fmt.Errorf("count ogs per situs: %w", err)
	}

	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&SitusRecord{}).Error; err != nil {
		return fmt.Errorf("clear situses: %w", err)
	}

	summaries := make([]SitusRecord, 0, len(counts))
	index := make(map[string]int, len(counts))
	for _, count := range counts {
		idx, ok := index[count.Situs]
		if !ok {
			idx = len(summaries)
			index[count.Situs] = idx
			summaries = append(summaries, SitusRecord{Slug: count.Situs, UpdatedAt: syncedAt})
		}

		switch count.Kind {
		case OGKindCertificate:
			summaries[idx].CertificateCount += count.Count
		default:
			summaries[idx].AssetCount += count.Count
		}
	}
	if len(summaries) == 0 {
		return nil
	}

	if err := tx.Create(&summaries).Error; err != nil {
		return fmt.Errorf("insert situses: %w", err)
	}
	return nil
}

func (s *Store) SitusSummary(ctx context.Context, slug string) (SitusRecord, error) {
	var record SitusRecord
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SitusRecord{}, fmt.Errorf("situs %q: %w", slug, ErrNotFound)
		}
		return SitusRecord{}, fmt.Errorf("get situs %q: %w", slug, err)
	}
	return record, nil
}

func (s *Store) ListSituses(ctx context.Context) ([]SitusRecord, error) {
	records := make([]SitusRecord, 0)
	if err := s.db.WithContext(ctx).Order("slug").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list situses: %w", err)
	}
	return records, nil
}

type OGFilter struct {
	Situs string
	Kind  OGKind
	Owner string
}

func (s *Store) ListOGs(ctx context.Context, filter OGFilter) ([]OGRecord, error) {
	query := s.db.WithContext(ctx).Model(&OGRecord{}).Where("situs = ?", filter.Situs)
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Owner != "" {
		query = query.Where("owner = ?", filter.Owner)
	}

	records := make([]OGRecord, 0)
	if err := query.Order("contract").Order("token_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list ogs for situs %q: %w", filter.Situs, err)
	}
	return records, nil
}

func (s *Store) FindToken(ctx context.Context, contract string, tokenID string) (OGRecord, error) {
	var record OGRecord
	err := s.db.WithContext(ctx).
		Where("contract = ? AND token_id = ?", contract, tokenID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OGRecord{}, fmt.Errorf("token %s/%s: %w", contract, tokenID, ErrNotFound)
		}
		return OGRecord{}, fmt.Errorf("find token %s/%s: %w", contract, tokenID, err)
	}
	return record, nil
}
