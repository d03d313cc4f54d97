package store

import "time"

type OGKind string

const (
	OGKindAsset       OGKind = "asset"
	OGKindCertificate OGKind = "certificate"
)

// OGRecord is one indexed token row in the ogs table.
type OGRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Situs     string `gorm:"index;not null"`
	Contract  string `gorm:"uniqueIndex:idx_ogs_contract_token;not null"`
	TokenID   string `gorm:"uniqueIndex:idx_ogs_contract_token;not null"`
	Owner     string `gorm:"index"`
	Name      string
	Kind      OGKind `gorm:"index;not null;default:asset"`
	Metadata  string `gorm:"type:text"`
	SyncID    string `gorm:"index"`
	UpdatedAt time.Time
}

func (OGRecord) TableName() string {
	return "ogs"
}

// SitusRecord is the per-tenant summary rebuilt on every sync.
type SitusRecord struct {
	Slug             string `gorm:"primaryKey"`
	AssetCount       int64
	CertificateCount int64
	UpdatedAt        time.Time
}

func (SitusRecord) TableName() string {
	return "situses"
}

// OGResult carries raw rows whose shape the web layer never inspects.
type OGResult struct {
	Rows []map[string]interface{}
}
