package store

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
)

// record : ligne de la table documents (un document JSON par chemin)
type record struct {
	Path       string `gorm:"primaryKey"`
	Collection string `gorm:"index"`
	CreatedAt  int64  `gorm:"index"`
	Data       []byte `gorm:"type:jsonb"`
}

func (record) TableName() string {
	return "documents"
}

// Postgres : document store sur Postgres (Supabase), une table JSONB unique
type Postgres struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

// ConnectPostgres ouvre la connexion Supabase et prépare le schéma
func ConnectPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errs.E(errs.StoreUnavailable, "store.ConnectPostgres", "connexion Supabase échouée", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, errs.E(errs.StoreUnavailable, "store.ConnectPostgres", "migration échouée", err)
	}
	return NewPostgres(db), nil
}

func (p *Postgres) Get(ctx context.Context, path string, out interface{}) error {
	var rec record
	err := p.db.WithContext(ctx).First(&rec, "path = ?", path).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.E(errs.NotFound, "store.Get", "document absent : "+path, nil)
	}
	if err != nil {
		return errs.E(errs.StoreUnavailable, "store.Get", "lecture Postgres échouée", err)
	}
	if err := json.Unmarshal(rec.Data, out); err != nil {
		return errs.E(errs.StoreUnavailable, "store.Get", "document illisible", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	query := p.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at DESC")
	if opts.Before > 0 {
		query = query.Where("created_at < ?", opts.Before)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var recs []record
	if err := query.Find(&recs).Error; err != nil {
		return nil, errs.E(errs.StoreUnavailable, "store.List", "lecture Postgres échouée", err)
	}
	return toDocuments(recs), nil
}

func (p *Postgres) Query(ctx context.Context, collection, field, value string) ([]Document, error) {
	var recs []record
	err := p.db.WithContext(ctx).
		Where("collection = ? AND data ->> ? = ?", collection, field, value).
		Find(&recs).Error
	if err != nil {
		return nil, errs.E(errs.StoreUnavailable, "store.Query", "lecture Postgres échouée", err)
	}
	return toDocuments(recs), nil
}

func (p *Postgres) Write(ctx context.Context, path string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errs.E(errs.StoreUnavailable, "store.Write", "document non sérialisable", err)
	}
	rec := record{
		Path:       path,
		Collection: collectionOf(path),
		CreatedAt:  createdAtOf(data),
		Data:       data,
	}
	err = p.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return errs.E(errs.StoreUnavailable, "store.Write", "écriture Postgres échouée", err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, path string) error {
	if err := p.db.WithContext(ctx).Delete(&record{}, "path = ?", path).Error; err != nil {
		return errs.E(errs.StoreUnavailable, "store.Delete", "suppression Postgres échouée", err)
	}
	return nil
}

func (p *Postgres) Count(ctx context.Context, collection string) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).
		Model(&record{}).
		Where("collection = ?", collection).
		Count(&n).Error
	if err != nil {
		return 0, errs.E(errs.StoreUnavailable, "store.Count", "lecture Postgres échouée", err)
	}
	return n, nil
}

func toDocuments(recs []record) []Document {
	docs := make([]Document, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, Document{Path: rec.Path, Data: json.RawMessage(rec.Data)})
	}
	return docs
}
