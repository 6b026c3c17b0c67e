package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"hotel_api/internal/adapters/observability"
	"hotel_api/internal/domain"
)

const (
	driver         = "mysql"
	collectionName = "hotels"
)

// Repo stores the hotel collection as a single JSON document row. The
// upsert replaces the document in one statement, so readers never see a
// half-written collection.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// EnsureSchema creates the collections table when it does not exist yet.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createCollectionsSQL)
	return err
}

func (r *Repo) Load(ctx context.Context) (hotels []domain.Hotel, err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "load", err, time.Since(start)) }()

	var doc []byte
	err = r.db.QueryRowContext(ctx, loadCollectionSQL, collectionName).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.Hotel{}, nil
	}
	if err != nil {
		return nil, domain.ReadError(err)
	}
	if err := json.Unmarshal(doc, &hotels); err != nil {
		return nil, domain.ReadError(err)
	}
	if hotels == nil {
		hotels = []domain.Hotel{}
	}
	return hotels, nil
}

func (r *Repo) Save(ctx context.Context, hotels []domain.Hotel) (err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "save", err, time.Since(start)) }()

	if hotels == nil {
		hotels = []domain.Hotel{}
	}
	doc, err := json.Marshal(hotels)
	if err != nil {
		return domain.WriteError(err)
	}
	if _, err := r.db.ExecContext(ctx, saveCollectionSQL, collectionName, string(doc)); err != nil {
		return domain.WriteError(err)
	}
	return nil
}
