// Package storage picks the HotelStore backend named in the config.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_api/internal/domain"
	"hotel_api/internal/shared"
	"hotel_api/internal/storage/jsonfile"
	mysqlrepo "hotel_api/internal/storage/mysql"
)

// Open returns the configured store and a function that releases it.
func Open(ctx context.Context, cfg shared.Config) (domain.HotelStore, func() error, error) {
	switch cfg.StoreDriver {
	case "jsonfile":
		log.Info().Str("path", cfg.DBPath).Msg("using JSON file store")
		return jsonfile.New(cfg.DBPath), func() error { return nil }, nil

	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("db.Ping: %w", err)
		}
		repo := mysqlrepo.New(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info().Msg("database connection ok")
		return repo, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
