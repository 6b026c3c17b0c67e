// Command importer creates hotels from a JSON array of creation requests,
// using the same validation and id assignment as POST /api/hotel.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"hotel_api/internal/adapters/observability"
	"hotel_api/internal/app"
	"hotel_api/internal/domain"
	"hotel_api/internal/shared"
	"hotel_api/internal/storage"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv)

	file := flag.String("file", cfg.ImportFile, "JSON array of hotels to create")
	flag.Parse()
	if *file == "" {
		log.Fatal().Msg("no input: set IMPORT_FILE or pass -file")
	}

	ctx := context.Background()
	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("read input failed")
	}
	var reqs []domain.CreateHotelRequest
	if err := json.Unmarshal(raw, &reqs); err != nil {
		log.Fatal().Err(err).Msg("decode input failed")
	}

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open store failed")
	}
	log.Info().Str("file", *file).Int("hotels", len(reqs)).Str("driver", cfg.StoreDriver).Msg("import starting")

	// sequential: every create is a full read-modify-write of the collection
	svc := app.NewHotelService(store, nil)
	var ok, failed int
	for i, req := range reqs {
		h, err := svc.CreateHotel(ctx, req)
		if err != nil {
			failed++
			log.Warn().Int("index", i).Str("title", req.Title).Err(err).Msg("import failed")
			continue
		}
		ok++
		log.Debug().Int64("hotel_id", h.HotelID).Str("slug", h.Slug).Msg("import ok")
	}

	if err := closeStore(); err != nil {
		log.Warn().Err(err).Msg("close store failed")
	}
	log.Info().Int("created", ok).Int("failed", failed).Msg("import completed")
	if failed > 0 {
		os.Exit(1)
	}
}
