package app

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"hotel_api/internal/domain"
)

// cacheEntry is what a lookup key resolves to. Missing marks a key that
// resolved to no hotel when a mutation last wrote it.
type cacheEntry struct {
	Hotel   *domain.Hotel `json:"hotel,omitempty"`
	Missing bool          `json:"missing,omitempty"`
}

func hotelCacheKey(key string) string { return "hotel:" + key }

func entryFor(hotels []domain.Hotel, key string) cacheEntry {
	i := domain.ParseLookup(key).Find(hotels)
	if i < 0 {
		return cacheEntry{Missing: true}
	}
	h := hotels[i]
	return cacheEntry{Hotel: &h}
}

// refreshCache overwrites every key whose answer a mutation of h can change
// with its answer in the saved collection. Reads only fill empty keys, so a
// read that loaded an older collection cannot replace these entries.
func (s *HotelService) refreshCache(ctx context.Context, hotels []domain.Hotel, h domain.Hotel, staleSlugs ...string) {
	if s.cache == nil {
		return
	}
	keys := append([]string{strconv.FormatInt(h.HotelID, 10), h.ID, h.Slug}, staleSlugs...)
	for _, k := range keys {
		if k == "" {
			continue
		}
		ck := hotelCacheKey(k)
		if s.cacheTTL > 0 {
			err := s.cache.Set(ctx, ck, entryFor(hotels, k), int(s.cacheTTL.Seconds()))
			if err == nil {
				continue
			}
			log.Warn().Err(err).Str("key", k).Msg("cache refresh failed")
		}
		if err := s.cache.Del(ctx, ck); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("cache invalidation failed")
		}
	}
}
