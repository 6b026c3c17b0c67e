package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"hotel_api/internal/domain"
)

// sharedLoadTimeout bounds a collection read that no single caller owns.
const sharedLoadTimeout = 30 * time.Second

type QueryService struct {
	store    domain.HotelStore
	cache    domain.Cache
	cacheTTL time.Duration
	loads    singleflight.Group
}

// NewQueryService returns a reader over store. A nil cache disables caching.
func NewQueryService(s domain.HotelStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: s, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetHotel(ctx context.Context, key domain.Lookup) (domain.Hotel, error) {
	ck := hotelCacheKey(key.String())
	if s.cache != nil {
		var e cacheEntry
		if ok, _ := s.cache.Get(ctx, ck, &e); ok {
			switch {
			case e.Missing:
				return domain.Hotel{}, &domain.NotFoundError{Key: key.String()}
			case e.Hotel != nil:
				return *e.Hotel, nil
			}
		}
	}

	// concurrent misses for one key share a single full-collection read; it
	// runs detached so one caller going away does not fail the others
	ch := s.loads.DoChan(ck, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()

		hotels, err := s.store.Load(lctx)
		if err != nil {
			return nil, fmt.Errorf("get hotel: %w", err)
		}
		i := key.Find(hotels)
		if i < 0 {
			return nil, &domain.NotFoundError{Key: key.String()}
		}
		h := hotels[i]
		if s.cache != nil && s.cacheTTL > 0 {
			// a mutation may have written a newer answer since the load
			_, _ = s.cache.SetNX(lctx, ck, cacheEntry{Hotel: &h}, int(s.cacheTTL.Seconds()))
		}
		return h, nil
	})

	select {
	case <-ctx.Done():
		return domain.Hotel{}, fmt.Errorf("get hotel: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Hotel{}, res.Err
		}
		return res.Val.(domain.Hotel), nil
	}
}
