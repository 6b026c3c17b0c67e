package app_test

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hotel_api/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	mu      sync.Mutex
	hotels  []domain.Hotel
	loadErr error
	saveErr error
	loads   int
	saves   int
}

func (f *fakeStore) Load(ctx context.Context) ([]domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return nil, domain.ReadError(f.loadErr)
	}
	return cloneHotels(f.hotels), nil
}

func (f *fakeStore) Save(ctx context.Context, hotels []domain.Hotel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return domain.WriteError(f.saveErr)
	}
	f.saves++
	f.hotels = cloneHotels(hotels)
	return nil
}

func (f *fakeStore) snapshot() []domain.Hotel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneHotels(f.hotels)
}

// cloneHotels copies the slices a mutation may append to, so the fake never
// shares backing arrays with the service.
func cloneHotels(in []domain.Hotel) []domain.Hotel {
	out := make([]domain.Hotel, len(in))
	for i, h := range in {
		h.Images = slices.Clone(h.Images)
		h.Rooms = slices.Clone(h.Rooms)
		h.Amenities = slices.Clone(h.Amenities)
		out[i] = h
	}
	return out
}

// fakeCache keeps JSON like the redis adapter, so entries decode into
// whatever type the reader asks for.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) SetNX(ctx context.Context, key string, v any, ttlSec int) (bool, error) {
	c.mu.Lock()
	_, exists := c.store[key]
	c.mu.Unlock()
	if exists {
		return false, nil
	}
	return true, c.Set(ctx, key, v, ttlSec)
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[key]
	return ok
}

// heldStore reads its snapshot and then, for the next held Load only, waits
// for release (or for the caller's ctx) before returning it.
type heldStore struct {
	*fakeStore
	hold    atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newHeldStore(st *fakeStore) *heldStore {
	h := &heldStore{fakeStore: st, entered: make(chan struct{}, 1), release: make(chan struct{})}
	h.hold.Store(true)
	return h
}

func (h *heldStore) Load(ctx context.Context) ([]domain.Hotel, error) {
	hotels, err := h.fakeStore.Load(ctx)
	if err != nil || !h.hold.CompareAndSwap(true, false) {
		return hotels, err
	}
	h.entered <- struct{}{}
	select {
	case <-h.release:
		return hotels, nil
	case <-ctx.Done():
		return nil, domain.ReadError(ctx.Err())
	}
}

func (h *heldStore) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-h.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("held Load was never reached")
	}
}

// ---- fixtures ----

func ptr[T any](v T) *T { return &v }

// stepClock advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(step)
		return t
	}
}

func validCreate(title string) domain.CreateHotelRequest {
	return domain.CreateHotelRequest{
		Title:         title,
		Description:   "A test hotel",
		Amenities:     []string{"WiFi", "Pool"},
		BathroomCount: ptr(2),
		BedroomCount:  ptr(3),
		GuestCount:    ptr(6),
		Host:          &domain.Host{Name: "Test Host", Email: "host@example.com", Phone: "+1 555 0100"},
		Location:      &domain.Location{Address: "Test Address", Latitude: ptr(41.02), Longitude: ptr(29.01)},
		Address:       "Test Address",
	}
}

func validPatch(images ...string) map[string]any {
	if images == nil {
		images = []string{}
	}
	return map[string]any{
		"title":         "Renamed Hotel",
		"description":   "Now with a view",
		"images":        images,
		"guestCount":    4,
		"bedroomCount":  2,
		"bathroomCount": 1,
		"amenities":     []string{"WiFi"},
		"host":          map[string]any{"name": "Ana", "email": "ana@example.com", "phone": "123"},
		"address":       "1 Harbour Road",
		"location":      map[string]any{"latitude": 41.5, "longitude": 29.5},
		"rooms": []any{
			map[string]any{"hotelSlug": "renamed-hotel", "roomSlug": "sea-view", "roomImage": "/uploads/r.jpg", "roomTitle": "Sea View", "bedroomCount": 1},
		},
	}
}

func patchFrom(t *testing.T, m map[string]any) domain.HotelPatch {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	var p domain.HotelPatch
	require.NoError(t, json.Unmarshal(b, &p))
	return p
}

func seeded(ids ...int64) *fakeStore {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st := &fakeStore{}
	for _, id := range ids {
		st.hotels = append(st.hotels, domain.Hotel{
			ID:        "uuid-" + strconv.FormatInt(id, 10),
			HotelID:   id,
			Slug:      "hotel-" + strconv.FormatInt(id, 10),
			Title:     "Hotel",
			Images:    []string{},
			Rooms:     []domain.Room{},
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	return st
}
