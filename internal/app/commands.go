package app

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_api/internal/domain"
)

// HotelService applies every mutation as load-all, change one, save-all.
// Unless WithSerializedWrites is set, two concurrent mutations race and the
// later Save wins.
type HotelService struct {
	store    domain.HotelStore
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
	newID    func() string
	mu       *sync.Mutex
}

type Option func(*HotelService)

func WithClock(now func() time.Time) Option { return func(s *HotelService) { s.now = now } }

func WithIDGenerator(f func() string) Option { return func(s *HotelService) { s.newID = f } }

// WithCacheTTL sets how long entries written after a mutation live. A
// non-positive ttl makes mutations only delete affected keys.
func WithCacheTTL(ttl time.Duration) Option { return func(s *HotelService) { s.cacheTTL = ttl } }

// WithSerializedWrites holds one mutex across each read-modify-write.
func WithSerializedWrites() Option { return func(s *HotelService) { s.mu = &sync.Mutex{} } }

func NewHotelService(store domain.HotelStore, cache domain.Cache, opts ...Option) *HotelService {
	s := &HotelService{store: store, cache: cache, cacheTTL: 15 * time.Minute, now: time.Now, newID: uuid.NewString}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *HotelService) CreateHotel(ctx context.Context, req domain.CreateHotelRequest) (domain.Hotel, error) {
	defer s.lock()()

	hotels, err := s.store.Load(ctx)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("create hotel: %w", err)
	}
	if err := validateCreate(&req); err != nil {
		return domain.Hotel{}, err
	}

	now := s.now().UTC()
	h := domain.Hotel{
		ID:            s.newID(),
		HotelID:       NextHotelID(hotels),
		Slug:          Slugify(req.Title),
		Title:         req.Title,
		Description:   req.Description,
		Amenities:     req.Amenities,
		BathroomCount: *req.BathroomCount,
		BedroomCount:  *req.BedroomCount,
		GuestCount:    *req.GuestCount,
		Host:          *req.Host,
		Location:      *req.Location,
		Address:       req.Address,
		Images:        []string{},
		Rooms:         []domain.Room{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	hotels = append(hotels, h)
	if err := s.store.Save(ctx, hotels); err != nil {
		return domain.Hotel{}, fmt.Errorf("create hotel: %w", err)
	}
	// a lookup of this hotelId may have fallen back to a numeric slug before
	s.refreshCache(ctx, hotels, h)

	log.Info().Int64("hotel_id", h.HotelID).Str("slug", h.Slug).Msg("hotel created")
	return h, nil
}

// UpdateHotel replaces every updatable field of the hotel at key. The patch
// is validated before the collection is read.
func (s *HotelService) UpdateHotel(ctx context.Context, key domain.Lookup, patch domain.HotelPatch) (domain.Hotel, error) {
	u, err := parsePatch(patch)
	if err != nil {
		return domain.Hotel{}, err
	}

	defer s.lock()()

	hotels, err := s.store.Load(ctx)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("update hotel: %w", err)
	}
	i := key.Find(hotels)
	if i < 0 {
		return domain.Hotel{}, &domain.NotFoundError{Key: key.String()}
	}
	h := hotels[i]

	// images only ever come from uploads; an update may reorder or drop them
	var unknown []string
	for _, img := range u.Images {
		if !slices.Contains(h.Images, img) {
			unknown = append(unknown, img)
		}
	}
	if len(unknown) > 0 {
		return domain.Hotel{}, &domain.ValidationError{Message: "Invalid images", InvalidFields: unknown}
	}

	oldSlug := h.Slug
	if u.Title != "" {
		h.Slug = Slugify(u.Title)
	}
	h.Title = u.Title
	h.Description = u.Description
	h.Images = u.Images
	h.GuestCount = u.GuestCount
	h.BedroomCount = u.BedroomCount
	h.BathroomCount = u.BathroomCount
	h.Amenities = u.Amenities
	h.Host = u.Host
	h.Address = u.Address
	h.Location = u.Location
	h.Rooms = u.Rooms
	h.UpdatedAt = s.stamp(h.CreatedAt)

	hotels[i] = h
	if err := s.store.Save(ctx, hotels); err != nil {
		return domain.Hotel{}, fmt.Errorf("update hotel: %w", err)
	}
	s.refreshCache(ctx, hotels, h, oldSlug)

	log.Info().Int64("hotel_id", h.HotelID).Str("slug", h.Slug).Msg("hotel updated")
	return h, nil
}

// AppendImages adds one /uploads/<filename> URL per file, in order, and
// returns the new URLs.
func (s *HotelService) AppendImages(ctx context.Context, key domain.Lookup, files []domain.UploadedFile) ([]string, error) {
	if len(files) == 0 {
		return nil, &domain.ValidationError{Message: "No images uploaded"}
	}

	defer s.lock()()

	hotels, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("append images: %w", err)
	}
	i := key.Find(hotels)
	if i < 0 {
		return nil, &domain.NotFoundError{Key: key.String()}
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		urls = append(urls, "/uploads/"+f.Filename)
	}
	h := &hotels[i]
	h.Images = append(h.Images, urls...)
	h.UpdatedAt = s.stamp(h.CreatedAt)

	if err := s.store.Save(ctx, hotels); err != nil {
		return nil, fmt.Errorf("append images: %w", err)
	}
	s.refreshCache(ctx, hotels, *h)

	log.Info().Int64("hotel_id", h.HotelID).Int("count", len(urls)).Msg("images appended")
	return urls, nil
}

// CreateRoom appends a room to the hotel found by id or slug.
func (s *HotelService) CreateRoom(ctx context.Context, key domain.Lookup, req domain.CreateRoomRequest) (domain.Room, error) {
	if req.RoomTitle == "" {
		return domain.Room{}, &domain.ValidationError{Message: "Room title is required"}
	}

	defer s.lock()()

	hotels, err := s.store.Load(ctx)
	if err != nil {
		return domain.Room{}, fmt.Errorf("create room: %w", err)
	}
	i := key.Find(hotels)
	if i < 0 {
		return domain.Room{}, &domain.NotFoundError{Key: key.String()}
	}
	h := &hotels[i]

	now := s.stamp(h.CreatedAt)
	created, updated := now, now
	room := domain.Room{
		HotelSlug:    h.Slug,
		RoomSlug:     Slugify(req.RoomTitle),
		RoomTitle:    req.RoomTitle,
		RoomImage:    "",
		BedroomCount: req.BedroomCount,
		CreatedAt:    &created,
		UpdatedAt:    &updated,
	}
	h.Rooms = append(h.Rooms, room)
	h.UpdatedAt = now

	if err := s.store.Save(ctx, hotels); err != nil {
		return domain.Room{}, fmt.Errorf("create room: %w", err)
	}
	s.refreshCache(ctx, hotels, *h)

	log.Info().Int64("hotel_id", h.HotelID).Str("room_slug", room.RoomSlug).Msg("room created")
	return room, nil
}

// NextHotelID returns the smallest positive hotelId not used by hotels.
func NextHotelID(hotels []domain.Hotel) int64 {
	used := make(map[int64]struct{}, len(hotels))
	for _, h := range hotels {
		used[h.HotelID] = struct{}{}
	}
	next := int64(1)
	for {
		if _, ok := used[next]; !ok {
			return next
		}
		next++
	}
}

func (s *HotelService) lock() (unlock func()) {
	if s.mu == nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// stamp is the current time, never earlier than createdAt.
func (s *HotelService) stamp(createdAt time.Time) time.Time {
	now := s.now().UTC()
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}
