package domain

import (
	"strconv"
	"time"
)

// Hotel is one record of the persisted collection. Field names on the wire
// are the ones the JSON database file has always used.
type Hotel struct {
	ID            string    `json:"id"`
	HotelID       int64     `json:"hotelId"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Amenities     []string  `json:"amenities"`
	BathroomCount int       `json:"bathroomCount"`
	BedroomCount  int       `json:"bedroomCount"`
	GuestCount    int       `json:"guestCount"`
	Host          Host      `json:"host"`
	Location      Location  `json:"location"`
	Address       string    `json:"address"`
	Images        []string  `json:"images"`
	Rooms         []Room    `json:"rooms"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Host struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

type Location struct {
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

// Room is embedded in its parent hotel; it has no identity of its own
// beyond the (hotelSlug, roomSlug) pair.
type Room struct {
	HotelSlug    string     `json:"hotelSlug" validate:"required"`
	RoomSlug     string     `json:"roomSlug" validate:"required"`
	RoomTitle    string     `json:"roomTitle" validate:"required"`
	RoomImage    string     `json:"roomImage" validate:"required"`
	BedroomCount *int       `json:"bedroomCount" validate:"required"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// Lookup selects a hotel either by its numeric hotelId or by id/slug.
type Lookup struct {
	HotelID int64
	Ref     string
}

// ParseLookup turns a path parameter into a Lookup: positive integers
// address hotelId, anything else is matched against id and slug.
func ParseLookup(key string) Lookup {
	if n, err := strconv.ParseInt(key, 10, 64); err == nil && n > 0 {
		return Lookup{HotelID: n, Ref: key}
	}
	return Lookup{Ref: key}
}

func (l Lookup) String() string {
	if l.HotelID > 0 {
		return strconv.FormatInt(l.HotelID, 10)
	}
	return l.Ref
}

// Find returns the index of the first hotel matching l, or -1.
func (l Lookup) Find(hotels []Hotel) int {
	// hotelId wins over a slug that happens to look numeric
	if l.HotelID > 0 {
		for i := range hotels {
			if hotels[i].HotelID == l.HotelID {
				return i
			}
		}
	}
	for i := range hotels {
		if l.Ref != "" && (hotels[i].ID == l.Ref || hotels[i].Slug == l.Ref) {
			return i
		}
	}
	return -1
}
