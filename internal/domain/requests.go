package domain

import "encoding/json"

// CreateHotelRequest is the body of POST /api/hotel. Counts are pointers so
// that an explicit 0 is told apart from an absent field.
type CreateHotelRequest struct {
	Title         string    `json:"title" validate:"required"`
	Description   string    `json:"description" validate:"required"`
	Amenities     []string  `json:"amenities" validate:"required,min=1"`
	BathroomCount *int      `json:"bathroomCount" validate:"required,min=0"`
	BedroomCount  *int      `json:"bedroomCount" validate:"required,min=0"`
	GuestCount    *int      `json:"guestCount" validate:"required,min=0"`
	Host          *Host     `json:"host" validate:"required"`
	Location      *Location `json:"location" validate:"required"`
	Address       string    `json:"address" validate:"required"`
}

// HotelPatch is the raw body of PUT /api/hotel/{hotelId}. It stays keyed by
// field name until validation so unknown and absent keys can be reported.
type HotelPatch map[string]json.RawMessage

type CreateRoomRequest struct {
	RoomTitle    string `json:"roomTitle"`
	BedroomCount *int   `json:"bedroomCount"`
}

// UploadedFile is a file already written by the upload store.
type UploadedFile struct {
	Filename string
}
