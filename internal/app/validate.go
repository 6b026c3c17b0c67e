package app

import (
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"hotel_api/internal/domain"
)

// updateFields is both the allow-list and the required list of a hotel update.
var updateFields = []string{
	"title",
	"description",
	"images",
	"guestCount",
	"bedroomCount",
	"bathroomCount",
	"amenities",
	"host",
	"address",
	"location",
	"rooms",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names ("bathroomCount", "host.email") instead of Go names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return rest
}

func validateCreate(req *domain.CreateHotelRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var missing, invalid []string
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		// an empty amenities list counts as missing
		if fe.Tag() == "required" || (fe.Tag() == "min" && fe.Kind() == reflect.Slice) {
			missing = append(missing, field)
			continue
		}
		invalid = append(invalid, field)
	}
	if len(missing) > 0 {
		return &domain.ValidationError{Message: "Missing required fields", MissingFields: missing, InvalidFields: invalid}
	}
	return &domain.ValidationError{Message: "Invalid fields", InvalidFields: invalid}
}

// hotelUpdate is a fully validated replacement of every updatable field.
type hotelUpdate struct {
	Title         string
	Description   string
	Images        []string
	GuestCount    int
	BedroomCount  int
	BathroomCount int
	Amenities     []string
	Host          domain.Host
	Address       string
	Location      domain.Location
	Rooms         []domain.Room
}

// parsePatch checks, in order: unknown keys, absent keys, host, location,
// rooms and finally the scalar field types.
func parsePatch(p domain.HotelPatch) (hotelUpdate, error) {
	var unwanted []string
	for k := range p {
		if !slices.Contains(updateFields, k) {
			unwanted = append(unwanted, k)
		}
	}
	if len(unwanted) > 0 {
		sort.Strings(unwanted)
		return hotelUpdate{}, &domain.ValidationError{Message: "Unwanted data in request", InvalidFields: unwanted}
	}

	var missing []string
	for _, k := range updateFields {
		if _, ok := p[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return hotelUpdate{}, &domain.ValidationError{Message: "Missing required fields", MissingFields: missing}
	}

	var u hotelUpdate
	if json.Unmarshal(p["host"], &u.Host) != nil || validate.Struct(&u.Host) != nil {
		return hotelUpdate{}, &domain.ValidationError{Message: "Invalid host data"}
	}
	if json.Unmarshal(p["location"], &u.Location) != nil || validate.Struct(&u.Location) != nil {
		return hotelUpdate{}, &domain.ValidationError{Message: "Invalid location data"}
	}

	var rawRooms []json.RawMessage
	if err := json.Unmarshal(p["rooms"], &rawRooms); err != nil || len(rawRooms) == 0 {
		return hotelUpdate{}, &domain.ValidationError{Message: "Invalid rooms data"}
	}
	var badRooms []json.RawMessage
	for _, raw := range rawRooms {
		var r domain.Room
		if json.Unmarshal(raw, &r) != nil || validate.Struct(&r) != nil {
			badRooms = append(badRooms, raw)
			continue
		}
		u.Rooms = append(u.Rooms, r)
	}
	if len(badRooms) > 0 {
		return hotelUpdate{}, &domain.ValidationError{Message: "Invalid room data", InvalidRooms: badRooms}
	}

	var invalid []string
	decode := func(key string, dst any) {
		if err := json.Unmarshal(p[key], dst); err != nil {
			invalid = append(invalid, key)
		}
	}
	// null would decode silently into a nil slice
	decodeList := func(key string, dst *[]string, minLen int) {
		if err := json.Unmarshal(p[key], dst); err != nil || *dst == nil || len(*dst) < minLen {
			invalid = append(invalid, key)
		}
	}
	decode("title", &u.Title)
	decode("description", &u.Description)
	decodeList("images", &u.Images, 0)
	decode("guestCount", &u.GuestCount)
	decode("bedroomCount", &u.BedroomCount)
	decode("bathroomCount", &u.BathroomCount)
	decodeList("amenities", &u.Amenities, 1)
	decode("address", &u.Address)
	if len(invalid) > 0 {
		return hotelUpdate{}, &domain.ValidationError{Message: "Invalid fields", InvalidFields: invalid}
	}
	return u, nil
}
