package app

import (
	"encoding/json"
	"fmt"
	"io"

	"hotel_catalog/internal/domain"
)

// SeedHotel is one entry of the bootstrap document.
type SeedHotel struct {
	Name        string          `json:"name"`
	Location    string          `json:"location"`
	StarRating  *int            `json:"star_rating"`
	Description string          `json:"description"`
	Amenities   domain.Document `json:"amenities"`
	Policies    domain.Document `json:"policies"`
	RoomTypes   []SeedRoomType  `json:"room_types"`
}

type SeedRoomType struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	MaxOccupancy int             `json:"max_occupancy"`
	BasePrice    domain.Money    `json:"base_price"` // number literal, read exactly
	Features     domain.Document `json:"features"`
}

// ParseSeedDocument decodes a JSON array of hotels. Unknown fields are
// ignored; trailing data after the array is an error.
func ParseSeedDocument(r io.Reader) ([]SeedHotel, error) {
	dec := json.NewDecoder(r)
	var out []SeedHotel
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode seed document: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode seed document: trailing data after hotel list")
	}
	for i, h := range out {
		if h.Name == "" {
			return nil, fmt.Errorf("%w: seed hotel #%d has no name", domain.ErrValidation, i)
		}
		for j, rt := range h.RoomTypes {
			if rt.Name == "" {
				return nil, fmt.Errorf("%w: room type #%d of %q has no name", domain.ErrValidation, j, h.Name)
			}
		}
	}
	if out == nil {
		out = []SeedHotel{}
	}
	return out, nil
}
