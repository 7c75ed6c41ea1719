package domain

import (
	"strings"
	"time"
)

type Hotel struct {
	ID          int64
	Name        string
	Location    string
	StarRating  *int // 1..5 by convention, not enforced
	Description string
	Amenities   Document
	Policies    Document
	CreatedAt   time.Time
}

type RoomType struct {
	ID           int64
	HotelID      int64
	Name         string
	Description  string
	MaxOccupancy int
	BasePrice    Money
	Features     Document
}

// HotelDetails is a hotel with its room types fetched in the same read.
type HotelDetails struct {
	Hotel
	RoomTypes []RoomType
}

// HotelFilter holds optional search conjuncts; a nil field is not applied.
type HotelFilter struct {
	Location  *string // case-insensitive substring of Hotel.Location
	MinRating *int    // StarRating >= MinRating; unrated hotels never match
}

func (f HotelFilter) IsEmpty() bool { return f.Location == nil && f.MinRating == nil }

// Matches is the reference semantics of a search; stores must agree with it.
func (f HotelFilter) Matches(h Hotel) bool {
	if f.Location != nil && !strings.Contains(strings.ToLower(h.Location), strings.ToLower(*f.Location)) {
		return false
	}
	if f.MinRating != nil && (h.StarRating == nil || *h.StarRating < *f.MinRating) {
		return false
	}
	return true
}

// SameName reports the case-insensitive, whole-string name match used by lookups.
func SameName(a, b string) bool { return strings.ToLower(a) == strings.ToLower(b) }

func NewHotel(name, location string, stars *int, description string, amenities, policies Document) (Hotel, error) {
	h := Hotel{
		Name:        strings.TrimSpace(name),
		Location:    strings.TrimSpace(location),
		StarRating:  copyInt(stars),
		Description: description,
		Amenities:   amenities,
		Policies:    policies,
	}
	return h, h.Validate()
}

func (h Hotel) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return invalid("hotel name is required")
	}
	if strings.TrimSpace(h.Location) == "" {
		return invalid("hotel location is required")
	}
	return nil
}

func NewRoomType(hotelID int64, name, description string, maxOccupancy int, basePrice Money, features Document) (RoomType, error) {
	rt := RoomType{
		HotelID:      hotelID,
		Name:         strings.TrimSpace(name),
		Description:  description,
		MaxOccupancy: maxOccupancy,
		BasePrice:    basePrice,
		Features:     features,
	}
	return rt, rt.Validate()
}

func (rt RoomType) Validate() error {
	if rt.HotelID <= 0 {
		return invalid("room type must reference a hotel")
	}
	if strings.TrimSpace(rt.Name) == "" {
		return invalid("room type name is required")
	}
	if rt.MaxOccupancy < 0 {
		return invalid("max occupancy must not be negative")
	}
	if rt.BasePrice.IsNegative() {
		return invalid("base price must not be negative")
	}
	return nil
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
