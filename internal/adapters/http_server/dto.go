package httpserver

import (
	"time"

	"hotel_catalog/internal/domain"
)

type hotelDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Location    string          `json:"location"`
	StarRating  *int            `json:"star_rating"`
	Description string          `json:"description,omitempty"`
	Amenities   domain.Document `json:"amenities"`
	Policies    domain.Document `json:"policies"`
	CreatedAt   time.Time       `json:"created_at"`
}

type roomTypeDTO struct {
	ID           int64           `json:"id"`
	HotelID      int64           `json:"hotel_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	MaxOccupancy int             `json:"max_occupancy"`
	BasePrice    domain.Money    `json:"base_price"`
	Features     domain.Document `json:"features"`
}

type hotelDetailsDTO struct {
	hotelDTO
	RoomTypes []roomTypeDTO `json:"room_types"`
}

type hotelList struct {
	Items []hotelDTO `json:"items"`
}

func toHotelDTO(h domain.Hotel) hotelDTO {
	return hotelDTO{
		ID:          h.ID,
		Name:        h.Name,
		Location:    h.Location,
		StarRating:  h.StarRating,
		Description: h.Description,
		Amenities:   h.Amenities,
		Policies:    h.Policies,
		CreatedAt:   h.CreatedAt.UTC(),
	}
}

func toHotelDTOs(hs []domain.Hotel) []hotelDTO {
	out := make([]hotelDTO, 0, len(hs))
	for _, h := range hs {
		out = append(out, toHotelDTO(h))
	}
	return out
}

func toDetailsDTO(hd domain.HotelDetails) hotelDetailsDTO {
	out := hotelDetailsDTO{hotelDTO: toHotelDTO(hd.Hotel), RoomTypes: make([]roomTypeDTO, 0, len(hd.RoomTypes))}
	for _, rt := range hd.RoomTypes {
		out.RoomTypes = append(out.RoomTypes, roomTypeDTO{
			ID:           rt.ID,
			HotelID:      rt.HotelID,
			Name:         rt.Name,
			Description:  rt.Description,
			MaxOccupancy: rt.MaxOccupancy,
			BasePrice:    rt.BasePrice,
			Features:     rt.Features,
		})
	}
	return out
}
