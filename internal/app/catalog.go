package app

import (
	"context"
	"errors"
	"fmt"

	"hotel_catalog/internal/domain"
)

// CatalogService answers hotel catalog queries against one store session.
// It does not cache or retry; the caller owns the session lifetime.
type CatalogService struct {
	reader domain.CatalogReader
}

func NewCatalogService(r domain.CatalogReader) *CatalogService {
	return &CatalogService{reader: r}
}

// ListAllHotels returns every hotel ordered by id. An empty catalog yields an
// empty, non-nil slice.
func (s *CatalogService) ListAllHotels(ctx context.Context) ([]domain.Hotel, error) {
	hs, err := s.reader.ListHotels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	if hs == nil {
		hs = []domain.Hotel{}
	}
	return hs, nil
}

// FindHotelByName returns nil, nil when no hotel has that name.
func (s *CatalogService) FindHotelByName(ctx context.Context, name string) (*domain.Hotel, error) {
	h, err := s.reader.FindHotelByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find hotel %q: %w", name, err)
	}
	return &h, nil
}

// SearchHotels applies the supplied conjuncts of f. With no conjuncts it is
// the same as ListAllHotels.
func (s *CatalogService) SearchHotels(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	if f.IsEmpty() {
		return s.ListAllHotels(ctx)
	}
	hs, err := s.reader.SearchHotels(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search hotels: %w", err)
	}
	if hs == nil {
		hs = []domain.Hotel{}
	}
	return hs, nil
}

// GetHotelDetails returns nil, nil when the hotel does not exist.
func (s *CatalogService) GetHotelDetails(ctx context.Context, id int64) (*domain.HotelDetails, error) {
	hd, err := s.reader.GetHotelDetails(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hotel details %d: %w", id, err)
	}
	if hd.RoomTypes == nil {
		hd.RoomTypes = []domain.RoomType{}
	}
	return &hd, nil
}
