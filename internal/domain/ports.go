package domain

import (
	"context"
	"time"
)

// CatalogReader is the read side of the hotel catalog. Lookups that find
// nothing return ErrNotFound.
type CatalogReader interface {
	ListHotels(ctx context.Context) ([]Hotel, error)
	// FindHotelByName returns the lowest-id hotel whose name equals name
	// after case normalization.
	FindHotelByName(ctx context.Context, name string) (Hotel, error)
	SearchHotels(ctx context.Context, f HotelFilter) ([]Hotel, error)
	// GetHotelDetails loads the hotel and its room types in one query.
	GetHotelDetails(ctx context.Context, id int64) (HotelDetails, error)
}

// CatalogWriter is used by bootstrap. Inserts set the store-assigned ID.
type CatalogWriter interface {
	AnyHotel(ctx context.Context) (bool, error)
	InsertHotel(ctx context.Context, h *Hotel) error
	InsertRoomType(ctx context.Context, rt *RoomType) error
}

// ReservationWriter covers the user, booking and conversation tables.
// No workflow sits on top of it yet; it exists so their constraints hold.
type ReservationWriter interface {
	InsertUser(ctx context.Context, u *User) error
	TouchUser(ctx context.Context, id int64) error
	InsertBooking(ctx context.Context, b *Booking) error
	InsertBookingModification(ctx context.Context, m *BookingModification) error
	InsertConversation(ctx context.Context, c *Conversation) error
	UpdateConversation(ctx context.Context, c *Conversation) error
}

type ReservationReader interface {
	GetUserByExternalID(ctx context.Context, externalID string) (User, error)
	GetBookingByReference(ctx context.Context, ref string) (Booking, error)
	ListBookingModifications(ctx context.Context, bookingID int64) ([]BookingModification, error)
	GetConversation(ctx context.Context, id int64) (Conversation, error)
}

// CatalogSession is one store session. Close must be called on every path.
type CatalogSession interface {
	CatalogReader
	Close() error
}

type SessionOpener interface {
	OpenSession(ctx context.Context) (CatalogSession, error)
}

// SeedStore runs fn in one transaction; an error from fn rolls it back.
type SeedStore interface {
	WithinTx(ctx context.Context, fn func(tx CatalogWriter) error) error
}

// Locker hands out short-lived exclusive locks. TryLock returns ErrLocked
// when another owner holds key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, err error)
}
