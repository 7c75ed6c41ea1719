// Package memory is an in-process store with the same constraint semantics
// as the MySQL schema: foreign keys and unique keys are checked on insert and
// transactions are all-or-nothing. It backs unit tests and STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"hotel_catalog/internal/domain"
)

var (
	_ domain.CatalogReader     = (*Store)(nil)
	_ domain.CatalogWriter     = (*Store)(nil)
	_ domain.ReservationWriter = (*Store)(nil)
	_ domain.ReservationReader = (*Store)(nil)
	_ domain.SeedStore         = (*Store)(nil)
	_ domain.SessionOpener     = (*Store)(nil)
	_ domain.CatalogSession    = (*Session)(nil)
)

type Store struct {
	mu  sync.RWMutex
	ds  *dataset
	now func() time.Time
}

func New() *Store { return &Store{ds: newDataset(), now: func() time.Time { return time.Now().UTC() }} }

// NewWithClock lets tests pin the timestamps the store assigns.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

type Stats struct {
	Hotels, RoomTypes, Users, Bookings, Modifications, Conversations int
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Hotels:        len(s.ds.hotels),
		RoomTypes:     len(s.ds.rooms),
		Users:         len(s.ds.users),
		Bookings:      len(s.ds.bookings),
		Modifications: len(s.ds.mods),
		Conversations: len(s.ds.convs),
	}
}

func (s *Store) read(ctx context.Context, fn func(d *dataset)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.ds)
	return nil
}

func (s *Store) write(ctx context.Context, fn func(d *dataset, now time.Time) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ds, s.now())
}

func (s *Store) ListHotels(ctx context.Context) (out []domain.Hotel, err error) {
	err = s.read(ctx, func(d *dataset) { out = d.listHotels(domain.HotelFilter{}) })
	return out, err
}

func (s *Store) FindHotelByName(ctx context.Context, name string) (h domain.Hotel, err error) {
	if rerr := s.read(ctx, func(d *dataset) { h, err = d.findHotelByName(name) }); rerr != nil {
		return domain.Hotel{}, rerr
	}
	return h, err
}

func (s *Store) SearchHotels(ctx context.Context, f domain.HotelFilter) (out []domain.Hotel, err error) {
	err = s.read(ctx, func(d *dataset) { out = d.listHotels(f) })
	return out, err
}

func (s *Store) GetHotelDetails(ctx context.Context, id int64) (hd domain.HotelDetails, err error) {
	if rerr := s.read(ctx, func(d *dataset) { hd, err = d.hotelDetails(id) }); rerr != nil {
		return domain.HotelDetails{}, rerr
	}
	return hd, err
}

func (s *Store) AnyHotel(ctx context.Context) (ok bool, err error) {
	err = s.read(ctx, func(d *dataset) { ok = len(d.hotels) > 0 })
	return ok, err
}

func (s *Store) InsertHotel(ctx context.Context, h *domain.Hotel) error {
	return s.write(ctx, func(d *dataset, now time.Time) error { return d.insertHotel(h, now) })
}

func (s *Store) InsertRoomType(ctx context.Context, rt *domain.RoomType) error {
	return s.write(ctx, func(d *dataset, _ time.Time) error { return d.insertRoomType(rt) })
}

func (s *Store) InsertUser(ctx context.Context, u *domain.User) error {
	return s.write(ctx, func(d *dataset, now time.Time) error { return d.insertUser(u, now) })
}

func (s *Store) TouchUser(ctx context.Context, id int64) error {
	return s.write(ctx, func(d *dataset, now time.Time) error { return d.touchUser(id, now) })
}

func (s *Store) InsertBooking(ctx context.Context, b *domain.Booking) error {
	return s.write(ctx, func(d *dataset, now time.Time) error { return d.insertBooking(b, now) })
}

func (s *Store) InsertBookingModification(ctx context.Context, m *domain.BookingModification) error {
	return s.write(ctx, func(d *dataset, now time.Time) error { return d.insertModification(m, now) })
}

func (s *Store) InsertConversation(ctx context.Context, c *domain.Conversation) error {
	return s.write(ctx, func(d *dataset, now time.Time) error { return d.insertConversation(c, now) })
}

func (s *Store) UpdateConversation(ctx context.Context, c *domain.Conversation) error {
	return s.write(ctx, func(d *dataset, now time.Time) error { return d.updateConversation(c, now) })
}

func (s *Store) GetUserByExternalID(ctx context.Context, ext string) (u domain.User, err error) {
	if rerr := s.read(ctx, func(d *dataset) { u, err = d.userByExternalID(ext) }); rerr != nil {
		return domain.User{}, rerr
	}
	return u, err
}

func (s *Store) GetBookingByReference(ctx context.Context, ref string) (b domain.Booking, err error) {
	if rerr := s.read(ctx, func(d *dataset) { b, err = d.bookingByReference(ref) }); rerr != nil {
		return domain.Booking{}, rerr
	}
	return b, err
}

func (s *Store) ListBookingModifications(ctx context.Context, bookingID int64) (out []domain.BookingModification, err error) {
	err = s.read(ctx, func(d *dataset) { out = d.modificationsOf(bookingID) })
	return out, err
}

func (s *Store) GetConversation(ctx context.Context, id int64) (c domain.Conversation, err error) {
	if rerr := s.read(ctx, func(d *dataset) { c, err = d.conversation(id) }); rerr != nil {
		return domain.Conversation{}, rerr
	}
	return c, err
}

// WithinTx runs fn against a private copy of the data and publishes it only
// when fn succeeds. The store is write-locked for the duration, so fn must
// use tx and never call back into the Store.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.CatalogWriter) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.ds.clone()
	if err := fn(&txn{ds: work, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.ds = work
	return nil
}

type txn struct {
	ds  *dataset
	now func() time.Time
}

func (t *txn) AnyHotel(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return len(t.ds.hotels) > 0, nil
}

func (t *txn) InsertHotel(ctx context.Context, h *domain.Hotel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.ds.insertHotel(h, t.now())
}

func (t *txn) InsertRoomType(ctx context.Context, rt *domain.RoomType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.ds.insertRoomType(rt)
}

// OpenSession hands out a catalog session over the shared data.
func (s *Store) OpenSession(ctx context.Context) (domain.CatalogSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Session{store: s}, nil
}

type Session struct {
	store  *Store
	closed atomic.Bool
}

func (s *Session) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *Session) live() error {
	if s.closed.Load() {
		return domain.ErrSessionClosed
	}
	return nil
}

func (s *Session) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	if err := s.live(); err != nil {
		return nil, err
	}
	return s.store.ListHotels(ctx)
}

func (s *Session) FindHotelByName(ctx context.Context, name string) (domain.Hotel, error) {
	if err := s.live(); err != nil {
		return domain.Hotel{}, err
	}
	return s.store.FindHotelByName(ctx, name)
}

func (s *Session) SearchHotels(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	if err := s.live(); err != nil {
		return nil, err
	}
	return s.store.SearchHotels(ctx, f)
}

func (s *Session) GetHotelDetails(ctx context.Context, id int64) (domain.HotelDetails, error) {
	if err := s.live(); err != nil {
		return domain.HotelDetails{}, err
	}
	return s.store.GetHotelDetails(ctx, id)
}
