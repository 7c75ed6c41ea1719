package memory

import (
	"time"

	"hotel_catalog/internal/domain"
)

// dataset holds every table. Methods do not lock; Store and tx do.
type dataset struct {
	seq      map[string]int64
	hotels   []domain.Hotel
	rooms    []domain.RoomType
	users    []domain.User
	bookings []domain.Booking
	mods     []domain.BookingModification
	convs    []domain.Conversation
}

func newDataset() *dataset { return &dataset{seq: map[string]int64{}} }

// clone copies the table slices. Rows hold no shared mutable state: pointer
// fields are copied on the way in and on the way out.
func (d *dataset) clone() *dataset {
	c := &dataset{
		seq:      make(map[string]int64, len(d.seq)),
		hotels:   append([]domain.Hotel(nil), d.hotels...),
		rooms:    append([]domain.RoomType(nil), d.rooms...),
		users:    append([]domain.User(nil), d.users...),
		bookings: append([]domain.Booking(nil), d.bookings...),
		mods:     append([]domain.BookingModification(nil), d.mods...),
		convs:    append([]domain.Conversation(nil), d.convs...),
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	return c
}

func (d *dataset) next(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

func fk(table, constraint string) error {
	return &domain.ConstraintError{Kind: domain.ConstraintForeignKey, Table: table, Constraint: constraint}
}

func unique(table, constraint string) error {
	return &domain.ConstraintError{Kind: domain.ConstraintUnique, Table: table, Constraint: constraint}
}

// ---- catalog ----

func (d *dataset) listHotels(f domain.HotelFilter) []domain.Hotel {
	out := make([]domain.Hotel, 0, len(d.hotels))
	for _, h := range d.hotels {
		if f.Matches(h) {
			out = append(out, cloneHotel(h))
		}
	}
	return out
}

func (d *dataset) findHotelByName(name string) (domain.Hotel, error) {
	// rows are kept in id order, so the first match is the lowest id
	for _, h := range d.hotels {
		if domain.SameName(h.Name, name) {
			return cloneHotel(h), nil
		}
	}
	return domain.Hotel{}, domain.ErrNotFound
}

func (d *dataset) hotelByID(id int64) (domain.Hotel, bool) {
	for _, h := range d.hotels {
		if h.ID == id {
			return h, true
		}
	}
	return domain.Hotel{}, false
}

func (d *dataset) hotelDetails(id int64) (domain.HotelDetails, error) {
	h, ok := d.hotelByID(id)
	if !ok {
		return domain.HotelDetails{}, domain.ErrNotFound
	}
	out := domain.HotelDetails{Hotel: cloneHotel(h), RoomTypes: []domain.RoomType{}}
	for _, rt := range d.rooms {
		if rt.HotelID == id {
			out.RoomTypes = append(out.RoomTypes, rt)
		}
	}
	return out, nil
}

func (d *dataset) insertHotel(h *domain.Hotel, now time.Time) error {
	if err := h.Validate(); err != nil {
		return err
	}
	h.ID = d.next("hotels")
	h.CreatedAt = now
	d.hotels = append(d.hotels, cloneHotel(*h))
	return nil
}

func (d *dataset) insertRoomType(rt *domain.RoomType) error {
	if err := rt.Validate(); err != nil {
		return err
	}
	if _, ok := d.hotelByID(rt.HotelID); !ok {
		return fk("room_types", "fk_room_types_hotel")
	}
	rt.ID = d.next("room_types")
	d.rooms = append(d.rooms, *rt)
	return nil
}

// ---- reservations ----

func (d *dataset) userIndex(id int64) int {
	for i, u := range d.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (d *dataset) insertUser(u *domain.User, now time.Time) error {
	if err := u.Validate(); err != nil {
		return err
	}
	for _, o := range d.users {
		if o.ExternalID == u.ExternalID {
			return unique("users", "uq_users_external_id")
		}
	}
	u.ID = d.next("users")
	u.CreatedAt, u.LastActive = now, now
	d.users = append(d.users, cloneUser(*u))
	return nil
}

func (d *dataset) touchUser(id int64, now time.Time) error {
	i := d.userIndex(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	if now.After(d.users[i].LastActive) {
		d.users[i].LastActive = now
	}
	return nil
}

func (d *dataset) insertBooking(b *domain.Booking, now time.Time) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if d.userIndex(b.UserID) < 0 {
		return fk("bookings", "fk_bookings_user")
	}
	if _, ok := d.hotelByID(b.HotelID); !ok {
		return fk("bookings", "fk_bookings_hotel")
	}
	roomOK := false
	for _, rt := range d.rooms {
		if rt.ID == b.RoomTypeID && rt.HotelID == b.HotelID {
			roomOK = true
			break
		}
	}
	if !roomOK {
		return fk("bookings", "fk_bookings_room_type")
	}
	for _, o := range d.bookings {
		if o.Reference == b.Reference {
			return unique("bookings", "uq_bookings_reference")
		}
	}
	b.ID = d.next("bookings")
	b.CreatedAt, b.UpdatedAt = now, now
	d.bookings = append(d.bookings, *b)
	return nil
}

func (d *dataset) insertModification(m *domain.BookingModification, now time.Time) error {
	if err := m.Validate(); err != nil {
		return err
	}
	found := false
	for _, b := range d.bookings {
		if b.ID == m.BookingID {
			found = true
			break
		}
	}
	if !found {
		return fk("booking_modifications", "fk_booking_modifications_booking")
	}
	m.ID = d.next("booking_modifications")
	m.CreatedAt = now
	d.mods = append(d.mods, cloneModification(*m))
	return nil
}

func (d *dataset) insertConversation(c *domain.Conversation, now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if d.userIndex(c.UserID) < 0 {
		return fk("conversations", "fk_conversations_user")
	}
	c.ID = d.next("conversations")
	c.CreatedAt, c.UpdatedAt = now, now
	d.convs = append(d.convs, *c)
	return nil
}

func (d *dataset) updateConversation(c *domain.Conversation, now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for i := range d.convs {
		if d.convs[i].ID != c.ID {
			continue
		}
		d.convs[i].State = c.State
		d.convs[i].Context = c.Context
		if now.After(d.convs[i].UpdatedAt) {
			d.convs[i].UpdatedAt = now
		}
		*c = d.convs[i]
		return nil
	}
	return domain.ErrNotFound
}

func (d *dataset) userByExternalID(ext string) (domain.User, error) {
	for _, u := range d.users {
		if u.ExternalID == ext {
			return cloneUser(u), nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (d *dataset) bookingByReference(ref string) (domain.Booking, error) {
	for _, b := range d.bookings {
		if b.Reference == ref {
			return b, nil
		}
	}
	return domain.Booking{}, domain.ErrNotFound
}

func (d *dataset) modificationsOf(bookingID int64) []domain.BookingModification {
	out := []domain.BookingModification{}
	for _, m := range d.mods {
		if m.BookingID == bookingID {
			out = append(out, cloneModification(m))
		}
	}
	return out
}

func (d *dataset) conversation(id int64) (domain.Conversation, error) {
	for _, c := range d.convs {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Conversation{}, domain.ErrNotFound
}

// ---- copies ----

func cloneHotel(h domain.Hotel) domain.Hotel {
	if h.StarRating != nil {
		v := *h.StarRating
		h.StarRating = &v
	}
	return h
}

func cloneUser(u domain.User) domain.User {
	if u.Username != nil {
		v := *u.Username
		u.Username = &v
	}
	return u
}

func cloneModification(m domain.BookingModification) domain.BookingModification {
	m.OldCheckIn = cloneTime(m.OldCheckIn)
	m.OldCheckOut = cloneTime(m.OldCheckOut)
	m.NewCheckIn = cloneTime(m.NewCheckIn)
	m.NewCheckOut = cloneTime(m.NewCheckOut)
	return m
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
