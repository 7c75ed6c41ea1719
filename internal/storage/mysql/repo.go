package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hotel_catalog/internal/adapters/observability"
	"hotel_catalog/internal/domain"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ domain.CatalogReader     = (*Repo)(nil)
	_ domain.CatalogWriter     = (*Repo)(nil)
	_ domain.ReservationWriter = (*Repo)(nil)
	_ domain.ReservationReader = (*Repo)(nil)
)

// Repo runs every statement against one DBTX with a per-statement timeout.
type Repo struct {
	db      DBTX
	timeout time.Duration
}

func newRepo(db DBTX, timeout time.Duration) *Repo { return &Repo{db: db, timeout: timeout} }

func (r *Repo) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func observe(op string, start time.Time, err *error) {
	observability.ObserveQuery(op, *err, time.Since(start))
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullDate(p *time.Time) any {
	if p == nil {
		return nil
	}
	return domain.DateOf(*p)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// hotelRow holds the nullable columns of a hotel while it is scanned.
type hotelRow struct {
	h     domain.Hotel
	stars sql.NullInt64
	desc  sql.NullString
}

func (hr *hotelRow) dest() []any {
	return []any{&hr.h.ID, &hr.h.Name, &hr.h.Location, &hr.stars, &hr.desc, &hr.h.Amenities, &hr.h.Policies, &hr.h.CreatedAt}
}

func (hr *hotelRow) hotel() domain.Hotel {
	h := hr.h
	if hr.stars.Valid {
		s := int(hr.stars.Int64)
		h.StarRating = &s
	}
	h.Description = hr.desc.String
	return h
}

func (r *Repo) queryHotels(ctx context.Context, query string, args ...any) ([]domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("hotels", err)
	}
	defer rows.Close()

	out := []domain.Hotel{}
	for rows.Next() {
		var hr hotelRow
		if err := rows.Scan(hr.dest()...); err != nil {
			return nil, fmt.Errorf("scan hotel: %w", err)
		}
		out = append(out, hr.hotel())
	}
	if err := rows.Err(); err != nil {
		return nil, classify("hotels", err)
	}
	return out, nil
}

func (r *Repo) ListHotels(ctx context.Context) (_ []domain.Hotel, err error) {
	defer observe("list_hotels", time.Now(), &err)
	return r.queryHotels(ctx, listHotelsSQL)
}

func (r *Repo) SearchHotels(ctx context.Context, f domain.HotelFilter) (_ []domain.Hotel, err error) {
	defer observe("search_hotels", time.Now(), &err)
	query, args := buildSearchHotels(f)
	return r.queryHotels(ctx, query, args...)
}

func (r *Repo) FindHotelByName(ctx context.Context, name string) (_ domain.Hotel, err error) {
	defer observe("find_hotel_by_name", time.Now(), &err)
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var hr hotelRow
	if err := r.db.QueryRowContext(ctx, findHotelByNameSQL, name).Scan(hr.dest()...); err != nil {
		return domain.Hotel{}, classify("hotels", err)
	}
	return hr.hotel(), nil
}

func (r *Repo) GetHotelDetails(ctx context.Context, id int64) (_ domain.HotelDetails, err error) {
	defer observe("get_hotel_details", time.Now(), &err)
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, hotelDetailsSQL, id)
	if err != nil {
		return domain.HotelDetails{}, classify("hotels", err)
	}
	defer rows.Close()

	var (
		out   domain.HotelDetails
		found bool
	)
	for rows.Next() {
		var (
			hr     hotelRow
			rt     domain.RoomType
			rtID   sql.NullInt64
			rtName sql.NullString
			rtDesc sql.NullString
			rtOcc  sql.NullInt64
		)
		dest := append(hr.dest(), &rtID, &rtName, &rtDesc, &rtOcc, &rt.BasePrice, &rt.Features)
		if err := rows.Scan(dest...); err != nil {
			return domain.HotelDetails{}, fmt.Errorf("scan hotel details: %w", err)
		}
		if !found {
			out = domain.HotelDetails{Hotel: hr.hotel(), RoomTypes: []domain.RoomType{}}
			found = true
		}
		if !rtID.Valid {
			continue
		}
		rt.ID = rtID.Int64
		rt.HotelID = out.ID
		rt.Name = rtName.String
		rt.Description = rtDesc.String
		rt.MaxOccupancy = int(rtOcc.Int64)
		out.RoomTypes = append(out.RoomTypes, rt)
	}
	if err := rows.Err(); err != nil {
		return domain.HotelDetails{}, classify("hotels", err)
	}
	if !found {
		return domain.HotelDetails{}, domain.ErrNotFound
	}
	return out, nil
}

func (r *Repo) AnyHotel(ctx context.Context) (_ bool, err error) {
	defer observe("any_hotel", time.Now(), &err)
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var ok bool
	if err := r.db.QueryRowContext(ctx, anyHotelSQL).Scan(&ok); err != nil {
		return false, classify("hotels", err)
	}
	return ok, nil
}

func (r *Repo) insert(ctx context.Context, table, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s insert id: %w", table, err)
	}
	return id, nil
}

func (r *Repo) InsertHotel(ctx context.Context, h *domain.Hotel) (err error) {
	defer observe("insert_hotel", time.Now(), &err)
	if err := h.Validate(); err != nil {
		return err
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	id, err := r.insert(ctx, "hotels", insertHotelSQL,
		h.Name, h.Location, nullInt(h.StarRating), h.Description, h.Amenities, h.Policies)
	if err != nil {
		return err
	}
	var created time.Time
	if err := r.db.QueryRowContext(ctx, hotelCreatedAtSQL, id).Scan(&created); err != nil {
		return classify("hotels", err)
	}
	h.ID, h.CreatedAt = id, created
	return nil
}

func (r *Repo) InsertRoomType(ctx context.Context, rt *domain.RoomType) (err error) {
	defer observe("insert_room_type", time.Now(), &err)
	if err := rt.Validate(); err != nil {
		return err
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	id, err := r.insert(ctx, "room_types", insertRoomTypeSQL,
		rt.HotelID, rt.Name, rt.Description, rt.MaxOccupancy, rt.BasePrice, rt.Features)
	if err != nil {
		return err
	}
	rt.ID = id
	return nil
}

// ---- users ----

func scanUser(s rowScanner) (domain.User, error) {
	var (
		u    domain.User
		name sql.NullString
	)
	if err := s.Scan(&u.ID, &u.ExternalID, &name, &u.CreatedAt, &u.LastActive); err != nil {
		return domain.User{}, err
	}
	if name.Valid {
		n := name.String
		u.Username = &n
	}
	return u, nil
}

func (r *Repo) InsertUser(ctx context.Context, u *domain.User) (err error) {
	defer observe("insert_user", time.Now(), &err)
	if err := u.Validate(); err != nil {
		return err
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	id, err := r.insert(ctx, "users", insertUserSQL, u.ExternalID, nullStr(u.Username))
	if err != nil {
		return err
	}
	got, err := scanUser(r.db.QueryRowContext(ctx, getUserByIDSQL, id))
	if err != nil {
		return classify("users", err)
	}
	*u = got
	return nil
}

func (r *Repo) TouchUser(ctx context.Context, id int64) (err error) {
	defer observe("touch_user", time.Now(), &err)
	ctx, cancel := r.bound(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, touchUserSQL, id)
	if err != nil {
		return classify("users", err)
	}
	// rows affected counts matched rows: the DSN carries clientFoundRows
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) GetUserByExternalID(ctx context.Context, externalID string) (_ domain.User, err error) {
	defer observe("get_user", time.Now(), &err)
	ctx, cancel := r.bound(ctx)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByExternalIDSQL, externalID))
	if err != nil {
		return domain.User{}, classify("users", err)
	}
	return u, nil
}

// ---- bookings ----

func scanBooking(s rowScanner) (domain.Booking, error) {
	var b domain.Booking
	err := s.Scan(&b.ID, &b.UserID, &b.HotelID, &b.RoomTypeID, &b.CheckIn, &b.CheckOut,
		&b.NumGuests, &b.TotalPrice, &b.Status, &b.Reference, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *Repo) InsertBooking(ctx context.Context, b *domain.Booking) (err error) {
	defer observe("insert_booking", time.Now(), &err)
	if err := b.Validate(); err != nil {
		return err
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	id, err := r.insert(ctx, "bookings", insertBookingSQL,
		b.UserID, b.HotelID, b.RoomTypeID, domain.DateOf(b.CheckIn), domain.DateOf(b.CheckOut),
		b.NumGuests, b.TotalPrice, b.Status, b.Reference)
	if err != nil {
		return err
	}
	got, err := scanBooking(r.db.QueryRowContext(ctx, getBookingByIDSQL, id))
	if err != nil {
		return classify("bookings", err)
	}
	*b = got
	return nil
}

func (r *Repo) GetBookingByReference(ctx context.Context, ref string) (_ domain.Booking, err error) {
	defer observe("get_booking", time.Now(), &err)
	ctx, cancel := r.bound(ctx)
	defer cancel()

	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingByReferenceSQL, ref))
	if err != nil {
		return domain.Booking{}, classify("bookings", err)
	}
	return b, nil
}

func (r *Repo) InsertBookingModification(ctx context.Context, m *domain.BookingModification) (err error) {
	defer observe("insert_booking_modification", time.Now(), &err)
	if err := m.Validate(); err != nil {
		return err
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	id, err := r.insert(ctx, "booking_modifications", insertModificationSQL,
		m.BookingID, m.Kind, nullDate(m.OldCheckIn), nullDate(m.OldCheckOut),
		nullDate(m.NewCheckIn), nullDate(m.NewCheckOut), m.FeeCharged)
	if err != nil {
		return err
	}
	var created time.Time
	if err := r.db.QueryRowContext(ctx, modificationCreatedAtSQL, id).Scan(&created); err != nil {
		return classify("booking_modifications", err)
	}
	m.ID, m.CreatedAt = id, created
	return nil
}

func (r *Repo) ListBookingModifications(ctx context.Context, bookingID int64) (_ []domain.BookingModification, err error) {
	defer observe("list_booking_modifications", time.Now(), &err)
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, listModificationsSQL, bookingID)
	if err != nil {
		return nil, classify("booking_modifications", err)
	}
	defer rows.Close()

	out := []domain.BookingModification{}
	for rows.Next() {
		var m domain.BookingModification
		var oldIn, oldOut, nIn, nOut sql.NullTime
		if err := rows.Scan(&m.ID, &m.BookingID, &m.Kind, &oldIn, &oldOut, &nIn, &nOut, &m.FeeCharged, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking modification: %w", err)
		}
		m.OldCheckIn, m.OldCheckOut = timePtr(oldIn), timePtr(oldOut)
		m.NewCheckIn, m.NewCheckOut = timePtr(nIn), timePtr(nOut)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("booking_modifications", err)
	}
	return out, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// ---- conversations ----

func scanConversation(s rowScanner) (domain.Conversation, error) {
	var c domain.Conversation
	err := s.Scan(&c.ID, &c.UserID, &c.State, &c.Context, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repo) InsertConversation(ctx context.Context, c *domain.Conversation) (err error) {
	defer observe("insert_conversation", time.Now(), &err)
	if err := c.Validate(); err != nil {
		return err
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	id, err := r.insert(ctx, "conversations", insertConversationSQL, c.UserID, string(c.State), c.Context)
	if err != nil {
		return err
	}
	got, err := scanConversation(r.db.QueryRowContext(ctx, getConversationSQL, id))
	if err != nil {
		return classify("conversations", err)
	}
	*c = got
	return nil
}

func (r *Repo) UpdateConversation(ctx context.Context, c *domain.Conversation) (err error) {
	defer observe("update_conversation", time.Now(), &err)
	if err := c.Validate(); err != nil {
		return err
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, updateConversationSQL, string(c.State), c.Context, c.ID)
	if err != nil {
		return classify("conversations", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	got, err := scanConversation(r.db.QueryRowContext(ctx, getConversationSQL, c.ID))
	if err != nil {
		return classify("conversations", err)
	}
	*c = got
	return nil
}

func (r *Repo) GetConversation(ctx context.Context, id int64) (_ domain.Conversation, err error) {
	defer observe("get_conversation", time.Now(), &err)
	ctx, cancel := r.bound(ctx)
	defer cancel()

	c, err := scanConversation(r.db.QueryRowContext(ctx, getConversationSQL, id))
	if err != nil {
		return domain.Conversation{}, classify("conversations", err)
	}
	return c, nil
}
