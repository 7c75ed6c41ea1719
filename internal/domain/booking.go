package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

var BookingStatuses = []BookingStatus{BookingConfirmed, BookingCancelled}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", invalid("unknown booking status %q", s)
	}
	return st, nil
}

func (s *BookingStatus) Scan(src any) error {
	v, err := scanEnum(src)
	if err != nil {
		return err
	}
	st, err := ParseBookingStatus(v)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

func (s BookingStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, invalid("unknown booking status %q", string(s))
	}
	return string(s), nil
}

type ModificationKind string

const (
	ModificationReschedule ModificationKind = "reschedule"
	ModificationCancel     ModificationKind = "cancel"
)

var ModificationKinds = []ModificationKind{ModificationReschedule, ModificationCancel}

func (k ModificationKind) Valid() bool {
	switch k {
	case ModificationReschedule, ModificationCancel:
		return true
	}
	return false
}

func ParseModificationKind(s string) (ModificationKind, error) {
	k := ModificationKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", invalid("unknown modification type %q", s)
	}
	return k, nil
}

func (k *ModificationKind) Scan(src any) error {
	v, err := scanEnum(src)
	if err != nil {
		return err
	}
	mk, err := ParseModificationKind(v)
	if err != nil {
		return err
	}
	*k = mk
	return nil
}

func (k ModificationKind) Value() (driver.Value, error) {
	if !k.Valid() {
		return nil, invalid("unknown modification type %q", string(k))
	}
	return string(k), nil
}

func scanEnum(src any) (string, error) {
	switch v := src.(type) {
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("cannot scan %T into an enumeration", src)
}

type Booking struct {
	ID         int64
	UserID     int64
	HotelID    int64
	RoomTypeID int64
	CheckIn    time.Time // date only, UTC
	CheckOut   time.Time // date only, UTC
	NumGuests  int
	TotalPrice Money
	Status     BookingStatus
	Reference  string // globally unique
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (b Booking) Nights() int { return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24) }

type BookingInput struct {
	UserID     int64
	HotelID    int64
	RoomTypeID int64
	CheckIn    time.Time
	CheckOut   time.Time
	NumGuests  int
	TotalPrice Money
	Status     BookingStatus // defaults to confirmed
	Reference  string        // generated when empty
}

func NewBooking(in BookingInput) (Booking, error) {
	b := Booking{
		UserID:     in.UserID,
		HotelID:    in.HotelID,
		RoomTypeID: in.RoomTypeID,
		CheckIn:    DateOf(in.CheckIn),
		CheckOut:   DateOf(in.CheckOut),
		NumGuests:  in.NumGuests,
		TotalPrice: in.TotalPrice,
		Status:     in.Status,
		Reference:  strings.TrimSpace(in.Reference),
	}
	if b.Status == "" {
		b.Status = BookingConfirmed
	}
	if b.Reference == "" {
		b.Reference = NewBookingReference()
	}
	return b, b.Validate()
}

func (b Booking) Validate() error {
	switch {
	case b.UserID <= 0:
		return invalid("booking must reference a user")
	case b.HotelID <= 0:
		return invalid("booking must reference a hotel")
	case b.RoomTypeID <= 0:
		return invalid("booking must reference a room type")
	case b.CheckIn.IsZero() || b.CheckOut.IsZero():
		return invalid("booking dates are required")
	case !DateOf(b.CheckOut).After(DateOf(b.CheckIn)):
		return invalid("check-out must be after check-in")
	case b.NumGuests < 1:
		return invalid("booking needs at least one guest")
	case b.TotalPrice.IsNegative():
		return invalid("total price must not be negative")
	case !b.Status.Valid():
		return invalid("unknown booking status %q", string(b.Status))
	case strings.TrimSpace(b.Reference) == "":
		return invalid("booking reference is required")
	}
	return nil
}

// NewBookingReference returns a short random reference like "BK-3F9A0C21D4E7".
func NewBookingReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(id[:12])
}

type BookingModification struct {
	ID          int64
	BookingID   int64
	Kind        ModificationKind
	OldCheckIn  *time.Time
	OldCheckOut *time.Time
	NewCheckIn  *time.Time // reschedule only
	NewCheckOut *time.Time // reschedule only
	FeeCharged  Money
	CreatedAt   time.Time
}

type ModificationInput struct {
	BookingID   int64
	Kind        ModificationKind
	OldCheckIn  *time.Time
	OldCheckOut *time.Time
	NewCheckIn  *time.Time
	NewCheckOut *time.Time
	FeeCharged  Money
}

func NewBookingModification(in ModificationInput) (BookingModification, error) {
	m := BookingModification{
		BookingID:   in.BookingID,
		Kind:        in.Kind,
		OldCheckIn:  datePtr(in.OldCheckIn),
		OldCheckOut: datePtr(in.OldCheckOut),
		NewCheckIn:  datePtr(in.NewCheckIn),
		NewCheckOut: datePtr(in.NewCheckOut),
		FeeCharged:  in.FeeCharged,
	}
	return m, m.Validate()
}

func (m BookingModification) Validate() error {
	if m.BookingID <= 0 {
		return invalid("modification must reference a booking")
	}
	if m.FeeCharged.IsNegative() {
		return invalid("fee must not be negative")
	}
	switch m.Kind {
	case ModificationReschedule:
		if m.NewCheckIn == nil || m.NewCheckOut == nil {
			return invalid("reschedule needs new check-in and check-out dates")
		}
		if !m.NewCheckOut.After(*m.NewCheckIn) {
			return invalid("new check-out must be after new check-in")
		}
	case ModificationCancel:
		if m.NewCheckIn != nil || m.NewCheckOut != nil {
			return invalid("cancel must not carry new dates")
		}
	default:
		return invalid("unknown modification type %q", string(m.Kind))
	}
	return nil
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}
