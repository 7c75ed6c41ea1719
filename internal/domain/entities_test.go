package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_catalog/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewHotel_RequiresNameAndLocation(t *testing.T) {
	h, err := domain.NewHotel("  Grand Plaza Hotel ", "Downtown, Metropolis", ptr(5), "", domain.Null(), domain.Null())
	require.NoError(t, err)
	assert.Equal(t, "Grand Plaza Hotel", h.Name)

	_, err = domain.NewHotel(" ", "Metropolis", nil, "", domain.Null(), domain.Null())
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = domain.NewHotel("Inn", "", nil, "", domain.Null(), domain.Null())
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestNewHotel_CopiesRating(t *testing.T) {
	stars := 4
	h, err := domain.NewHotel("Inn", "Town", &stars, "", domain.Null(), domain.Null())
	require.NoError(t, err)
	stars = 1
	assert.Equal(t, 4, *h.StarRating)
}

func TestNewRoomType(t *testing.T) {
	_, err := domain.NewRoomType(1, "Deluxe Room", "", 2, domain.MustParseMoney("250.00"), domain.Null())
	require.NoError(t, err)

	_, err = domain.NewRoomType(0, "Deluxe Room", "", 2, domain.Money{}, domain.Null())
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = domain.NewRoomType(1, "", "", 2, domain.Money{}, domain.Null())
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = domain.NewRoomType(1, "Suite", "", 2, domain.MoneyFromCents(-1), domain.Null())
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestHotelFilter_Matches(t *testing.T) {
	plaza := domain.Hotel{Name: "Grand Plaza Hotel", Location: "Downtown, Metropolis", StarRating: ptr(5)}
	unrated := domain.Hotel{Name: "Hostel", Location: "Metropolis"}

	assert.True(t, domain.HotelFilter{}.Matches(plaza))
	assert.True(t, domain.HotelFilter{Location: ptr("metro")}.Matches(plaza))
	assert.False(t, domain.HotelFilter{Location: ptr("gotham")}.Matches(plaza))
	assert.True(t, domain.HotelFilter{MinRating: ptr(5)}.Matches(plaza))
	assert.False(t, domain.HotelFilter{MinRating: ptr(6)}.Matches(plaza))
	assert.True(t, domain.HotelFilter{MinRating: ptr(-1)}.Matches(plaza))
	assert.False(t, domain.HotelFilter{MinRating: ptr(1)}.Matches(unrated))
	assert.True(t, domain.HotelFilter{Location: ptr("")}.Matches(unrated))
}

func TestSameName(t *testing.T) {
	assert.True(t, domain.SameName("grand plaza hotel", "Grand Plaza Hotel"))
	assert.False(t, domain.SameName("Grand Plaza", "Grand Plaza Hotel"))
}

func TestNewUser(t *testing.T) {
	u, err := domain.NewUser(" 17841400000 ", ptr("traveller"))
	require.NoError(t, err)
	assert.Equal(t, "17841400000", u.ExternalID)

	_, err = domain.NewUser("", nil)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestNewBooking_Defaults(t *testing.T) {
	b, err := domain.NewBooking(domain.BookingInput{
		UserID: 1, HotelID: 2, RoomTypeID: 3,
		CheckIn:    time.Date(2026, 3, 1, 15, 30, 0, 0, time.FixedZone("X", 3600)),
		CheckOut:   day("2026-03-04"),
		NumGuests:  2,
		TotalPrice: domain.MustParseMoney("750.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.True(t, strings.HasPrefix(b.Reference, "BK-"))
	assert.Len(t, b.Reference, 15)
	assert.Equal(t, day("2026-03-01"), b.CheckIn)
	assert.Equal(t, 3, b.Nights())
}

func TestNewBooking_Rejects(t *testing.T) {
	base := domain.BookingInput{
		UserID: 1, HotelID: 2, RoomTypeID: 3,
		CheckIn: day("2026-03-01"), CheckOut: day("2026-03-04"),
		NumGuests: 1,
	}
	mutations := map[string]func(*domain.BookingInput){
		"no user":        func(in *domain.BookingInput) { in.UserID = 0 },
		"no hotel":       func(in *domain.BookingInput) { in.HotelID = 0 },
		"no room":        func(in *domain.BookingInput) { in.RoomTypeID = 0 },
		"same day":       func(in *domain.BookingInput) { in.CheckOut = in.CheckIn },
		"no guests":      func(in *domain.BookingInput) { in.NumGuests = 0 },
		"negative price": func(in *domain.BookingInput) { in.TotalPrice = domain.MoneyFromCents(-100) },
		"bad status":     func(in *domain.BookingInput) { in.Status = "pending" },
	}
	for name, mut := range mutations {
		in := base
		mut(&in)
		_, err := domain.NewBooking(in)
		assert.True(t, errors.Is(err, domain.ErrValidation), name)
	}
}

func TestBookingReferencesAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		ref := domain.NewBookingReference()
		require.False(t, seen[ref], ref)
		seen[ref] = true
	}
}

func TestEnums(t *testing.T) {
	st, err := domain.ParseBookingStatus("Cancelled")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, st)
	_, err = domain.ParseBookingStatus("pending")
	assert.Error(t, err)

	var k domain.ModificationKind
	require.NoError(t, k.Scan([]byte("reschedule")))
	assert.Equal(t, domain.ModificationReschedule, k)
	assert.Error(t, k.Scan([]byte("refund")))

	_, err = domain.ModificationKind("refund").Value()
	assert.Error(t, err)
	v, err := domain.BookingConfirmed.Value()
	require.NoError(t, err)
	assert.Equal(t, "confirmed", v)
}

func TestNewBookingModification(t *testing.T) {
	in, out := day("2026-04-01"), day("2026-04-03")
	_, err := domain.NewBookingModification(domain.ModificationInput{
		BookingID: 9, Kind: domain.ModificationReschedule,
		NewCheckIn: &in, NewCheckOut: &out, FeeCharged: domain.MustParseMoney("25.00"),
	})
	require.NoError(t, err)

	_, err = domain.NewBookingModification(domain.ModificationInput{BookingID: 9, Kind: domain.ModificationReschedule, NewCheckIn: &in})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = domain.NewBookingModification(domain.ModificationInput{BookingID: 9, Kind: domain.ModificationReschedule, NewCheckIn: &out, NewCheckOut: &in})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = domain.NewBookingModification(domain.ModificationInput{BookingID: 9, Kind: domain.ModificationCancel})
	require.NoError(t, err)

	_, err = domain.NewBookingModification(domain.ModificationInput{BookingID: 9, Kind: domain.ModificationCancel, NewCheckIn: &in})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = domain.NewBookingModification(domain.ModificationInput{BookingID: 9, Kind: "refund"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestNewConversation(t *testing.T) {
	c, err := domain.NewConversation(4, " awaiting_dates ", domain.MustParseDocument(`{"hotel":"Grand Plaza Hotel"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.ConversationState("awaiting_dates"), c.State)

	_, err = domain.NewConversation(4, "", domain.Null())
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = domain.NewConversation(0, "start", domain.Null())
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestConstraintError(t *testing.T) {
	cause := errors.New("driver says no")
	err := error(&domain.ConstraintError{Kind: domain.ConstraintForeignKey, Table: "room_types", Constraint: "fk_room_types_hotel", Err: cause})
	assert.True(t, errors.Is(err, domain.ErrConstraintViolation))
	assert.True(t, errors.Is(err, cause))

	var ce *domain.ConstraintError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, domain.ConstraintForeignKey, ce.Kind)
	assert.Contains(t, err.Error(), "room_types")
}
