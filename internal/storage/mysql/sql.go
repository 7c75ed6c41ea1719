package mysql

import (
	"strings"

	"hotel_catalog/internal/domain"
)

const hotelCols = `h.id, h.name, h.location, h.star_rating, h.description, h.amenities, h.policies, h.created_at`

const listHotelsSQL = `SELECT ` + hotelCols + ` FROM hotels h ORDER BY h.id`

// name is compared case-normalized and, under a _bin NO PAD collation,
// byte-exact otherwise. Ties go to the oldest row.
const findHotelByNameSQL = `
SELECT ` + hotelCols + `
FROM hotels h
WHERE LOWER(h.name) = LOWER(?)
ORDER BY h.id
LIMIT 1
`

const anyHotelSQL = `SELECT EXISTS(SELECT 1 FROM hotels)`

// One round trip: the hotel row repeats for each room type, and a hotel
// without room types yields one row of NULL r.* columns.
const hotelDetailsSQL = `
SELECT
  ` + hotelCols + `,
  r.id,
  r.name,
  r.description,
  r.max_occupancy,
  r.base_price,
  r.features
FROM hotels h
LEFT JOIN room_types r ON r.hotel_id = h.id
WHERE h.id = ?
ORDER BY r.id
`

const insertHotelSQL = `
INSERT INTO hotels
  (name, location, star_rating, description, amenities, policies)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const hotelCreatedAtSQL = `SELECT created_at FROM hotels WHERE id = ?`

const insertRoomTypeSQL = `
INSERT INTO room_types
  (hotel_id, name, description, max_occupancy, base_price, features)
VALUES
  (?, ?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// RESERVATIONS
// -----------------------------------------------------------------------------

const userCols = `id, external_id, username, created_at, last_active`

const insertUserSQL = `INSERT INTO users (external_id, username) VALUES (?, ?)`

const getUserByIDSQL = `SELECT ` + userCols + ` FROM users WHERE id = ?`

const getUserByExternalIDSQL = `SELECT ` + userCols + ` FROM users WHERE external_id = ?`

// last_active never moves backwards.
const touchUserSQL = `UPDATE users SET last_active = GREATEST(last_active, CURRENT_TIMESTAMP) WHERE id = ?`

const bookingCols = `id, user_id, hotel_id, room_type_id, check_in, check_out, num_guests, total_price, status, booking_reference, created_at, updated_at`

const insertBookingSQL = `
INSERT INTO bookings
  (user_id, hotel_id, room_type_id, check_in, check_out, num_guests, total_price, status, booking_reference)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const getBookingByIDSQL = `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`

const getBookingByReferenceSQL = `SELECT ` + bookingCols + ` FROM bookings WHERE booking_reference = ?`

const modificationCols = `id, booking_id, modification_type, old_check_in, old_check_out, new_check_in, new_check_out, fee_charged, created_at`

const insertModificationSQL = `
INSERT INTO booking_modifications
  (booking_id, modification_type, old_check_in, old_check_out, new_check_in, new_check_out, fee_charged)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

const modificationCreatedAtSQL = `SELECT created_at FROM booking_modifications WHERE id = ?`

const listModificationsSQL = `SELECT ` + modificationCols + ` FROM booking_modifications WHERE booking_id = ? ORDER BY id`

const conversationCols = `id, user_id, state, context, created_at, updated_at`

const insertConversationSQL = `INSERT INTO conversations (user_id, state, context) VALUES (?, ?, ?)`

// updated_at never moves backwards.
const updateConversationSQL = `
UPDATE conversations
SET state = ?, context = ?, updated_at = GREATEST(updated_at, CURRENT_TIMESTAMP)
WHERE id = ?
`

const getConversationSQL = `SELECT ` + conversationCols + ` FROM conversations WHERE id = ?`

// buildSearchHotels renders the optional conjuncts of f. Location is a
// case-insensitive substring match with LIKE wildcards in the input escaped.
func buildSearchHotels(f domain.HotelFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Location != nil {
		where = append(where, `LOWER(h.location) LIKE CONCAT('%', LOWER(?), '%') ESCAPE '!'`)
		args = append(args, escapeLike(*f.Location))
	}
	if f.MinRating != nil {
		where = append(where, `h.star_rating >= ?`)
		args = append(args, *f.MinRating)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + hotelCols + ` FROM hotels h`)
	if len(where) > 0 {
		b.WriteString(` WHERE `)
		b.WriteString(strings.Join(where, ` AND `))
	}
	b.WriteString(` ORDER BY h.id`)
	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
