package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

// Tables in dependency order: every table appears after the tables it
// references. Text that is searched or compared uses utf8mb4_0900_bin, a NO
// PAD collation, so equality and LIKE are exact after LOWER().
var schema = []struct {
	table string
	ddl   string
}{
	{"hotels", `
CREATE TABLE IF NOT EXISTS hotels (
  id          BIGINT       NOT NULL AUTO_INCREMENT,
  name        VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_0900_bin NOT NULL,
  location    VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_0900_bin NOT NULL,
  star_rating INT          NULL,
  description TEXT         NULL,
  amenities   JSON         NULL,
  policies    JSON         NULL,
  created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  KEY idx_hotels_name (name),
  KEY idx_hotels_location (location)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"room_types", `
CREATE TABLE IF NOT EXISTS room_types (
  id            BIGINT        NOT NULL AUTO_INCREMENT,
  hotel_id      BIGINT        NOT NULL,
  name          VARCHAR(255)  NOT NULL,
  description   TEXT          NULL,
  max_occupancy INT           NOT NULL DEFAULT 0,
  base_price    DECIMAL(10,2) NOT NULL DEFAULT 0.00,
  features      JSON          NULL,
  PRIMARY KEY (id),
  UNIQUE KEY uq_room_types_id_hotel (id, hotel_id),
  KEY idx_room_types_hotel (hotel_id),
  CONSTRAINT fk_room_types_hotel FOREIGN KEY (hotel_id) REFERENCES hotels (id) ON DELETE RESTRICT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"users", `
CREATE TABLE IF NOT EXISTS users (
  id          BIGINT       NOT NULL AUTO_INCREMENT,
  external_id VARCHAR(64)  NOT NULL,
  username    VARCHAR(255) NULL,
  created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
  last_active TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uq_users_external_id (external_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
  id                BIGINT        NOT NULL AUTO_INCREMENT,
  user_id           BIGINT        NOT NULL,
  hotel_id          BIGINT        NOT NULL,
  room_type_id      BIGINT        NOT NULL,
  check_in          DATE          NOT NULL,
  check_out         DATE          NOT NULL,
  num_guests        INT           NOT NULL,
  total_price       DECIMAL(10,2) NOT NULL DEFAULT 0.00,
  status            ENUM('confirmed','cancelled') NOT NULL DEFAULT 'confirmed',
  booking_reference VARCHAR(32)   NOT NULL,
  created_at        TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at        TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uq_bookings_reference (booking_reference),
  KEY idx_bookings_user (user_id),
  KEY idx_bookings_hotel (hotel_id),
  CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE RESTRICT,
  CONSTRAINT fk_bookings_hotel FOREIGN KEY (hotel_id) REFERENCES hotels (id) ON DELETE RESTRICT,
  CONSTRAINT fk_bookings_room_type FOREIGN KEY (room_type_id, hotel_id) REFERENCES room_types (id, hotel_id) ON DELETE RESTRICT,
  CONSTRAINT chk_bookings_dates CHECK (check_out > check_in),
  CONSTRAINT chk_bookings_guests CHECK (num_guests >= 1)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"booking_modifications", `
CREATE TABLE IF NOT EXISTS booking_modifications (
  id                BIGINT        NOT NULL AUTO_INCREMENT,
  booking_id        BIGINT        NOT NULL,
  modification_type ENUM('reschedule','cancel') NOT NULL,
  old_check_in      DATE          NULL,
  old_check_out     DATE          NULL,
  new_check_in      DATE          NULL,
  new_check_out     DATE          NULL,
  fee_charged       DECIMAL(10,2) NOT NULL DEFAULT 0.00,
  created_at        TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  KEY idx_booking_modifications_booking (booking_id),
  CONSTRAINT fk_booking_modifications_booking FOREIGN KEY (booking_id) REFERENCES bookings (id) ON DELETE RESTRICT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"conversations", `
CREATE TABLE IF NOT EXISTS conversations (
  id         BIGINT      NOT NULL AUTO_INCREMENT,
  user_id    BIGINT      NOT NULL,
  state      VARCHAR(64) NOT NULL,
  context    JSON        NULL,
  created_at TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  KEY idx_conversations_user (user_id),
  CONSTRAINT fk_conversations_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE RESTRICT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// Tables lists the managed tables in creation order.
func Tables() []string {
	out := make([]string, len(schema))
	for i, t := range schema {
		out[i] = t.table
	}
	return out
}

// EnsureSchema creates any missing table. Existing tables are left as is,
// so it is safe to run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, t := range schema {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.table, err)
		}
	}
	return nil
}
