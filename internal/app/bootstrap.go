package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_catalog/internal/adapters/observability"
	"hotel_catalog/internal/domain"
)

// BootstrapLockKey serializes seeding across processes sharing a store.
const BootstrapLockKey = "hotel-catalog:bootstrap"

var ErrBootstrapLocked = errors.New("bootstrap is already running elsewhere")

type SeedResult struct {
	Skipped   bool // the catalog already had hotels
	Hotels    int
	RoomTypes int
}

// Bootstrapper loads the initial catalog. It is a no-op once any hotel exists.
type Bootstrapper struct {
	store   domain.SeedStore
	locker  domain.Locker // optional
	lockTTL time.Duration
}

// NewBootstrapper accepts a nil locker, in which case runs are not serialized.
func NewBootstrapper(store domain.SeedStore, locker domain.Locker, lockTTL time.Duration) *Bootstrapper {
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &Bootstrapper{store: store, locker: locker, lockTTL: lockTTL}
}

// Run inserts hotels and their room types in one transaction. Any failure
// rolls the whole run back.
func (b *Bootstrapper) Run(ctx context.Context, hotels []SeedHotel) (res SeedResult, err error) {
	defer func() { observability.ObserveBootstrap(bootstrapResult(res, err)) }()

	if b.locker != nil {
		unlock, lerr := b.locker.TryLock(ctx, BootstrapLockKey, b.lockTTL)
		if errors.Is(lerr, domain.ErrLocked) {
			return SeedResult{}, ErrBootstrapLocked
		}
		if lerr != nil {
			return SeedResult{}, fmt.Errorf("acquire bootstrap lock: %w", lerr)
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				log.Warn().Err(uerr).Str("key", BootstrapLockKey).Msg("release bootstrap lock")
			}
		}()
	}

	err = b.store.WithinTx(ctx, func(tx domain.CatalogWriter) error {
		res = SeedResult{}
		exists, err := tx.AnyHotel(ctx)
		if err != nil {
			return fmt.Errorf("check existing hotels: %w", err)
		}
		if exists {
			res.Skipped = true
			return nil
		}
		for _, sh := range hotels {
			n, err := seedOne(ctx, tx, sh)
			if err != nil {
				return err
			}
			res.Hotels++
			res.RoomTypes += n
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("bootstrap: %w", err)
	}

	if res.Skipped {
		log.Info().Msg("catalog already seeded")
	} else {
		log.Info().Int("hotels", res.Hotels).Int("room_types", res.RoomTypes).Msg("catalog seeded")
	}
	return res, nil
}

func seedOne(ctx context.Context, tx domain.CatalogWriter, sh SeedHotel) (int, error) {
	h, err := domain.NewHotel(sh.Name, sh.Location, sh.StarRating, sh.Description, sh.Amenities, sh.Policies)
	if err != nil {
		return 0, fmt.Errorf("hotel %q: %w", sh.Name, err)
	}
	if err := tx.InsertHotel(ctx, &h); err != nil {
		return 0, fmt.Errorf("insert hotel %q: %w", sh.Name, err)
	}
	for _, srt := range sh.RoomTypes {
		rt, err := domain.NewRoomType(h.ID, srt.Name, srt.Description, srt.MaxOccupancy, srt.BasePrice, srt.Features)
		if err != nil {
			return 0, fmt.Errorf("room type %q of %q: %w", srt.Name, sh.Name, err)
		}
		if err := tx.InsertRoomType(ctx, &rt); err != nil {
			return 0, fmt.Errorf("insert room type %q of %q: %w", srt.Name, sh.Name, err)
		}
	}
	return len(sh.RoomTypes), nil
}

func bootstrapResult(res SeedResult, err error) string {
	switch {
	case errors.Is(err, ErrBootstrapLocked):
		return "locked"
	case err != nil:
		return "failed"
	case res.Skipped:
		return "skipped"
	}
	return "seeded"
}
