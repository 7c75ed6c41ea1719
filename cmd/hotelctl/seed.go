package main

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	redisad "hotel_catalog/internal/adapters/redis"
	"hotel_catalog/internal/adapters/seedsource"
	"hotel_catalog/internal/app"
	"hotel_catalog/internal/domain"
	mysqlrepo "hotel_catalog/internal/storage/mysql"
)

type SeedFlags struct {
	DBFlags   *DBFlags
	Source    string
	RedisAddr string
	Rate      int
	InitDB    bool
}

func NewSeedFlags() *SeedFlags {
	return &SeedFlags{
		DBFlags:   NewDBFlags(),
		Source:    cfg.SeedSource,
		RedisAddr: cfg.RedisAddr,
		Rate:      5,
	}
}

func (f *SeedFlags) BindFlags(fs *pflag.FlagSet) {
	f.DBFlags.BindFlags(fs)
	fs.StringVar(&f.Source, "source", f.Source, "seed document: a file path or an http(s) URL")
	fs.StringVar(&f.RedisAddr, "redis-addr", f.RedisAddr, "Redis used to serialize concurrent seeders; empty disables the lock")
	fs.IntVar(&f.Rate, "rate", f.Rate, "max requests per second against an HTTP source")
	fs.BoolVar(&f.InitDB, "init-db", f.InitDB, "create missing tables before seeding")
}

func init() {
	f := NewSeedFlags()

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the seed catalog if the database has no hotels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			hotels, err := seedsource.New(seedsource.WithRate(f.Rate)).Load(ctx, f.Source)
			if err != nil {
				return err
			}

			db, err := f.DBFlags.Open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			if f.InitDB {
				if err := mysqlrepo.EnsureSchema(ctx, db); err != nil {
					return err
				}
			}

			var locker domain.Locker
			if f.RedisAddr != "" {
				l := redisad.New(f.RedisAddr, cfg.RedisPass, cfg.RedisDB)
				defer l.Close()
				if err := l.Ping(ctx); err != nil {
					return err
				}
				locker = l
			}

			st := mysqlrepo.NewStore(db, cfg.DBQueryTimeout)
			res, err := app.NewBootstrapper(st, locker, cfg.SeedLockTTL).Run(ctx, hotels)
			if errors.Is(err, app.ErrBootstrapLocked) {
				log.Info().Msg("another seeder holds the lock, nothing to do")
				return nil
			}
			if err != nil {
				return err
			}
			log.Info().
				Str("source", f.Source).
				Bool("skipped", res.Skipped).
				Int("hotels", res.Hotels).
				Int("room_types", res.RoomTypes).
				Msg("seed done")
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	rootCmd.AddCommand(cmd)
}
