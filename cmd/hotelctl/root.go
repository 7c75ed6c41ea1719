package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"hotel_catalog/internal/adapters/observability"
	"hotel_catalog/internal/shared"
	mysqlrepo "hotel_catalog/internal/storage/mysql"
)

var rootCmd = &cobra.Command{
	Use:   "hotelctl",
	Short: "Manage the hotel catalog database",
	Long: `hotelctl creates the catalog schema in MySQL and seeds it from a local
file or an HTTP source. Settings come from the environment (and .env);
flags override them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = observability.NewLogger(cfg.AppEnv, cfg.Debug || debug)
	},
}

var (
	cfg   = shared.Load()
	debug bool
)

// DBFlags overrides the connection settings read from the environment.
type DBFlags struct {
	DSN string
}

func NewDBFlags() *DBFlags { return &DBFlags{DSN: cfg.MySQLDSN} }

func (f *DBFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.DSN, "mysql-dsn", f.DSN, "MySQL DSN (default from MYSQL_DSN)")
}

func (f *DBFlags) Open(ctx context.Context) (*sql.DB, error) {
	db, err := mysqlrepo.Open(ctx, mysqlrepo.Config{
		DSN:             f.DSN,
		MaxOpenConns:    cfg.DBPoolSize,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return db, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}
