package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	mysqlrepo "hotel_catalog/internal/storage/mysql"
)

func init() {
	f := NewDBFlags()

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create any missing catalog tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := f.Open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := mysqlrepo.EnsureSchema(ctx, db); err != nil {
				return err
			}
			log.Info().Strs("tables", mysqlrepo.Tables()).Msg("schema ready")
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	rootCmd.AddCommand(cmd)
}
