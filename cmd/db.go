package cmd

import (
	"errors"

	"github.com/gitpulse-io/gitpulse/db/migrator"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

func newDatabaseResetCmd() *cobra.Command {
	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Reset the database",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !prompt(cmd, "Are you sure? This operation is irreversible.") {
					return errors.New("canceled")
				}
			}
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			if err := migrator.New(cfg).Reset(); err != nil {
				return err
			}
			cmd.Println("database successfully reset")
			return nil
		},
	}
	reset.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "yes")
	return reset
}

func newDatabaseCmd() *cobra.Command {
	database := &cobra.Command{
		Use:   "db",
		Short: "Database commands",
		Long:  ``,
	}

	database.PersistentFlags().StringVarP(&configurationFile, "config", "", "", "The configuration filename")

	database.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the migration status",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			version, dirty, err := migrator.New(cfg).Status()
			if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
				return err
			}
			cmd.Printf("version: %d, dirty: %v\n", version, dirty)
			return nil
		},
	})

	database.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run any new migrations",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			if err := migrator.New(cfg).Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			cmd.Println("database is up-to-date")
			return nil
		},
	})

	database.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			if err := migrator.New(cfg).Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			cmd.Println("database rolled back")
			return nil
		},
	})

	database.AddCommand(newDatabaseResetCmd())

	return database
}
