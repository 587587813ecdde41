package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jengzang/riskdash-backend/internal/database"
	"github.com/jengzang/riskdash-backend/internal/repository"
)

var (
	importParquet string
	importDB      string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a parquet snapshot into an SQL database",
	Long: `Import runs the embedded migrations against the target database and inserts
every row of the parquet snapshot in a single transaction.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importParquet, "parquet", "", "Parquet snapshot (default: data.snapshot)")
	importCmd.Flags().StringVar(&importDB, "db", "", "Target database: sqlite://path, *.db or postgres://...")
	_ = importCmd.MarkFlagRequired("db")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := importParquet
	if path == "" {
		path = cfg.Data.Snapshot
	}
	rows, err := repository.NewParquetSource(path).Load(cmd.Context(), cfg.Data.Region)
	if err != nil {
		return err
	}

	dbCfg, ok := database.ParseDSN(importDB)
	if !ok {
		return fmt.Errorf("unsupported database location %q", importDB)
	}
	db, err := database.Open(dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.NewMigrationManager(db).RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := repository.InsertRows(db, rows); err != nil {
		return err
	}
	slog.Info("Snapshot imported", "rows", len(rows), "driver", dbCfg.Driver)
	return nil
}
