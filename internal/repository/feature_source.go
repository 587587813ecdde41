package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/parquet-go/parquet-go"

	"github.com/jengzang/riskdash-backend/internal/apperr"
	"github.com/jengzang/riskdash-backend/internal/database"
	"github.com/jengzang/riskdash-backend/internal/models"
)

// FeatureSource reads every snapshot row of one region
type FeatureSource interface {
	Load(ctx context.Context, region string) ([]models.FeatureRow, error)
	Name() string
}

// NewFeatureSource picks a source implementation from the snapshot location
func NewFeatureSource(location string) (FeatureSource, error) {
	if dbCfg, ok := database.ParseDSN(location); ok {
		return &SQLSource{cfg: dbCfg}, nil
	}
	if strings.HasSuffix(location, ".parquet") {
		return &ParquetSource{path: location}, nil
	}
	return nil, apperr.New(apperr.DataUnavailable, "unsupported snapshot location %q", location)
}

// ParquetSource reads the snapshot from a parquet file
type ParquetSource struct {
	path string
}

// NewParquetSource creates a parquet-backed source
func NewParquetSource(path string) *ParquetSource {
	return &ParquetSource{path: path}
}

// Name identifies the source in logs
func (s *ParquetSource) Name() string {
	return "parquet:" + s.path
}

// Load reads the whole file, checks the schema and keeps rows of region
func (s *ParquetSource) Load(ctx context.Context, region string) ([]models.FeatureRow, error) {
	if err := s.checkSchema(); err != nil {
		return nil, err
	}

	records, err := parquet.ReadFile[snapshotRecord](s.path)
	if err != nil {
		return nil, apperr.Wrap(apperr.DataUnavailable, err, "failed to read snapshot %s", s.path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := toRows(records, region)
	if err != nil {
		return nil, err
	}

	slog.Info("Snapshot loaded", "source", s.Name(), "total", len(records), "region", region, "rows", len(rows))
	return rows, nil
}

func (s *ParquetSource) checkSchema() error {
	f, err := os.Open(s.path)
	if err != nil {
		return apperr.Wrap(apperr.DataUnavailable, err, "failed to open snapshot %s", s.path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return apperr.Wrap(apperr.DataUnavailable, err, "failed to stat snapshot %s", s.path)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return apperr.Wrap(apperr.DataUnavailable, err, "snapshot %s is not a parquet file", s.path)
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := pf.Schema().Lookup(col); !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return apperr.New(apperr.DataUnavailable, "snapshot %s is missing columns: %s", s.path, strings.Join(missing, ", "))
	}
	return nil
}

// WriteParquet writes rows with the snapshot schema
func WriteParquet(path string, rows []models.FeatureRow) error {
	records := make([]snapshotRecord, len(rows))
	for i, row := range rows {
		records[i] = recordFromRow(row)
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("failed to write parquet snapshot: %w", err)
	}
	return nil
}

// SQLSource reads the snapshot from the features table of sqlite or postgres
type SQLSource struct {
	cfg database.Config
	db  *sqlx.DB
}

// NewSQLSource wraps an already opened database
func NewSQLSource(db *sqlx.DB) *SQLSource {
	return &SQLSource{db: db, cfg: database.Config{Driver: db.DriverName()}}
}

// Name identifies the source in logs
func (s *SQLSource) Name() string {
	return "sql:" + s.cfg.Driver
}

// Load selects the rows of region from the features table
func (s *SQLSource) Load(ctx context.Context, region string) ([]models.FeatureRow, error) {
	db := s.db
	if db == nil {
		opened, err := database.Open(s.cfg)
		if err != nil {
			return nil, apperr.Wrap(apperr.DataUnavailable, err, "snapshot database unavailable")
		}
		// The snapshot is read once per process
		defer opened.Close()
		db = opened
	}

	query := db.Rebind(fmt.Sprintf(
		"SELECT %s FROM features WHERE departamento = ? ORDER BY anio, mes",
		strings.Join(snapshotColumns, ", "),
	))

	var records []snapshotRecord
	if err := db.SelectContext(ctx, &records, query, region); err != nil {
		return nil, apperr.Wrap(apperr.DataUnavailable, err, "failed to query features table")
	}

	rows, err := toRows(records, region)
	if err != nil {
		return nil, err
	}

	slog.Info("Snapshot loaded", "source", s.Name(), "region", region, "rows", len(rows))
	return rows, nil
}

// InsertRows writes rows into the features table inside one transaction
func InsertRows(db *sqlx.DB, rows []models.FeatureRow) error {
	query := fmt.Sprintf(
		"INSERT INTO features (%s) VALUES (:%s)",
		strings.Join(snapshotColumns, ", "),
		strings.Join(snapshotColumns, ", :"),
	)

	return database.Transaction(db, func(tx *sqlx.Tx) error {
		for i, row := range rows {
			if _, err := tx.NamedExec(query, recordFromRow(row)); err != nil {
				return fmt.Errorf("failed to insert row %d: %w", i, err)
			}
		}
		return nil
	})
}

func toRows(records []snapshotRecord, region string) ([]models.FeatureRow, error) {
	rows := make([]models.FeatureRow, 0, len(records))
	for i, rec := range records {
		if rec.Region != region {
			continue
		}
		if err := rec.validate(i); err != nil {
			return nil, apperr.Wrap(apperr.DataUnavailable, err, "snapshot schema violation")
		}
		rows = append(rows, rec.toRow())
	}
	return rows, nil
}
