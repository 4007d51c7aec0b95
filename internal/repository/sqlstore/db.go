package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/careops/registry-api/internal/config"
	"github.com/careops/registry-api/internal/model"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func NewDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverSQLite:
		sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
		db, err := sqlx.Connect(DriverSQLite, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// modernc sqlite serializes writers; a single connection avoids
		// SQLITE_BUSY under concurrent service calls.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		return db, nil

	case DriverPostgres:
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
		db, err := sqlx.Connect(DriverPostgres, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		address TEXT,
		phone TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patient_code TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		date_of_birth TIMESTAMP NOT NULL,
		gender TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT,
		address TEXT,
		emergency_contact TEXT,
		location_id INTEGER NOT NULL REFERENCES locations (id),
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS health_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patient_id INTEGER NOT NULL REFERENCES patients (id),
		location_id INTEGER NOT NULL REFERENCES locations (id),
		height REAL,
		weight REAL,
		temperature REAL,
		blood_pressure_systolic INTEGER,
		blood_pressure_diastolic INTEGER,
		heart_rate INTEGER,
		notes TEXT,
		recorded_by TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS blood_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sample_code TEXT NOT NULL UNIQUE,
		patient_id INTEGER NOT NULL REFERENCES patients (id),
		collection_location_id INTEGER NOT NULL REFERENCES locations (id),
		test_location_id INTEGER REFERENCES locations (id),
		collected_by TEXT NOT NULL,
		collected_at TIMESTAMP NOT NULL,
		test_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'collected',
		results TEXT,
		tested_by TEXT,
		tested_at TIMESTAMP,
		results_sent_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS code_sequences (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT,
		phone TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		id BIGSERIAL PRIMARY KEY,
		patient_code TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		date_of_birth TIMESTAMPTZ NOT NULL,
		gender TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT,
		address TEXT,
		emergency_contact TEXT,
		location_id BIGINT NOT NULL REFERENCES locations (id),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS health_records (
		id BIGSERIAL PRIMARY KEY,
		patient_id BIGINT NOT NULL REFERENCES patients (id),
		location_id BIGINT NOT NULL REFERENCES locations (id),
		height DOUBLE PRECISION,
		weight DOUBLE PRECISION,
		temperature DOUBLE PRECISION,
		blood_pressure_systolic BIGINT,
		blood_pressure_diastolic BIGINT,
		heart_rate BIGINT,
		notes TEXT,
		recorded_by TEXT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS blood_samples (
		id BIGSERIAL PRIMARY KEY,
		sample_code TEXT NOT NULL UNIQUE,
		patient_id BIGINT NOT NULL REFERENCES patients (id),
		collection_location_id BIGINT NOT NULL REFERENCES locations (id),
		test_location_id BIGINT REFERENCES locations (id),
		collected_by TEXT NOT NULL,
		collected_at TIMESTAMPTZ NOT NULL,
		test_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'collected',
		results TEXT,
		tested_by TEXT,
		tested_at TIMESTAMPTZ,
		results_sent_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS code_sequences (
		name TEXT PRIMARY KEY,
		value BIGINT NOT NULL
	)`,
}

// Sequence names used by the identifier issuer.
const (
	SequencePatientCodes = "patient_codes"
	SequenceSampleCodes  = "sample_codes"
)

// Migrate creates the schema if absent, registers the code sequences and
// seeds the default location when no location exists yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == DriverPostgres {
		schema = postgresSchema
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	seedSeq := db.Rebind(`INSERT INTO code_sequences (name, value) VALUES (?, 0) ON CONFLICT (name) DO NOTHING`)
	for _, name := range []string{SequencePatientCodes, SequenceSampleCodes} {
		if _, err := db.ExecContext(ctx, seedSeq, name); err != nil {
			return fmt.Errorf("failed to seed sequence %s: %w", name, err)
		}
	}

	return seedDefaultLocation(ctx, db)
}

func seedDefaultLocation(ctx context.Context, db *sqlx.DB) error {
	var count int64
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM locations`); err != nil {
		return fmt.Errorf("failed to count locations: %w", err)
	}
	if count > 0 {
		return nil
	}

	loc := &model.Location{
		Name:    model.SeedLocationName,
		Address: model.SeedLocationAddress,
		Phone:   model.SeedLocationPhone,
	}
	if err := NewLocationRepository(db).Create(ctx, loc); err != nil {
		return fmt.Errorf("failed to seed default location: %w", err)
	}
	return nil
}
