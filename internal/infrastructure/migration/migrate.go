package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// DefaultLockTimeout bounds how long Up/Down wait for the advisory lock
// held by another process migrating the same database.
const DefaultLockTimeout = 30 * time.Second

// Options configures a Migrator
type Options struct {
	// Dir is the directory holding the *.up.sql / *.down.sql pairs
	Dir string
	// SchemaTable overrides golang-migrate's bookkeeping table name
	SchemaTable string
	LockTimeout time.Duration
}

// Status describes the schema state of a database
type Status struct {
	Version uint
	Dirty   bool
	Applied int
	Pending []string
}

// Migrator applies the versioned SQL schema of the subcontracting tables
type Migrator struct {
	m      *migrate.Migrate
	dir    string
	logger *zap.Logger
}

// New creates a Migrator on top of an open postgres connection.
// Close closes db as well.
func New(db *sql.DB, opts Options, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: opts.SchemaTable})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL(opts.Dir), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations in %s: %w", opts.Dir, err)
	}
	return newMigrator(m, opts, logger), nil
}

// NewFromURL creates a Migrator that opens its own connection from a postgres URL
func NewFromURL(databaseURL string, opts Options, logger *zap.Logger) (*Migrator, error) {
	m, err := migrate.New(sourceURL(opts.Dir), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations in %s: %w", opts.Dir, err)
	}
	return newMigrator(m, opts, logger), nil
}

func newMigrator(m *migrate.Migrate, opts Options, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	m.LockTimeout = opts.LockTimeout
	if m.LockTimeout <= 0 {
		m.LockTimeout = DefaultLockTimeout
	}
	m.Log = &migrateLogger{logger: logger.Named("migrate").Sugar()}
	return &Migrator{m: m, dir: opts.Dir, logger: logger}
}

func sourceURL(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return "file://" + filepath.ToSlash(dir)
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	return m.run("up", m.m.Up)
}

// Down rolls back every applied migration
func (m *Migrator) Down() error {
	return m.run("down", m.m.Down)
}

// Steps applies n migrations forward, or rolls back -n when n is negative
func (m *Migrator) Steps(n int) error {
	return m.run(fmt.Sprintf("steps(%d)", n), func() error { return m.m.Steps(n) })
}

// GoTo migrates up or down to the given version
func (m *Migrator) GoTo(version uint) error {
	return m.run(fmt.Sprintf("goto(%d)", version), func() error { return m.m.Migrate(version) })
}

func (m *Migrator) run(op string, fn func() error) error {
	start := time.Now()
	m.logger.Info("Running migrations", zap.String("operation", op), zap.String("dir", m.dir))

	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("Schema already up to date", zap.String("operation", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", op, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info("Migrations completed",
		zap.String("operation", op),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Version returns the applied version; a fresh database reports 0
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

// Status compares the applied version with the migration files on disk
func (m *Migrator) Status() (Status, error) {
	version, dirty, err := m.Version()
	if err != nil {
		return Status{}, err
	}
	files, err := ListMigrations(m.dir)
	if err != nil {
		return Status{}, err
	}

	st := Status{Version: version, Dirty: dirty}
	for _, f := range files {
		if f.Version <= uint64(version) {
			st.Applied++
			continue
		}
		st.Pending = append(st.Pending, f.Name())
	}
	return st, nil
}

// Force records version as applied without running it; clears a dirty flag
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing schema version", zap.Int("version", version))
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every table in the database, including ones not created here
func (m *Migrator) Drop() error {
	m.logger.Warn("Dropping all tables")
	if err := m.m.Drop(); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}
	return nil
}

// Close releases the migration source and the database connection
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.m.Close()
	return errors.Join(sourceErr, dbErr)
}

// migrateLogger adapts zap to golang-migrate's Logger
type migrateLogger struct {
	logger *zap.SugaredLogger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Debugf(format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return l.logger.Desugar().Core().Enabled(zap.DebugLevel)
}
