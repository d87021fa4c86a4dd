package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	logger "github.com/PolarWolf314/credshare/internal/logging"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

// Config selects the database engine.
type Config struct {
	// Driver is DriverSQLite or DriverPostgres.
	Driver string

	// DSN is a file path (or ":memory:") for sqlite, a connection URL for postgres.
	DSN string

	// Logger receives gorm's SQL traces at debug level.
	Logger logger.Logger
}

// Store is the shared persistent store. A Store returned by WithTx is bound
// to that transaction and must not escape the callback.
type Store struct {
	db     *gorm.DB
	driver string
}

// Open connects to the configured database and migrates the schema.
func Open(cfg Config) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		dsn, err := sqliteDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}

	level := gormlogger.Silent
	if cfg.Logger.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(cfg.Logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s store: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// One connection serializes writers; busy_timeout covers other processes.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(4)
		sqlDB.SetMaxOpenConns(16)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := runMigrations(db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, driver: cfg.Driver}, nil
}

func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Share{},
		&ShareRequest{},
		&AuditEntry{},
	)
}

// sqliteDSN adds the pragmas every connection needs and creates the parent directory.
func sqliteDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("sqlite store requires a file path")
	}
	if strings.Contains(dsn, "?") || dsn == ":memory:" {
		return dsn, nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0700); err != nil {
		return "", fmt.Errorf("failed to create store directory: %w", err)
	}
	return dsn + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Driver reports which engine backs the store.
func (s *Store) Driver() string {
	return s.driver
}

// WithTx runs fn in a single transaction. Any error, or cancellation of ctx,
// rolls every write back.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, driver: s.driver})
	})
}

// forUpdate locks selected rows until the surrounding transaction ends.
// SQLite has no row locks; its single writer connection gives the same ordering.
func (s *Store) forUpdate(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	if s.driver == DriverPostgres {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
