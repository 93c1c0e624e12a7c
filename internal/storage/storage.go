package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eduflow/eduflow-server/internal/config"
	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrDeveloperNotFound = errors.New("developer not found")
	ErrDuplicateAccount  = errors.New("duplicate account")
)

// Database is one logical database. On PostgreSQL, GORM and raw reporting queries share
// the same bounded pgx pool; Pool is nil for SQLite.
type Database struct {
	Gorm *gorm.DB
	Pool *pgxpool.Pool
}

// Open connects to the database described by cfg using its Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, pool config.PoolConfig) (*Database, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Database{Gorm: db}, nil
	case "postgres", "":
		return OpenPostgres(ctx, cfg, pool)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// OpenPostgres creates the pgx pool and layers GORM on top of it.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig, pool config.PoolConfig) (*Database, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}
	poolCfg.MaxConns = int32(pool.MaxConns)
	poolCfg.MaxConnIdleTime = pool.IdleTimeout
	poolCfg.ConnConfig.ConnectTimeout = pool.ConnectTimeout

	pgPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("pinging %s: %w", cfg.DBName, err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pgPool)}), gormConfig())
	if err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("opening gorm: %w", err)
	}

	return &Database{Gorm: db, Pool: pgPool}, nil
}

// OpenSQLite opens a SQLite database. A single connection is used so ":memory:" databases
// are shared by every query.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	}
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the GORM handle and then the pool underneath it.
func (d *Database) Close() error {
	var closeErr error
	if d.Gorm != nil {
		if sqlDB, err := d.Gorm.DB(); err == nil {
			closeErr = sqlDB.Close()
		}
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
	return closeErr
}

// BuildDSN renders a keyword/value connection string. Values are quoted so an empty
// password does not swallow the next keyword.
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		quoteDSN(cfg.Host),
		quoteDSN(cfg.Port),
		quoteDSN(cfg.User),
		quoteDSN(cfg.Password),
		quoteDSN(cfg.DBName),
		quoteDSN(cfg.SSLMode),
	)
}

func quoteDSN(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}

// isDuplicateKey recognises unique violations from GORM's translator, PostgreSQL and SQLite.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
