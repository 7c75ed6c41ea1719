package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_catalog/internal/domain"
)

var (
	_ domain.SessionOpener  = (*Store)(nil)
	_ domain.SeedStore      = (*Store)(nil)
	_ domain.CatalogSession = (*Session)(nil)
)

type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// Open connects a pool and pings it. The DSN is normalized so that
// timestamps scan as time.Time in UTC and UPDATE reports matched rows.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

func normalizeDSN(dsn string) (string, error) {
	c, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse MYSQL_DSN: %w", err)
	}
	c.ParseTime = true
	c.Loc = time.UTC
	c.ClientFoundRows = true
	if c.Params == nil {
		c.Params = map[string]string{}
	}
	c.Params["time_zone"] = "'+00:00'"
	return c.FormatDSN(), nil
}

// Store is the MySQL-backed catalog. Its embedded Repo runs on the pool.
type Store struct {
	*Repo
	db      *sql.DB
	timeout time.Duration
}

func NewStore(db *sql.DB, queryTimeout time.Duration) *Store {
	return &Store{Repo: newRepo(db, queryTimeout), db: db, timeout: queryTimeout}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// OpenSession pins one pooled connection until the session is closed.
func (s *Store) OpenSession(ctx context.Context) (domain.CatalogSession, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return &Session{Repo: newRepo(conn, s.timeout), conn: conn}, nil
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.CatalogWriter) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newRepo(tx, s.timeout)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Session is a Repo bound to a single connection.
type Session struct {
	*Repo
	conn *sql.Conn
	once sync.Once
	err  error
}

// Close returns the connection to the pool; later calls are no-ops.
func (s *Session) Close() error {
	s.once.Do(func() { s.err = s.conn.Close() })
	return s.err
}
