package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/rglek0/Metadata-Editor/internal/domain"
	"github.com/rglek0/Metadata-Editor/internal/infra/logging"
)

// SQLiteUserRepositoryConfig holds configuration for the SQLite user repository.
type SQLiteUserRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/metasvc.db"`

	// LegacyDatabasePath is the pre-relocation database path. If a file
	// exists there and none exists at DatabasePath, it is moved over once
	// at startup. Failure to move is logged and ignored.
	LegacyDatabasePath string `env:"LEGACY_DATABASE_PATH" default:"var/tmp/metasvc.db"`
}

// SQLiteUserRepository implements Repository using SQLite as the storage backend.
type SQLiteUserRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteUserRepository)(nil)

// SQLiteUserRepositoryFactory creates a factory function that returns a new SQLiteUserRepository.
// The factory function implements the RepositoryFactory type.
func SQLiteUserRepositoryFactory(cfg SQLiteUserRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteUserRepository(cfg)
	}
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository with the given configuration.
// It relocates a legacy database file if one exists, initializes the database
// connection and creates the schema if needed.
// Returns an error if database connection or initialization fails.
func NewSQLiteUserRepository(cfg SQLiteUserRepositoryConfig) (*SQLiteUserRepository, error) {
	log := logging.GetLogger("repo.user.sqlite_user_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	migrateLegacyDatabase(cfg, log)

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteUserRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

// migrateLegacyDatabase moves the database file from its pre-relocation
// location, once, if the current location is still empty. The move is best
// effort: a failure must never prevent startup.
func migrateLegacyDatabase(cfg SQLiteUserRepositoryConfig, log logging.Logger) {
	if cfg.LegacyDatabasePath == "" || cfg.LegacyDatabasePath == cfg.DatabasePath {
		return
	}

	if _, err := os.Stat(cfg.LegacyDatabasePath); err != nil {
		return // no legacy file
	}

	if _, err := os.Stat(cfg.DatabasePath); err == nil {
		return // current file already exists
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		log.Warn("legacy db migration skipped", "error", err, "from", cfg.LegacyDatabasePath)

		return
	}

	if err := os.Rename(cfg.LegacyDatabasePath, cfg.DatabasePath); err != nil {
		log.Warn("legacy db migration failed", "error", err, "from", cfg.LegacyDatabasePath)

		return
	}

	log.Info("legacy db migrated", "from", cfg.LegacyDatabasePath)
}

func initializeDB(db *sql.DB) (err error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT    UNIQUE NOT NULL,
			password_hash BLOB    NOT NULL,
			role          TEXT    NOT NULL DEFAULT 'user',
			created_at    INTEGER NOT NULL,
			last_login    INTEGER
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// CreateUser implements Repository.CreateUser using SQLite. The UNIQUE
// constraint on username is the sole duplicate detection.
func (r *SQLiteUserRepository) CreateUser(
	ctx context.Context,
	username string,
	passwordHash []byte,
	role string,
) (*domain.User, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	createdAt := time.Now().Unix()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)",
		username,
		passwordHash,
		role,
		createdAt,
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) {
			switch liteErr.Code() {
			case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
				fallthrough
			case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
				err = errors.Join(domain.ErrUserAlreadyExists, err)
			default:
				break
			}
		}

		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return &domain.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    createdAt,
		LastLogin:    0,
	}, nil
}

// GetUserByUsername implements Repository.GetUserByUsername using SQLite.
func (r *SQLiteUserRepository) GetUserByUsername(
	ctx context.Context,
	username string,
) (*domain.User, bool, error) {
	var (
		user      domain.User
		lastLogin sql.NullInt64
	)

	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, role, created_at, last_login FROM users WHERE username = ?",
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, false, fmt.Errorf("query user: %w", err)
	}

	user.LastLogin = lastLogin.Int64

	return &user, true, nil
}

// TouchLastLogin implements Repository.TouchLastLogin using SQLite.
func (r *SQLiteUserRepository) TouchLastLogin(ctx context.Context, userID int64) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	if _, err := r.db.ExecContext(ctx,
		"UPDATE users SET last_login = ? WHERE id = ?",
		time.Now().Unix(),
		userID,
	); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}

	return nil
}

// UpdatePassword implements Repository.UpdatePassword using SQLite.
func (r *SQLiteUserRepository) UpdatePassword(
	ctx context.Context,
	username string,
	passwordHash []byte,
) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE username = ?",
		passwordHash,
		username,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", domain.ErrUserNotFound)
	}

	return nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteUserRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
