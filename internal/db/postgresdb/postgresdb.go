// Package postgresdb provides a PostgreSQL-based implementation of the storage
// interface for persisting users and their URL collections.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/OnyinyeO/Tinyapp/internal/user"
)

// PostgresDB is a PostgreSQL-backed implementation of the users storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables resetting the database schema before migration.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil, fmt.Errorf("error while `result.resetDB()` calling: %w", err)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return result, nil
}

// InsertUser stores a new user row.
func (db *PostgresDB) InsertUser(ctx context.Context, usr *user.User) error {
	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		usr.ID,
		usr.Email,
		usr.PasswordHash,
	)

	return err
}

// GetUserByID fetches a user and their URL collection by ID.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash FROM users WHERE id = $1`,
		userID,
	)

	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	usr.URLs, err = db.GetUserURLs(ctx, usr.ID)
	if err != nil {
		return nil, false, err
	}

	return usr, true, nil
}

// FindUserByEmail fetches a user by exact email match.
func (db *PostgresDB) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash FROM users WHERE email = $1`,
		email,
	)

	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	usr.URLs, err = db.GetUserURLs(ctx, usr.ID)
	if err != nil {
		return nil, false, err
	}

	return usr, true, nil
}

// GetUserURLs retrieves all URL records owned by the given user.
func (db *PostgresDB) GetUserURLs(ctx context.Context, userID string) (map[string]user.URLRecord, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT short, long FROM user_urls WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[string]user.URLRecord{}
	for rows.Next() {
		var short, long string
		err = rows.Scan(&short, &long)
		if err != nil {
			return nil, err
		}

		result[short] = user.URLRecord{
			ShortCode: short,
			LongURL:   long,
		}
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// FindUserURL looks a short code up within the given user's collection only.
func (db *PostgresDB) FindUserURL(ctx context.Context, userID, short string) (user.URLRecord, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT short, long FROM user_urls WHERE user_id = $1 AND short = $2`,
		userID,
		short,
	)

	record := user.URLRecord{}
	err := row.Scan(&record.ShortCode, &record.LongURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.URLRecord{}, false, nil
		}
		return user.URLRecord{}, false, err
	}

	return record, true, nil
}

// SaveUserURL stores the record with an UPSERT keyed by (user_id, short).
func (db *PostgresDB) SaveUserURL(ctx context.Context, userID string, record user.URLRecord) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			INSERT INTO user_urls (user_id, short, long)
				VALUES ($1, $2, $3)
				ON CONFLICT (user_id, short) DO UPDATE
				SET long = EXCLUDED.long;
		`,
		userID,
		record.ShortCode,
		record.LongURL,
	)

	return err
}

// DeleteUserURL removes the record; deleting an absent code is a no-op.
func (db *PostgresDB) DeleteUserURL(ctx context.Context, userID, short string) error {
	_, err := db.database.ExecContext(
		ctx,
		`DELETE FROM user_urls WHERE user_id = $1 AND short = $2`,
		userID,
		short,
	)

	return err
}

// GetNumberOfUsers returns the total amount of registered users.
func (db *PostgresDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	row := db.database.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`)

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// GetNumberOfShortenedURLs returns the total amount of URLs over all users.
func (db *PostgresDB) GetNumberOfShortenedURLs(ctx context.Context) (int64, error) {
	row := db.database.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_urls`)

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// Persist is a no-op: every write already went to the database.
func (db *PostgresDB) Persist(ctx context.Context) error {
	return nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf("error while `db.database.ExecContext()` calling: %w", err)
	}
	return nil
}
