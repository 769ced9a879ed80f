package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/food_cart/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(cred *Credentials) (*PostgresDirectory, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	return &PostgresDirectory{db: db}, nil
}

func (d *PostgresDirectory) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(d.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (d *PostgresDirectory) Lookup(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT id, email, phone_verified, address_line1, address_city
		FROM users
		WHERE id = $1
	`

	u := &domain.User{}
	err := d.db.QueryRowContext(ctx, query, userID).Scan(
		&u.ID,
		&u.Email,
		&u.PhoneVerified,
		&u.AddressLine1,
		&u.AddressCity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

func (d *PostgresDirectory) Upsert(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (id, email, phone_verified, address_line1, address_city)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			phone_verified = EXCLUDED.phone_verified,
			address_line1 = EXCLUDED.address_line1,
			address_city = EXCLUDED.address_city,
			updated_at = NOW()
	`

	_, err := d.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PhoneVerified,
		user.AddressLine1,
		user.AddressCity,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (d *PostgresDirectory) Close() error {
	return d.db.Close()
}
