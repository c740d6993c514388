package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Kent0710/classroom-announcement-app/internal/models"
)

// ErrDuplicate is returned when an insert or update violates a unique
// constraint, such as a taken username or room name.
var ErrDuplicate = errors.New("duplicate record")

func InitDB(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// --- Users ---

func CreateUser(db *sql.DB, username, email, passwordHash string) (*models.User, error) {
	var u models.User
	err := db.QueryRow(
		`INSERT INTO users (username, email, password) VALUES ($1, NULLIF($2, ''), $3)
		 RETURNING id, username, COALESCE(email, ''), created_at`,
		username, email, passwordHash,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

func GetUserByUsername(db *sql.DB, username string) (*models.User, error) {
	var u models.User
	err := db.QueryRow(
		`SELECT id, username, COALESCE(email, ''), password, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func GetUserByID(db *sql.DB, id string) (*models.User, error) {
	var u models.User
	err := db.QueryRow(
		`SELECT id, username, COALESCE(email, ''), created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
