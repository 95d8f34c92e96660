package repository

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	pgp "github.com/enjoys-in/airsend-webmail/internal/crypto"
	"github.com/enjoys-in/airsend-webmail/internal/plugins/database"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type Repository struct {
	Auth     AuthRepository
	Sessions SessionRepository
	Emails   EmailRepository
}

func NewRepository(db *database.DB, sealer *pgp.BodySealer) *Repository {
	return &Repository{
		Auth:     NewAuthRepository(db.Conn),
		Sessions: NewSessionRepository(db.Conn),
		Emails:   NewEmailRepository(db.Conn, sealer),
	}
}

// isUniqueViolation reports whether err is a unique constraint failure
// from either supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
