package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type AuthRepository interface {
	FindOne(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	FindMany(ctx context.Context, emails []string) ([]User, error)
	Create(ctx context.Context, u *User) error
}

type User struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Password  string    `db:"password" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type authRepository struct {
	db *sqlx.DB
}

func NewAuthRepository(db *sqlx.DB) AuthRepository {
	return &authRepository{db: db}
}

const userColumns = `id, email, first_name, last_name, password, created_at`

// FindOne implements AuthRepository.
func (a *authRepository) FindOne(ctx context.Context, email string) (*User, error) {
	var u User
	err := a.db.GetContext(ctx, &u, a.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", email, err)
	}
	return &u, nil
}

// FindByID implements AuthRepository.
func (a *authRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := a.db.GetContext(ctx, &u, a.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &u, nil
}

// FindMany returns the users whose address is in emails. Unknown
// addresses are simply absent from the result.
func (a *authRepository) FindMany(ctx context.Context, emails []string) ([]User, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE email IN (?) ORDER BY email`, emails)
	if err != nil {
		return nil, fmt.Errorf("build user lookup: %w", err)
	}
	var users []User
	if err := a.db.SelectContext(ctx, &users, a.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

// Create inserts u and fills in its ID. A taken address yields ErrDuplicate.
func (a *authRepository) Create(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	err := a.db.QueryRowxContext(ctx, a.db.Rebind(`
		INSERT INTO users (email, first_name, last_name, password, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`),
		u.Email, u.FirstName, u.LastName, u.Password, u.CreatedAt,
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Email, err)
	}
	return nil
}
