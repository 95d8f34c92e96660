package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	pgp "github.com/enjoys-in/airsend-webmail/internal/crypto"
)

type Mailbox string

const (
	Inbox   Mailbox = "inbox"
	Sent    Mailbox = "sent"
	Archive Mailbox = "archive"
	Trash   Mailbox = "trash"
)

// mailboxFilters holds the WHERE fragment selecting each mailbox out of
// an owner's copies. "e" is the emails row, "u" its owner.
var mailboxFilters = map[Mailbox]string{
	Inbox: `EXISTS (SELECT 1 FROM email_recipients r WHERE r.email_id = e.id AND r.user_id = e.user_id)
		AND NOT e.archived AND NOT e.deleted`,
	Sent:    `e.sender = u.email AND NOT e.deleted`,
	Archive: `e.archived AND NOT e.deleted`,
	Trash:   `e.deleted`,
}

// ParseMailbox maps a case-insensitive mailbox name onto a Mailbox.
func ParseMailbox(name string) (Mailbox, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "archived" {
		name = string(Archive)
	}
	mb := Mailbox(name)
	_, ok := mailboxFilters[mb]
	return mb, ok
}

// Email is one user's copy of a message.
type Email struct {
	ID              int64          `db:"id"`
	UserID          int64          `db:"user_id"`
	Owner           string         `db:"owner"`
	Sender          string         `db:"sender"`
	Subject         string         `db:"subject"`
	Body            string         `db:"body"`
	Sealed          bool           `db:"sealed"`
	Timestamp       time.Time      `db:"timestamp"`
	Read            bool           `db:"read"`
	Archived        bool           `db:"archived"`
	Deleted         bool           `db:"deleted"`
	PreviousMailbox sql.NullString `db:"previous_mailbox"`
	Recipients      []string       `db:"-"`
}

// NewEmail describes a message about to be sent.
type NewEmail struct {
	Sender     string
	Subject    string
	Body       string
	Timestamp  time.Time
	Recipients []User
}

type EmailRepository interface {
	ListMailbox(ctx context.Context, ownerID int64, mb Mailbox) ([]Email, error)
	FindOne(ctx context.Context, ownerID, id int64) (*Email, error)
	UpdateFlags(ctx context.Context, e *Email) error
	Delete(ctx context.Context, ownerID, id int64) error
	CreateCopies(ctx context.Context, msg NewEmail, owners []User) ([]int64, error)
}

type emailRepository struct {
	db     *sqlx.DB
	sealer *pgp.BodySealer
}

func NewEmailRepository(db *sqlx.DB, sealer *pgp.BodySealer) EmailRepository {
	return &emailRepository{db: db, sealer: sealer}
}

const emailSelect = `SELECT e.id, e.user_id, u.email AS owner, e.sender, e.subject, e.body, e.sealed,
	e.timestamp, e.read, e.archived, e.deleted, e.previous_mailbox
	FROM emails e JOIN users u ON u.id = e.user_id`

// ListMailbox returns the owner's copies in mb, newest first.
func (r *emailRepository) ListMailbox(ctx context.Context, ownerID int64, mb Mailbox) ([]Email, error) {
	filter, ok := mailboxFilters[mb]
	if !ok {
		return nil, fmt.Errorf("unknown mailbox %q", mb)
	}
	query := emailSelect + ` WHERE e.user_id = ? AND ` + filter + ` ORDER BY e.timestamp DESC, e.id DESC`

	emails := []Email{}
	if err := r.db.SelectContext(ctx, &emails, r.db.Rebind(query), ownerID); err != nil {
		return nil, fmt.Errorf("list %s: %w", mb, err)
	}
	if err := r.finish(ctx, emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// FindOne returns the owner's copy with the given id, or ErrNotFound.
func (r *emailRepository) FindOne(ctx context.Context, ownerID, id int64) (*Email, error) {
	var e Email
	err := r.db.GetContext(ctx, &e, r.db.Rebind(emailSelect+` WHERE e.id = ? AND e.user_id = ?`), id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find email %d: %w", id, err)
	}
	emails := []Email{e}
	if err := r.finish(ctx, emails); err != nil {
		return nil, err
	}
	return &emails[0], nil
}

// finish opens bodies stored sealed and attaches recipient addresses.
// Rows written without a sealer are returned as stored, whatever they
// contain.
func (r *emailRepository) finish(ctx context.Context, emails []Email) error {
	if len(emails) == 0 {
		return nil
	}
	ids := make([]int64, len(emails))
	index := make(map[int64]int, len(emails))
	for i := range emails {
		if emails[i].Sealed {
			body, err := r.sealer.Open(emails[i].Body)
			if err != nil {
				return fmt.Errorf("open body of email %d: %w", emails[i].ID, err)
			}
			emails[i].Body = body
		}
		emails[i].Recipients = []string{}
		ids[i] = emails[i].ID
		index[emails[i].ID] = i
	}

	query, args, err := sqlx.In(`SELECT r.email_id, u.email FROM email_recipients r
		JOIN users u ON u.id = r.user_id
		WHERE r.email_id IN (?) ORDER BY r.email_id, u.email`, ids)
	if err != nil {
		return fmt.Errorf("build recipient lookup: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			emailID int64
			address string
		)
		if err := rows.Scan(&emailID, &address); err != nil {
			return fmt.Errorf("scan recipient: %w", err)
		}
		i := index[emailID]
		emails[i].Recipients = append(emails[i].Recipients, address)
	}
	return rows.Err()
}

// UpdateFlags persists the read, archived, deleted and previous_mailbox
// fields of e.
func (r *emailRepository) UpdateFlags(ctx context.Context, e *Email) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE emails SET read = ?, archived = ?, deleted = ?, previous_mailbox = ?
		WHERE id = ? AND user_id = ?`),
		e.Read, e.Archived, e.Deleted, e.PreviousMailbox, e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update email %d: %w", e.ID, err)
	}
	return expectOneRow(res)
}

// Delete permanently removes one copy. Other participants keep theirs.
func (r *emailRepository) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM emails WHERE id = ? AND user_id = ?`), id, ownerID)
	if err != nil {
		return fmt.Errorf("delete email %d: %w", id, err)
	}
	return expectOneRow(res)
}

// CreateCopies stores one copy of msg per owner in a single
// transaction and returns the new ids in owner order. The sender's own
// copy starts out read.
func (r *emailRepository) CreateCopies(ctx context.Context, msg NewEmail, owners []User) ([]int64, error) {
	body, err := r.sealer.Seal(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("seal body: %w", err)
	}
	sealed := r.sealer.Enabled()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("db begin transaction failed: %w", err)
	}
	defer tx.Rollback()

	insertEmail := tx.Rebind(`
		INSERT INTO emails (user_id, sender, subject, body, sealed, timestamp, read, archived, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, FALSE, FALSE) RETURNING id`)
	insertRecipient := tx.Rebind(`INSERT INTO email_recipients (email_id, user_id) VALUES (?, ?)`)

	ids := make([]int64, 0, len(owners))
	for _, owner := range owners {
		var id int64
		read := strings.EqualFold(owner.Email, msg.Sender)
		err := tx.QueryRowxContext(ctx, insertEmail,
			owner.ID, msg.Sender, msg.Subject, body, sealed, msg.Timestamp, read).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert copy for %s: %w", owner.Email, err)
		}
		for _, rcpt := range msg.Recipients {
			if _, err := tx.ExecContext(ctx, insertRecipient, id, rcpt.ID); err != nil {
				return nil, fmt.Errorf("insert recipient %s: %w", rcpt.Email, err)
			}
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("transaction commit failed: %w", err)
	}
	return ids, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
