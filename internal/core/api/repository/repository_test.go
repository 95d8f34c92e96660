package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/enjoys-in/airsend-webmail/config"
	pgp "github.com/enjoys-in/airsend-webmail/internal/crypto"
	"github.com/enjoys-in/airsend-webmail/internal/plugins/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.CreateDBConnection(config.DBConfig{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "mail.db"),
	})
	if err != nil {
		t.Fatalf("CreateDBConnection() = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRepo(t *testing.T, passphrase string) (*Repository, *database.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewRepository(db, pgp.NewBodySealer(passphrase)), db
}

func mustCreateUser(t *testing.T, repo *Repository, email string) User {
	t.Helper()
	u := User{Email: email, Password: "salt:hash"}
	if err := repo.Auth.Create(context.Background(), &u); err != nil {
		t.Fatalf("Create(%s) = %v", email, err)
	}
	return u
}

func TestAuthRepository(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t, "")

	alice := mustCreateUser(t, repo, "alice@example.com")
	if alice.ID == 0 {
		t.Fatal("Create() left ID unset")
	}
	mustCreateUser(t, repo, "bob@example.com")

	dup := User{Email: "alice@example.com", Password: "x"}
	if err := repo.Auth.Create(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Create(duplicate) = %v, want ErrDuplicate", err)
	}

	got, err := repo.Auth.FindOne(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindOne() = %v", err)
	}
	if got.ID != alice.ID || got.Password != "salt:hash" {
		t.Errorf("FindOne() = %+v, want id %d", got, alice.ID)
	}
	if _, err := repo.Auth.FindOne(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindOne(nobody) = %v, want ErrNotFound", err)
	}
	if _, err := repo.Auth.FindByID(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID(9999) = %v, want ErrNotFound", err)
	}

	many, err := repo.Auth.FindMany(ctx, []string{"bob@example.com", "alice@example.com", "ghost@example.com"})
	if err != nil {
		t.Fatalf("FindMany() = %v", err)
	}
	var emails []string
	for _, u := range many {
		emails = append(emails, u.Email)
	}
	if diff := cmp.Diff([]string{"alice@example.com", "bob@example.com"}, emails); diff != "" {
		t.Errorf("FindMany() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMailbox(t *testing.T) {
	cases := []struct {
		in   string
		want Mailbox
		ok   bool
	}{
		{"inbox", Inbox, true},
		{"INBOX", Inbox, true},
		{"sent", Sent, true},
		{"archive", Archive, true},
		{"archived", Archive, true},
		{"trash", Trash, true},
		{"spam", "spam", false},
	}
	for _, tc := range cases {
		got, ok := ParseMailbox(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseMailbox(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func ids(emails []Email) []int64 {
	out := []int64{}
	for _, e := range emails {
		out = append(out, e.ID)
	}
	return out
}

func TestEmailRepositoryMailboxes(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t, "")
	alice := mustCreateUser(t, repo, "alice@example.com")
	bob := mustCreateUser(t, repo, "bob@example.com")

	copies, err := repo.Emails.CreateCopies(ctx, NewEmail{
		Sender:     alice.Email,
		Subject:    "Lunch",
		Body:       "Noon?",
		Timestamp:  time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC),
		Recipients: []User{bob},
	}, []User{alice, bob})
	if err != nil {
		t.Fatalf("CreateCopies() = %v", err)
	}
	if len(copies) != 2 {
		t.Fatalf("CreateCopies() returned %d ids, want 2", len(copies))
	}
	aliceCopy, bobCopy := copies[0], copies[1]

	check := func(owner User, mb Mailbox, want []int64) {
		t.Helper()
		got, err := repo.Emails.ListMailbox(ctx, owner.ID, mb)
		if err != nil {
			t.Fatalf("ListMailbox(%s, %s) = %v", owner.Email, mb, err)
		}
		if diff := cmp.Diff(want, ids(got)); diff != "" {
			t.Errorf("ListMailbox(%s, %s) mismatch (-want +got):\n%s", owner.Email, mb, diff)
		}
	}
	check(bob, Inbox, []int64{bobCopy})
	check(alice, Inbox, []int64{})
	check(alice, Sent, []int64{aliceCopy})
	check(bob, Sent, []int64{})

	e, err := repo.Emails.FindOne(ctx, bob.ID, bobCopy)
	if err != nil {
		t.Fatalf("FindOne() = %v", err)
	}
	want := Email{
		ID:         bobCopy,
		UserID:     bob.ID,
		Owner:      bob.Email,
		Sender:     alice.Email,
		Subject:    "Lunch",
		Body:       "Noon?",
		Timestamp:  time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC),
		Recipients: []string{"bob@example.com"},
	}
	if diff := cmp.Diff(want, *e, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("FindOne() mismatch (-want +got):\n%s", diff)
	}

	sent, err := repo.Emails.FindOne(ctx, alice.ID, aliceCopy)
	if err != nil {
		t.Fatalf("FindOne(alice) = %v", err)
	}
	if !sent.Read {
		t.Error("sender's copy is unread, want read")
	}

	if _, err := repo.Emails.FindOne(ctx, alice.ID, bobCopy); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindOne(other owner) = %v, want ErrNotFound", err)
	}

	e.Archived = true
	if err := repo.Emails.UpdateFlags(ctx, e); err != nil {
		t.Fatalf("UpdateFlags(archive) = %v", err)
	}
	check(bob, Inbox, []int64{})
	check(bob, Archive, []int64{bobCopy})

	e.Deleted = true
	e.PreviousMailbox = sql.NullString{String: string(Archive), Valid: true}
	if err := repo.Emails.UpdateFlags(ctx, e); err != nil {
		t.Fatalf("UpdateFlags(delete) = %v", err)
	}
	check(bob, Archive, []int64{})
	check(bob, Trash, []int64{bobCopy})

	trashed, _ := repo.Emails.FindOne(ctx, bob.ID, bobCopy)
	if trashed.PreviousMailbox.String != "archive" {
		t.Errorf("PreviousMailbox = %+v, want archive", trashed.PreviousMailbox)
	}

	if err := repo.Emails.Delete(ctx, bob.ID, bobCopy); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if err := repo.Emails.Delete(ctx, bob.ID, bobCopy); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}
	check(bob, Trash, []int64{})
	check(alice, Sent, []int64{aliceCopy})
}

func TestEmailRepositoryOrdering(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t, "")
	alice := mustCreateUser(t, repo, "alice@example.com")
	bob := mustCreateUser(t, repo, "bob@example.com")

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var want []int64
	for i := 0; i < 3; i++ {
		copies, err := repo.Emails.CreateCopies(ctx, NewEmail{
			Sender:     alice.Email,
			Subject:    "n",
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			Recipients: []User{bob},
		}, []User{bob})
		if err != nil {
			t.Fatalf("CreateCopies() = %v", err)
		}
		want = append([]int64{copies[0]}, want...)
	}

	got, err := repo.Emails.ListMailbox(ctx, bob.ID, Inbox)
	if err != nil {
		t.Fatalf("ListMailbox() = %v", err)
	}
	if diff := cmp.Diff(want, ids(got)); diff != "" {
		t.Errorf("inbox order mismatch (-want +got):\n%s", diff)
	}
}

func TestEmailRepositorySealedBodies(t *testing.T) {
	ctx := context.Background()
	repo, db := newTestRepo(t, "correct horse")
	alice := mustCreateUser(t, repo, "alice@example.com")

	copies, err := repo.Emails.CreateCopies(ctx, NewEmail{
		Sender:     alice.Email,
		Body:       "top secret",
		Recipients: []User{alice},
	}, []User{alice})
	if err != nil {
		t.Fatalf("CreateCopies() = %v", err)
	}

	var stored string
	if err := db.Conn.Get(&stored, "SELECT body FROM emails WHERE id = ?", copies[0]); err != nil {
		t.Fatalf("select body: %v", err)
	}
	if !pgp.IsSealed(stored) {
		t.Errorf("stored body = %q, want an armored message", stored)
	}

	e, err := repo.Emails.FindOne(ctx, alice.ID, copies[0])
	if err != nil {
		t.Fatalf("FindOne() = %v", err)
	}
	if e.Body != "top secret" || !e.Sealed {
		t.Errorf("FindOne() = body %q, sealed %v; want %q, true", e.Body, e.Sealed, "top secret")
	}
}

func TestEmailRepositoryArmoredPlaintext(t *testing.T) {
	const armored = "-----BEGIN PGP MESSAGE-----\nhQEMA1234\n-----END PGP MESSAGE-----"
	for _, passphrase := range []string{"", "correct horse"} {
		ctx := context.Background()
		repo, db := newTestRepo(t, "")
		alice := mustCreateUser(t, repo, "alice@example.com")
		bob := mustCreateUser(t, repo, "bob@example.com")

		for _, body := range []string{"a normal message", armored} {
			_, err := repo.Emails.CreateCopies(ctx, NewEmail{
				Sender:     alice.Email,
				Body:       body,
				Recipients: []User{bob},
			}, []User{bob})
			if err != nil {
				t.Fatalf("CreateCopies() = %v", err)
			}
		}

		// Reading back through a sealer must not try to open rows that
		// were stored in the clear.
		reader := NewEmailRepository(db.Conn, pgp.NewBodySealer(passphrase))
		inbox, err := reader.ListMailbox(ctx, bob.ID, Inbox)
		if err != nil {
			t.Fatalf("passphrase %q: ListMailbox() = %v", passphrase, err)
		}
		var bodies []string
		for _, e := range inbox {
			bodies = append(bodies, e.Body)
		}
		if diff := cmp.Diff([]string{armored, "a normal message"}, bodies, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
			t.Errorf("passphrase %q: inbox bodies mismatch (-want +got):\n%s", passphrase, diff)
		}
	}
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t, "")
	alice := mustCreateUser(t, repo, "alice@example.com")

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	live := &Session{Token: "live", UserID: alice.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := &Session{Token: "stale", UserID: alice.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	for _, s := range []*Session{live, stale} {
		if err := repo.Sessions.Create(ctx, s); err != nil {
			t.Fatalf("Create(%s) = %v", s.Token, err)
		}
	}

	got, err := repo.Sessions.Find(ctx, "live")
	if err != nil {
		t.Fatalf("Find(live) = %v", err)
	}
	if got.UserID != alice.ID || !got.ExpiresAt.Equal(live.ExpiresAt) {
		t.Errorf("Find(live) = %+v", got)
	}

	n, err := repo.Sessions.DeleteExpired(ctx, now)
	if err != nil || n != 1 {
		t.Errorf("DeleteExpired() = %d, %v; want 1, nil", n, err)
	}
	if _, err := repo.Sessions.Find(ctx, "stale"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(stale) = %v, want ErrNotFound", err)
	}

	if err := repo.Sessions.Delete(ctx, "live"); err != nil {
		t.Fatalf("Delete(live) = %v", err)
	}
	if _, err := repo.Sessions.Find(ctx, "live"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(live) after Delete = %v, want ErrNotFound", err)
	}
}
