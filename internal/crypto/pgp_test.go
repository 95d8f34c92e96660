package pgp

import "testing"

func TestBodySealerRoundTrip(t *testing.T) {
	s := NewBodySealer("correct horse")
	body := "Hello\n\nOn Jan 1, 2024, 3:00 PM Alice wrote:\n> hi"

	sealed, err := s.Seal(body)
	if err != nil {
		t.Fatalf("Seal() = %v", err)
	}
	if !IsSealed(sealed) {
		t.Fatalf("Seal() = %q, want armored message", sealed)
	}

	got, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	if got != body {
		t.Errorf("Open(Seal(body)) = %q, want %q", got, body)
	}
}

func TestBodySealerDisabled(t *testing.T) {
	s := NewBodySealer("")
	if s.Enabled() {
		t.Fatal("Enabled() = true with empty passphrase")
	}
	sealed, err := s.Seal("plain")
	if err != nil || sealed != "plain" {
		t.Errorf("Seal(plain) = %q, %v; want plain, nil", sealed, err)
	}
}

func TestBodySealerOpenRejectsPlaintext(t *testing.T) {
	s := NewBodySealer("pw")
	if got, err := s.Open("never sealed"); err == nil {
		t.Errorf("Open(plaintext) = %q, nil; want error", got)
	}
}

func TestBodySealerWrongPassphrase(t *testing.T) {
	sealed, err := NewBodySealer("one").Seal("secret")
	if err != nil {
		t.Fatalf("Seal() = %v", err)
	}
	if _, err := NewBodySealer("two").Open(sealed); err == nil {
		t.Error("Open() with the wrong passphrase succeeded, want error")
	}
	if _, err := NewBodySealer("").Open(sealed); err == nil {
		t.Error("Open() without a passphrase succeeded, want error")
	}
}
