package encryption

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordRoundTrip(t *testing.T) {
	stored, err := GeneratePassword("hunter2")
	if err != nil {
		t.Fatalf("GeneratePassword() = %v", err)
	}
	if strings.Count(stored, ":") != 1 {
		t.Fatalf("GeneratePassword() = %q, want salt:hash", stored)
	}

	cases := []struct {
		provided string
		want     bool
	}{
		{"hunter2", true},
		{"hunter3", false},
		{"", false},
	}
	for _, tc := range cases {
		got, err := ValidatePassword(stored, tc.provided)
		if err != nil {
			t.Errorf("ValidatePassword(%q) error = %v", tc.provided, err)
		}
		if got != tc.want {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tc.provided, got, tc.want)
		}
	}
}

func TestGeneratePasswordSalts(t *testing.T) {
	a, _ := GeneratePassword("same")
	b, _ := GeneratePassword("same")
	if a == b {
		t.Errorf("two hashes of the same password are equal: %q", a)
	}
}

func TestValidatePasswordMalformed(t *testing.T) {
	if _, err := ValidatePassword("nocolon", "x"); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("ValidatePassword(nocolon) error = %v, want ErrInvalidHash", err)
	}
	if _, err := ValidatePassword("zz:00", "x"); err == nil {
		t.Error("ValidatePassword(bad hex salt) succeeded, want error")
	}
}
