package pgp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ProtonMail/gopenpgp/v3/crypto"
)

const armorHeader = "-----BEGIN PGP MESSAGE-----"

var errNoPassphrase = errors.New("sealed body found but no BODY_PASSPHRASE configured")

// BodySealer encrypts message bodies at rest with a shared passphrase.
// A sealer with an empty passphrase stores bodies as they are.
type BodySealer struct {
	passphrase []byte
	pgp        *crypto.PGPHandle
}

func NewBodySealer(passphrase string) *BodySealer {
	s := &BodySealer{pgp: crypto.PGP()}
	if passphrase != "" {
		s.passphrase = []byte(passphrase)
	}
	return s
}

// Enabled reports whether Seal encrypts.
func (s *BodySealer) Enabled() bool {
	return s != nil && len(s.passphrase) > 0
}

// IsSealed reports whether body looks like an armored OpenPGP message.
func IsSealed(body string) bool {
	return strings.HasPrefix(strings.TrimSpace(body), armorHeader)
}

// Seal returns body as an armored, password-encrypted OpenPGP message.
func (s *BodySealer) Seal(body string) (string, error) {
	if !s.Enabled() {
		return body, nil
	}
	encHandle, err := s.pgp.Encryption().Password(s.passphrase).New()
	if err != nil {
		return "", fmt.Errorf("pgp encryption handle: %w", err)
	}
	msg, err := encHandle.Encrypt([]byte(body))
	if err != nil {
		return "", fmt.Errorf("pgp encrypt: %w", err)
	}
	armored, err := msg.Armor()
	if err != nil {
		return "", fmt.Errorf("pgp armor: %w", err)
	}
	return armored, nil
}

// Open reverses Seal. Callers decide from their own records whether a
// body was sealed; Open does not guess from the content.
func (s *BodySealer) Open(stored string) (string, error) {
	if !s.Enabled() {
		return "", errNoPassphrase
	}
	decHandle, err := s.pgp.Decryption().Password(s.passphrase).New()
	if err != nil {
		return "", fmt.Errorf("pgp decryption handle: %w", err)
	}
	decrypted, err := decHandle.Decrypt([]byte(stored), crypto.Armor)
	if err != nil {
		return "", fmt.Errorf("pgp decrypt: %w", err)
	}
	return string(decrypted.Bytes()), nil
}
