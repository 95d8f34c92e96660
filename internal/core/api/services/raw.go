package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/emersion/go-message/mail"

	"github.com/enjoys-in/airsend-webmail/internal/core/api/repository"
)

// RawMessage renders the user's copy of id as an RFC 5322 message with
// a single text/plain part.
func (m *mailService) RawMessage(ctx context.Context, user *repository.User, id int64) ([]byte, error) {
	e, err := m.find(ctx, user, id)
	if err != nil {
		return nil, err
	}

	var h mail.Header
	h.SetDate(e.Timestamp)
	h.SetSubject(e.Subject)
	h.SetMessageID(fmt.Sprintf("%d.%d@airsend-webmail", e.ID, e.Timestamp.Unix()))
	h.SetAddressList("From", []*mail.Address{{Address: e.Sender}})
	to := make([]*mail.Address, 0, len(e.Recipients))
	for _, r := range e.Recipients {
		to = append(to, &mail.Address{Address: r})
	}
	h.SetAddressList("To", to)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message writer: %w", err)
	}
	if _, err := io.WriteString(w, e.Body); err != nil {
		return nil, fmt.Errorf("write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close message writer: %w", err)
	}
	return buf.Bytes(), nil
}
