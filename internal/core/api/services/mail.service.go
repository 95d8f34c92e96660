package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bradenaw/juniper/xslices"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"

	"github.com/enjoys-in/airsend-webmail/internal/core/api/repository"
	"github.com/enjoys-in/airsend-webmail/internal/interfaces"
	"github.com/enjoys-in/airsend-webmail/internal/quote"
)

const maxSubjectLength = 255

type mailService struct {
	users  repository.AuthRepository
	emails repository.EmailRepository
	opts   Options
}

// NewMailService returns the interfaces.MailService reading and writing
// through the given repositories.
func NewMailService(users repository.AuthRepository, emails repository.EmailRepository, opts Options) interfaces.MailService {
	return &mailService{users: users, emails: emails, opts: opts.withDefaults()}
}

func (m *mailService) Mailbox(ctx context.Context, user *repository.User, name string) ([]interfaces.Message, error) {
	mb, ok := repository.ParseMailbox(name)
	if !ok {
		return nil, ErrUnknownMailbox
	}
	emails, err := m.emails.ListMailbox(ctx, user.ID, mb)
	if err != nil {
		return nil, err
	}
	return xslices.Map(emails, func(e repository.Email) interfaces.Message {
		return m.message(user, &e)
	}), nil
}

func (m *mailService) Get(ctx context.Context, user *repository.User, id int64) (*interfaces.MessageDetail, error) {
	e, err := m.find(ctx, user, id)
	if err != nil {
		return nil, err
	}
	return m.detail(user, e), nil
}

// Update applies patch to the user's copy. Moving a copy to trash
// remembers where it came from; restoring it forgets that again.
func (m *mailService) Update(ctx context.Context, user *repository.User, id int64, patch interfaces.FlagPatch) (*interfaces.MessageDetail, error) {
	patch, err := expandAction(patch)
	if err != nil {
		return nil, err
	}
	if patch.Read == nil && patch.Archived == nil && patch.Deleted == nil {
		return nil, invalid("Request must set read, archived or deleted.")
	}

	e, err := m.find(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if patch.Deleted != nil && *patch.Deleted != e.Deleted {
		if *patch.Deleted {
			e.PreviousMailbox = sql.NullString{String: string(currentMailbox(e)), Valid: true}
		} else {
			e.PreviousMailbox = sql.NullString{}
		}
		e.Deleted = *patch.Deleted
	}
	if patch.Read != nil {
		e.Read = *patch.Read
	}
	if patch.Archived != nil {
		e.Archived = *patch.Archived
	}

	if err := m.emails.UpdateFlags(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"user": user.Email, "id": e.ID, "read": e.Read, "archived": e.Archived, "deleted": e.Deleted,
	}).Debug("Email flags updated")
	return m.detail(user, e), nil
}

// expandAction rewrites the older {"action": ...} form into flag fields.
func expandAction(p interfaces.FlagPatch) (interfaces.FlagPatch, error) {
	yes, no := true, false
	switch strings.ToLower(strings.TrimSpace(p.Action)) {
	case "":
	case "archive":
		p.Archived = &yes
	case "unarchive":
		p.Archived = &no
	case "delete":
		p.Deleted = &yes
	case "restore":
		p.Deleted = &no
	case "mark_read":
		p.Read = &yes
	case "mark_unread":
		p.Read = &no
	default:
		return p, invalid("Unknown action")
	}
	return p, nil
}

// currentMailbox names the mailbox e is shown in before it moves to trash.
func currentMailbox(e *repository.Email) repository.Mailbox {
	switch {
	case e.Deleted:
		return repository.Trash
	case e.Archived:
		return repository.Archive
	case slices.Contains(e.Recipients, e.Owner):
		return repository.Inbox
	case strings.EqualFold(e.Sender, e.Owner):
		return repository.Sent
	}
	return repository.Inbox
}

func (m *mailService) Delete(ctx context.Context, user *repository.User, id int64) error {
	err := m.emails.Delete(ctx, user.ID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err == nil {
		log.WithFields(logrus.Fields{"user": user.Email, "id": id}).Info("Email permanently deleted")
	}
	return err
}

// ParseRecipients splits a comma separated address list, dropping
// blanks and duplicates. Addresses are lower-cased and sorted.
func ParseRecipients(list string) []string {
	parts := xslices.Map(strings.Split(list, ","), func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
	set := make(map[string]struct{}, len(parts))
	for _, p := range xslices.Filter(parts, func(s string) bool { return s != "" }) {
		set[p] = struct{}{}
	}
	keys := maps.Keys(set)
	slices.Sort(keys)
	return keys
}

// Send stores a copy of the message for the sender and every recipient.
// It returns the ids of the new copies, the sender's first.
func (m *mailService) Send(ctx context.Context, user *repository.User, req interfaces.ComposeRequest) ([]int64, error) {
	addresses := ParseRecipients(req.Recipients)
	if len(addresses) == 0 {
		return nil, invalid("At least one recipient required.")
	}
	subject := strings.TrimSpace(req.Subject)
	if len([]rune(subject)) > maxSubjectLength {
		return nil, invalid(fmt.Sprintf("Subject must be at most %d characters.", maxSubjectLength))
	}

	recipients, err := m.users.FindMany(ctx, addresses)
	if err != nil {
		return nil, err
	}
	found := xslices.Map(recipients, func(u repository.User) string { return u.Email })
	for _, addr := range addresses {
		if !slices.Contains(found, addr) {
			return nil, invalid(fmt.Sprintf("User with email %s does not exist.", addr))
		}
	}

	owners := []repository.User{*user}
	for _, r := range recipients {
		if r.ID != user.ID {
			owners = append(owners, r)
		}
	}

	ids, err := m.emails.CreateCopies(ctx, repository.NewEmail{
		Sender:     user.Email,
		Subject:    subject,
		Body:       req.Body,
		Timestamp:  m.opts.Now().UTC(),
		Recipients: recipients,
	}, owners)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"from": user.Email, "to": found, "copies": len(ids)}).Info("Email sent")
	return ids, nil
}

// ReplyDraft prefills a reply to the user's copy of id, quoting the
// original below the cursor position.
func (m *mailService) ReplyDraft(ctx context.Context, user *repository.User, id int64) (*interfaces.Draft, error) {
	e, err := m.find(ctx, user, id)
	if err != nil {
		return nil, err
	}
	to := e.Sender
	if strings.EqualFold(e.Sender, user.Email) {
		to = strings.Join(e.Recipients, ", ")
	}
	return &interfaces.Draft{
		Recipients: to,
		Subject:    replySubject(e.Subject),
		Body:       quote.BuildQuotedReply(e.Sender, e.Timestamp.UTC().Format(time.RFC3339), e.Body),
	}, nil
}

func replySubject(subject string) string {
	subject = strings.TrimSpace(subject)
	if len(subject) >= 3 && strings.EqualFold(subject[:3], "re:") {
		return subject
	}
	if subject == "" {
		return "Re:"
	}
	return "Re: " + subject
}

func (m *mailService) find(ctx context.Context, user *repository.User, id int64) (*repository.Email, error) {
	e, err := m.emails.FindOne(ctx, user.ID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return e, err
}

func (m *mailService) message(user *repository.User, e *repository.Email) interfaces.Message {
	msg := interfaces.Message{
		ID:         e.ID,
		User:       e.Owner,
		Sender:     e.Sender,
		Recipients: e.Recipients,
		Subject:    e.Subject,
		Body:       e.Body,
		Timestamp:  e.Timestamp.UTC().Format(time.RFC3339),
		Read:       e.Read,
		Archived:   e.Archived,
		Deleted:    e.Deleted,
		IsOwner:    strings.EqualFold(user.Email, e.Owner),
		Preview:    m.opts.Splitter.Preview(e.Body, m.opts.PreviewLength),
	}
	if strings.Contains(e.Sender, "@") {
		sender := e.Sender
		msg.SenderEmail = &sender
	}
	if e.PreviousMailbox.Valid {
		prev := e.PreviousMailbox.String
		msg.PreviousMailbox = &prev
	}
	return msg
}

func (m *mailService) detail(user *repository.User, e *repository.Email) *interfaces.MessageDetail {
	split := m.opts.Splitter.Split(e.Body)
	return &interfaces.MessageDetail{
		Message:     m.message(user, e),
		ReplyText:   split.ReplyText,
		QuotedLines: split.QuotedLines,
	}
}
