package interfaces

import (
	"time"

	"github.com/enjoys-in/airsend-webmail/internal/core/api/repository"
)

// Message is the JSON shape of one mailbox entry.
type Message struct {
	ID              int64    `json:"id"`
	User            string   `json:"user"`
	Sender          string   `json:"sender"`
	SenderEmail     *string  `json:"sender_email"`
	Recipients      []string `json:"recipients"`
	Subject         string   `json:"subject"`
	Body            string   `json:"body"`
	Timestamp       string   `json:"timestamp"`
	Read            bool     `json:"read"`
	Archived        bool     `json:"archived"`
	Deleted         bool     `json:"deleted"`
	PreviousMailbox *string  `json:"previous_mailbox"`
	IsOwner         bool     `json:"is_owner"`
	Preview         string   `json:"preview"`
}

// MessageDetail adds the split reply and quoted thread to a Message.
type MessageDetail struct {
	Message
	ReplyText   string   `json:"reply_text"`
	QuotedLines []string `json:"quoted_lines"`
}

// FlagPatch is the body of PUT /emails/{id}. Either the booleans or the
// older Action form may be used.
type FlagPatch struct {
	Read     *bool  `json:"read,omitempty"`
	Archived *bool  `json:"archived,omitempty"`
	Deleted  *bool  `json:"deleted,omitempty"`
	Action   string `json:"action,omitempty"`
}

type ComposeRequest struct {
	Recipients string `json:"recipients"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

// Draft prefills the compose form for a reply.
type Draft struct {
	Recipients string `json:"recipients"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Confirmation string `json:"confirmation"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      *repository.User `json:"user"`
}
