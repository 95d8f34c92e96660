package interfaces

import (
	"context"

	"github.com/enjoys-in/airsend-webmail/internal/core/api/repository"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*repository.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*repository.User, error)
}

type MailService interface {
	Mailbox(ctx context.Context, user *repository.User, name string) ([]Message, error)
	Get(ctx context.Context, user *repository.User, id int64) (*MessageDetail, error)
	Update(ctx context.Context, user *repository.User, id int64, patch FlagPatch) (*MessageDetail, error)
	Delete(ctx context.Context, user *repository.User, id int64) error
	Send(ctx context.Context, user *repository.User, req ComposeRequest) ([]int64, error)
	ReplyDraft(ctx context.Context, user *repository.User, id int64) (*Draft, error)
	RawMessage(ctx context.Context, user *repository.User, id int64) ([]byte, error)
}

type Services struct {
	Auth AuthService
	Mail MailService
}
