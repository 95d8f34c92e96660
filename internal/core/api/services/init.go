package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/enjoys-in/airsend-webmail/internal/core/api/repository"
	"github.com/enjoys-in/airsend-webmail/internal/interfaces"
	"github.com/enjoys-in/airsend-webmail/internal/quote"
)

var log = logrus.WithField("pkg", "api/services")

// Options carries the settings services need from config.
type Options struct {
	SessionTTL    time.Duration
	PreviewLength int
	Splitter      quote.Splitter
	Now           func() time.Time
}

func (o Options) withDefaults() Options {
	if o.SessionTTL <= 0 {
		o.SessionTTL = 14 * 24 * time.Hour
	}
	if o.PreviewLength <= 0 {
		o.PreviewLength = 120
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func NewServices(repo *repository.Repository, opts Options) *interfaces.Services {
	opts = opts.withDefaults()
	return &interfaces.Services{
		Auth: NewAuthService(repo.Auth, repo.Sessions, opts),
		Mail: NewMailService(repo.Auth, repo.Emails, opts),
	}
}
