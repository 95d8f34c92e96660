package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/enjoys-in/airsend-webmail/internal/interfaces"
)

var log = logrus.WithField("pkg", "api/handlers")

type Handlers struct {
	AuthHandler *AuthHandler
	MailHandler *MailHandler
}

func NewHandlers(svc *interfaces.Services) *Handlers {
	return &Handlers{
		AuthHandler: NewAuthHandler(svc.Auth),
		MailHandler: NewMailHandler(svc.Mail),
	}
}
