package wireframe

import (
	"github.com/sirupsen/logrus"

	"github.com/enjoys-in/airsend-webmail/config"
	"github.com/enjoys-in/airsend-webmail/internal/core/api/handlers"
	"github.com/enjoys-in/airsend-webmail/internal/core/api/repository"
	"github.com/enjoys-in/airsend-webmail/internal/core/api/services"
	pgp "github.com/enjoys-in/airsend-webmail/internal/crypto"
	"github.com/enjoys-in/airsend-webmail/internal/interfaces"
	"github.com/enjoys-in/airsend-webmail/internal/plugins/database"
	"github.com/enjoys-in/airsend-webmail/internal/quote"
)

type AppWireframe struct {
	Config     config.Config
	DB         *database.DB
	Repository *repository.Repository
	Service    *interfaces.Services
	Handler    *handlers.Handlers
}

// InitWireframe loads the config and builds the application. If the DB
// connection fails, it logs an error and exits.
func InitWireframe() *AppWireframe {
	cfg := config.GetConfig()
	app, err := NewWireframe(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("❌ Failed to connect DB")
	}
	return app
}

// NewWireframe creates a DB connection, a repository, the services and
// the handlers for cfg.
func NewWireframe(cfg config.Config) (*AppWireframe, error) {
	db, err := database.CreateDBConnection(cfg.DB)
	if err != nil {
		return nil, err
	}

	sealer := pgp.NewBodySealer(cfg.Mail.BodyPassphrase)
	if sealer.Enabled() {
		logrus.Info("🔒 Message bodies are sealed at rest")
	}

	repo := repository.NewRepository(db, sealer)
	svc := services.NewServices(repo, services.Options{
		SessionTTL:    cfg.Mail.SessionTTL,
		PreviewLength: cfg.Mail.PreviewLength,
		Splitter:      quote.Splitter{AcceptSeparator: cfg.Mail.QuoteAcceptSeparator},
	})
	h := handlers.NewHandlers(svc)
	return &AppWireframe{
		Config:     cfg,
		DB:         db,
		Repository: repo,
		Service:    svc,
		Handler:    h,
	}, nil
}
