package handlers

import (
	"github.com/jmoiron/sqlx"

	"agrimarket/internal/auth"
	"agrimarket/internal/blob"
	"agrimarket/internal/config"
	"agrimarket/internal/mail"
	"agrimarket/internal/ml"
	"agrimarket/internal/queue"
	"agrimarket/internal/repos"
	"agrimarket/internal/services"
)

type Deps struct {
	Tokens *auth.Tokens

	AuthHandler       *AuthHandler
	ProductHandler    *ProductHandler
	OrderHandler      *OrderHandler
	AdminHandler      *AdminHandler
	AnalyticsHandler  *AnalyticsHandler
	PredictionHandler *PredictionHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, blobs blob.Store) *Deps {
	userRepo := repos.NewUserRepo(db)
	productRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	activityRepo := repos.NewActivityRepo(db)
	statsRepo := repos.NewAnalyticsRepo(db)

	var publisher *queue.Publisher
	if cfg.AMQPURL != "" {
		publisher = queue.NewPublisher(cfg.AMQPURL)
	}
	recorder := &services.ActivityRecorder{Repo: activityRepo, Publisher: publisher}

	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = &mail.SMTPMailer{
			Host: cfg.SMTPHost, Port: cfg.SMTPPort,
			User: cfg.SMTPUser, Pass: cfg.SMTPPass, From: cfg.SMTPFrom,
		}
	}

	tokens := auth.NewTokens(cfg.JWTSecret)
	authSvc := &services.AuthService{Users: userRepo, Mailer: mailer, AppURL: cfg.AppURL}
	catalogSvc := services.NewCatalogService(productRepo, blobs)
	analyticsSvc := services.NewAnalyticsService(statsRepo)

	return &Deps{
		Tokens: tokens,
		AuthHandler: &AuthHandler{
			Auth: authSvc, Tokens: tokens, Activity: recorder, Secure: cfg.Production(),
		},
		ProductHandler:    &ProductHandler{Catalog: catalogSvc, Activity: recorder},
		OrderHandler:      &OrderHandler{Orders: orderRepo},
		AdminHandler:      &AdminHandler{Users: userRepo, Products: productRepo, Orders: orderRepo, Activity: recorder},
		AnalyticsHandler:  &AnalyticsHandler{Analytics: analyticsSvc},
		PredictionHandler: &PredictionHandler{ML: ml.NewClient(cfg.MLServiceURL)},
	}
}
