package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/core/ports"
	"github.com/feedbackhub/feedback-client/internal/core/service"
	"github.com/feedbackhub/feedback-client/internal/infrastructure/db/file"
	"github.com/feedbackhub/feedback-client/internal/infrastructure/db/mongo"
	"github.com/feedbackhub/feedback-client/internal/infrastructure/db/redis"
	"github.com/feedbackhub/feedback-client/internal/infrastructure/gateway"
	"github.com/feedbackhub/feedback-client/internal/pkg/config"
)

// pinger is satisfied by every token store and by the gateway.
type pinger interface {
	Ping(ctx context.Context) error
}

type tokenStore interface {
	ports.TokenStore
	pinger
}

// app holds the wired services a command works with.
type app struct {
	cfg           *config.Config
	log           zerolog.Logger
	tokens        tokenStore
	gateway       *gateway.Client
	session       *service.SessionStore
	feedback      *service.FeedbackService
	notifications *service.NotificationService
	closers       []func()
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	tokens, err := a.openTokenStore(ctx)
	if err != nil {
		return nil, err
	}
	a.tokens = tokens

	gw, err := gateway.New(gateway.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.HTTPTimeout,
	}, tokens, log)
	if err != nil {
		a.close()
		if errors.Is(err, domain.ErrMissingBaseURL) {
			return nil, fmt.Errorf("%w: set FEEDBACK_API_URL or pass --api-url", err)
		}
		return nil, err
	}
	a.gateway = gw

	a.session = service.NewSessionStore(gw, tokens, log)
	gw.OnReject(a.session.Invalidate)
	a.feedback = service.NewFeedbackService(gw, a.session, log)
	a.notifications = service.NewNotificationService(gw, a.session, log)
	return a, nil
}

func (a *app) openTokenStore(ctx context.Context) (tokenStore, error) {
	// An empty key selects the store's ports.DefaultTokenKey.
	key := a.cfg.Token.Key

	switch a.cfg.Token.Store {
	case config.StoreRedis:
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return redis.NewTokenStore(client, key), nil

	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      a.cfg.Mongo.URI,
			Database: a.cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		})
		return mongo.NewTokenStore(db, key), nil

	default:
		return file.NewTokenStore(a.cfg.Token.File), nil
	}
}

// requireUser resolves the session and fails when nobody is logged in.
func (a *app) requireUser(ctx context.Context) (*domain.User, error) {
	a.session.Bootstrap(ctx)
	snap := a.session.Snapshot()
	if !snap.Authenticated() {
		return nil, fmt.Errorf("%w: run 'feedbackctl login' first", domain.ErrNotAuthenticated)
	}
	return snap.User, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
