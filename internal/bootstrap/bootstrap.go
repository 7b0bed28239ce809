package bootstrap

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/backend"
	"github.com/jrsteele09/go-mindcare-client/internal/config"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/jrsteele09/go-mindcare-client/sessions/filerepo"
	"github.com/jrsteele09/go-mindcare-client/sessions/redisrepo"
	fakesessionrepo "github.com/jrsteele09/go-mindcare-client/sessions/repofakes"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// App is a session store together with the backend client that sends the
// store's token.
type App struct {
	Store   *auth.SessionStore
	Backend *backend.Client
	Repo    sessions.Repo

	closeOnce sync.Once
	closeErr  error
}

// Close stops the store and then releases the session storage, such as the
// redis connection pool. Later calls return the first result.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.Store.Close()
		if closer, ok := a.Repo.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				a.closeErr = errors.Wrap(err, "[App.Close] session storage")
			}
		}
	})
	return a.closeErr
}

// OpenSessionRepo picks the session storage named by SESSION_STORE
func OpenSessionRepo(ctx context.Context, cfg config.StorageConfig) (sessions.Repo, error) {
	switch kind := strings.ToLower(cfg.GetSessionStore()); kind {
	case StoreMemory:
		log.Warn().Msg("Session is kept in memory and will not survive a restart")
		return fakesessionrepo.NewFakeSessionRepo(), nil
	case StoreFile, "":
		var options []filerepo.Option
		if secret := cfg.GetSessionSecret(); secret != "" {
			options = append(options, filerepo.WithSecret(secret))
		}
		repo, err := filerepo.New(cfg.GetSessionFile(), options...)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case StoreRedis:
		repo, err := redisrepo.NewFromAddr(ctx, cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisDB(), cfg.GetSessionKey())
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, errors.Errorf("[bootstrap.OpenSessionRepo] unknown session store %q", kind)
	}
}

// StoreOptions turns the session settings into store options. The verifier
// is only added when VERIFY_ON_BOOT is on.
func StoreOptions(cfg config.Config, authClient *backend.Client) ([]auth.SessionStoreOption, error) {
	verifyPolicy, err := auth.ParseVerifyFailurePolicy(cfg.GetVerifyFailurePolicy())
	if err != nil {
		return nil, errors.Wrap(err, "[bootstrap.StoreOptions]")
	}
	loginPolicy, err := auth.ParseLoginFailurePolicy(cfg.GetLoginFailurePolicy())
	if err != nil {
		return nil, errors.Wrap(err, "[bootstrap.StoreOptions]")
	}

	options := []auth.SessionStoreOption{
		auth.WithCredentialsExchanger(authClient),
		auth.WithVerifyFailurePolicy(verifyPolicy),
		auth.WithLoginFailurePolicy(loginPolicy),
		auth.WithExpiryCheckInterval(cfg.GetExpiryCheckInterval()),
		auth.WithRecheckOnResume(cfg.GetRecheckOnResume()),
	}
	if cfg.GetVerifyOnBoot() {
		options = append(options, auth.WithVerifier(authClient))
	}
	if cfg.GetAppMode() == config.AppModeAdmin {
		options = append(options, auth.WithRequiredRole(sessions.RoleAdmin))
	}
	return options, nil
}

// New wires the store and both backend clients. The store is not yet
// initialized.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	repo, err := OpenSessionRepo(ctx, cfg)
	if err != nil {
		return nil, err
	}

	authClient, err := backend.NewClient(cfg.GetBackendURL(), backend.WithTimeout(cfg.GetBackendTimeout()))
	if err != nil {
		closeRepo(repo)
		return nil, err
	}

	options, err := StoreOptions(cfg, authClient)
	if err != nil {
		closeRepo(repo)
		return nil, err
	}
	store, err := auth.NewSessionStore(repo, options...)
	if err != nil {
		closeRepo(repo)
		return nil, err
	}

	apiClient, err := backend.NewClient(cfg.GetBackendURL(),
		backend.WithTimeout(cfg.GetBackendTimeout()),
		backend.WithTokenSource(store.TokenSource()),
	)
	if err != nil {
		store.Close()
		closeRepo(repo)
		return nil, err
	}

	log.Debug().
		Str("backend", cfg.GetBackendURL()).
		Str("store", cfg.GetSessionStore()).
		Str("mode", string(cfg.GetAppMode())).
		Msg("Session store wired")
	return &App{Store: store, Backend: apiClient, Repo: repo}, nil
}

func closeRepo(repo sessions.Repo) {
	if closer, ok := repo.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("Closing session storage failed")
		}
	}
}
