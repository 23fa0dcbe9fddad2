package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/authclient"
	"github.com/MrEthical07/goSession/internal/config"
	applog "github.com/MrEthical07/goSession/internal/log"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/notify"
	"github.com/MrEthical07/goSession/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ErrNotSignedIn is returned by commands that need a session.
var ErrNotSignedIn = errors.New("not signed in")

type app struct {
	deps       Deps
	configPath string

	cfg *config.AppConfig
	log zerolog.Logger
}

func (a *app) load(cmd *cobra.Command) error {
	if a.deps.Config != nil {
		a.cfg = a.deps.Config
	} else {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	if a.deps.Logger != nil {
		a.log = *a.deps.Logger
	} else {
		a.log = applog.New(a.cfg.Environment)
	}
	return nil
}

func (a *app) now() time.Time {
	if a.deps.Now != nil {
		return a.deps.Now()
	}
	return time.Now()
}

// workspace bundles an initialized store with the CLI's view of navigation.
type workspace struct {
	store   *goSession.Store
	history *navigation.History
	toasts  notify.Notifier
	routes  goSession.RoutesConfig

	closers []func()
}

func (s *workspace) close() {
	s.store.Close()
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func (a *app) storage() (storage.Storage, func(), error) {
	if a.deps.Storage != nil {
		return a.deps.Storage, func() {}, nil
	}

	sc := a.cfg.Storage
	switch sc.Backend {
	case config.BackendMemory:
		return storage.NewMemory(), func() {}, nil
	case config.BackendFile:
		return storage.NewFile(sc.Path), func() {}, nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
		})
		return storage.NewRedis(rdb, sc.Prefix, sc.TTL), func() {
			if err := rdb.Close(); err != nil {
				a.log.Error().Err(err).Msg("redis close error")
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
	}
}

func (a *app) authClient() authclient.Client {
	if a.deps.Client != nil {
		return a.deps.Client
	}
	if a.cfg.Auth.Mode == config.AuthHTTP {
		hc := &http.Client{Timeout: a.cfg.Auth.Timeout}
		return authclient.NewHTTP(api.NewClient(a.cfg.Auth.BaseURL, api.WithHTTPClient(hc)))
	}
	return authclient.NewSimulated(authclient.WithDelay(a.cfg.Auth.Delay), authclient.WithClock(a.now))
}

// open builds and initializes the store. start is the location the command
// acts from.
func (a *app) open(ctx context.Context, cmd *cobra.Command, start navigation.Location) (*workspace, error) {
	st, closeStorage, err := a.storage()
	if err != nil {
		return nil, err
	}

	history := navigation.NewHistory(start)
	store, err := goSession.New().
		WithConfig(a.cfg.StoreConfig()).
		WithStorage(st).
		WithAuthClient(a.authClient()).
		WithNavigator(history).
		WithLogger(a.log).
		WithClock(a.now).
		Build()
	if err != nil {
		closeStorage()
		return nil, err
	}

	s := &workspace{
		store:   store,
		history: history,
		toasts:  notify.NewWriter(cmd.OutOrStdout()),
		routes:  a.cfg.StoreConfig().Routes,
		closers: []func(){closeStorage},
	}
	if err := store.Initialize(ctx); err != nil {
		s.close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return s, nil
}
