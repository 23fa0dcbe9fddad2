package cli

import (
	"crypto/rand"
	"fmt"

	"github.com/MrEthical07/goSession/authclient"
	"github.com/MrEthical07/goSession/devserver"
	"github.com/MrEthical07/goSession/internal/config"
	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development authentication backend",
		Long: `Serve /auth/login, /auth/signup and /auth/me for the HTTP auth mode.

Accounts are kept in memory. When server.demopassword is set, the demo
account (server.demoemail) is created at startup. Failed logins are
throttled through server.redis.addr, or an in-process Redis when unset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := a.cfg.Server
			if addr == "" {
				addr = sc.Addr
			}
			if a.cfg.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			secret := []byte(sc.JWTSecret)
			if len(secret) == 0 {
				if a.cfg.Environment == "production" {
					return fmt.Errorf("server.jwtsecret is required in production")
				}
				secret = make([]byte, 32)
				if _, err := rand.Read(secret); err != nil {
					return fmt.Errorf("generate secret: %w", err)
				}
				a.log.Warn().Msg("server.jwtsecret unset, tokens will not survive a restart")
			}

			opts := []devserver.Option{devserver.WithLogger(a.log)}
			if sc.Throttle.Enabled {
				limiter, closeLimiter, err := a.limiter(sc)
				if err != nil {
					return err
				}
				defer closeLimiter()
				opts = append(opts, devserver.WithLimiter(limiter))
			}

			cfg := devserver.DefaultConfig()
			cfg.Secret = secret
			cfg.AccessTTL = sc.AccessTTL
			srv, err := devserver.New(cfg, opts...)
			if err != nil {
				return err
			}

			if sc.DemoPassword != "" {
				profile := authclient.MockProfile(a.now())
				profile.ID = ""
				profile.Email = sc.DemoEmail
				if _, err := srv.Seed(profile, sc.DemoPassword); err != nil {
					return fmt.Errorf("seed demo account: %w", err)
				}
				a.log.Info().Str("email", sc.DemoEmail).Msg("demo account ready")
			}

			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}

func (a *app) limiter(sc config.ServerConfig) (*rate.Limiter, func(), error) {
	rlCfg := rate.DefaultConfig()
	rlCfg.MaxAttempts = sc.Throttle.MaxAttempts
	rlCfg.Window = sc.Throttle.Window

	if sc.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
		})
		return rate.New(rdb, rlCfg), func() { _ = rdb.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start in-process redis: %w", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	a.log.Debug().Str("addr", mr.Addr()).Msg("login throttle using in-process redis")
	return rate.New(rdb, rlCfg), func() {
		_ = rdb.Close()
		mr.Close()
	}, nil
}
