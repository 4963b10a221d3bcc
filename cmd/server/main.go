// Command server runs the auth gateway as a standalone HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"

	soulauth "github.com/rishav-raunak/SearchImage-unplace"
	"github.com/rishav-raunak/SearchImage-unplace/config"
	"github.com/rishav-raunak/SearchImage-unplace/logger"
	"github.com/rishav-raunak/SearchImage-unplace/oauth2"
	"github.com/rishav-raunak/SearchImage-unplace/stores"
	gormstore "github.com/rishav-raunak/SearchImage-unplace/stores/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.L()

	users, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("store init failed", zap.Error(err))
	}

	issuer := soulauth.NewIssuer("soulapp", []byte(cfg.Auth.JWTSecret))
	gateway := soulauth.NewGateway(users, issuer,
		[]byte(cfg.Auth.StateSecret), cfg.Server.FrontendOrigin,
		buildProviders(cfg, log)...)
	gateway.Logger = log

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.Server.FrontendOrigin}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      cors(gateway.Handler()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.Int("port", cfg.Server.Port))
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal("server failed", zap.Error(err))
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown incomplete", zap.Error(err))
	}
}

// openStore connects to postgres when a DSN is configured and falls
// back to the in-memory store otherwise. The fallback loses all users
// on restart, so it logs loudly.
func openStore(cfg *config.Config, log *zap.Logger) (soulauth.UserStore, error) {
	dsn := cfg.Database.DSN()
	if dsn == "" {
		log.Warn("no database configured, using in-memory store; users will not survive restart")
		return stores.NewMemUserStore(), nil
	}
	db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := gormstore.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return gormstore.NewUserStore(db), nil
}

// buildProviders turns the configured provider credentials into
// clients. Unconfigured providers are skipped and their routes never
// mounted.
func buildProviders(cfg *config.Config, log *zap.Logger) []soulauth.FederatedProvider {
	var providers []soulauth.FederatedProvider
	add := func(name string, pc config.ProviderConfig, build func(id, secret, callback string) *oauth2.Client) {
		if !pc.Configured() {
			log.Warn("provider not configured, skipping", zap.String("provider", name))
			return
		}
		providers = append(providers, build(pc.ClientID, pc.ClientSecret, pc.CallbackURL))
	}
	add("google", cfg.Providers.Google, oauth2.Google)
	add("github", cfg.Providers.Github, oauth2.Github)
	add("facebook", cfg.Providers.Facebook, oauth2.Facebook)
	return providers
}
