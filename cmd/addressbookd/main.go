// Package main runs the reference contacts backend.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pdxmph/addressbook/internal/config"
	"github.com/pdxmph/addressbook/internal/db"
	"github.com/pdxmph/addressbook/internal/logger"
	"github.com/pdxmph/addressbook/internal/server"
	"github.com/pdxmph/addressbook/internal/validate"
)

// Run is the testable entrypoint for the server. It returns once ctx is
// done and the server has shut down.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	store, err := db.Open(cfg.Server.DBPath, log)
	if err != nil {
		return err
	}
	defer store.Close()

	secret := cfg.Server.Secret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		log.Warn("no server secret configured; tokens will not survive a restart")
	}
	if len(cfg.Server.Users) == 0 {
		log.Warn("no users configured; every login will be rejected")
	}

	auth := server.NewAuthenticator(secret, cfg.Server.TokenTTL.Duration, cfg.Server.Users)
	h := server.New(log, store, auth, validate.New())
	srv := server.NewHTTPServer(cfg.Server.Addr, h)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}
	log.Info("Starting contacts backend", zap.String("addr", ln.Addr().String()), zap.String("db", cfg.Server.DBPath))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error("server error", zap.Error(err))
			return err
		}
	}

	log.Info("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctxShutdown)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func main() {
	var (
		configPath   = flag.String("config", config.Path(), "Path to the config file")
		initDB       = flag.Bool("init", false, "Create a new empty database and exit")
		fixtures     = flag.Bool("fixtures", false, "Create a database seeded with sample contacts and exit")
		hashPassword = flag.String("hash-password", "", "Print the bcrypt hash of a password for the config file and exit")
		addr         = flag.String("addr", "", "Listen address (overrides config)")
	)
	flag.Parse()

	if *hashPassword != "" {
		hash, err := server.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// The server logs to stderr unless server.log_path is set
	log, err := logger.New(cfg.Log.Env, cfg.Server.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	switch {
	case *initDB:
		if err := db.Initialize(cfg.Server.DBPath); err != nil {
			log.Fatal("initializing database", zap.Error(err))
		}
		fmt.Printf("Created database at %s\n", cfg.Server.DBPath)
		return
	case *fixtures:
		if err := db.CreateFixturesDatabase(cfg.Server.DBPath, log); err != nil {
			log.Fatal("creating fixtures database", zap.Error(err))
		}
		fmt.Printf("Created fixtures database at %s\n", cfg.Server.DBPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := Run(ctx, cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
