// Package nois parses the nois server configuration and runs the HTTP API.
package nois

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	entrypoint "github.com/louisbranch/nois/internal/platform/cmd"
	"github.com/louisbranch/nois/internal/platform/logging"
	"github.com/louisbranch/nois/internal/platform/timeouts"
	"github.com/louisbranch/nois/internal/services/avatars"
	"github.com/louisbranch/nois/internal/services/social/api/httpapi"
	"github.com/louisbranch/nois/internal/services/social/app"
	"github.com/louisbranch/nois/internal/services/social/storage/sqlite"
)

// Config holds nois server configuration.
type Config struct {
	HTTPAddr      string   `env:"HTTP_ADDR" envDefault:":8095"`
	DBPath        string   `env:"DB_PATH" envDefault:"data/nois.db"`
	AvatarDir     string   `env:"AVATAR_DIR" envDefault:"data/avatars"`
	AvatarSize    int      `env:"AVATAR_SIZE" envDefault:"512"`
	AvatarMaxSize int      `env:"AVATAR_MAX_SIZE" envDefault:"2048"`
	AvatarMemo    int      `env:"AVATAR_MEMO_SIZE" envDefault:"1024"`
	AvatarFonts   []string `env:"AVATAR_FONTS" envSeparator:","`
	PaletteFile   string   `env:"PALETTE_FILE"`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.AvatarDir, "avatar-dir", cfg.AvatarDir, "Directory holding rendered avatars")
	fs.IntVar(&cfg.AvatarSize, "avatar-size", cfg.AvatarSize, "Profile avatar edge in pixels")
	fs.IntVar(&cfg.AvatarMaxSize, "avatar-max-size", cfg.AvatarMaxSize, "Largest avatar edge served")
	fs.IntVar(&cfg.AvatarMemo, "avatar-memo-size", cfg.AvatarMemo, "Avatar path memo entries (0 disables)")
	fs.Func("avatar-fonts", "Comma-separated font files tried before the bundled faces", func(value string) error {
		cfg.AvatarFonts = splitList(value)
		return nil
	})
	fs.StringVar(&cfg.PaletteFile, "palette-file", cfg.PaletteFile, "YAML palette replacing the built-in pairs")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.AvatarSize <= 0 {
		return Config{}, fmt.Errorf("avatar size must be positive, got %d", cfg.AvatarSize)
	}
	if cfg.AvatarMaxSize > 0 && cfg.AvatarSize > cfg.AvatarMaxSize {
		return Config{}, fmt.Errorf("avatar size %d exceeds max size %d", cfg.AvatarSize, cfg.AvatarMaxSize)
	}
	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Run starts the nois HTTP API until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceNois, func(ctx context.Context) error {
		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		rt, err := build(cfg, logger)
		if err != nil {
			return err
		}
		defer rt.close()

		listener, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
		}
		logger.Info("nois listening", zap.String("addr", listener.Addr().String()))
		return serve(ctx, &http.Server{
			Handler:           rt.handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		}, listener)
	})
}

// wiring is the assembled HTTP handler with its resources.
type wiring struct {
	handler http.Handler
	close   func()
}

func build(cfg Config, logger *zap.Logger) (wiring, error) {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return wiring{}, fmt.Errorf("open social store: %w", err)
	}
	avatarService, err := avatars.Open(avatars.Settings{
		Dir:         cfg.AvatarDir,
		MaxSize:     cfg.AvatarMaxSize,
		MemoSize:    cfg.AvatarMemo,
		Fonts:       cfg.AvatarFonts,
		PaletteFile: cfg.PaletteFile,
	}, logger.Named("avatars"))
	if err != nil {
		_ = store.Close()
		return wiring{}, err
	}
	social, err := app.NewService(store, avatarService, app.Config{AvatarSize: cfg.AvatarSize},
		app.WithLogger(logger.Named("social")),
	)
	if err != nil {
		_ = store.Close()
		return wiring{}, err
	}
	api := httpapi.NewServer(social,
		httpapi.WithLogger(logger.Named("http")),
		httpapi.WithHealthCheck(store.Ping),
	)
	return wiring{
		handler: http.TimeoutHandler(api.Handler(), timeouts.Request, "request timed out"),
		close: func() {
			if err := store.Close(); err != nil {
				logger.Warn("close social store", zap.Error(err))
			}
		},
	}, nil
}

// serve runs server on listener until ctx ends, then drains in-flight
// requests within timeouts.Shutdown.
func serve(ctx context.Context, server *http.Server, listener net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := server.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
