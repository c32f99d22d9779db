package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/sift"
	"github.com/aretw0/sift/internal/logging"
	loamAdapter "github.com/aretw0/sift/pkg/adapters/loam"
	redisAdapter "github.com/aretw0/sift/pkg/adapters/redis"
	sqliteAdapter "github.com/aretw0/sift/pkg/adapters/sqlite"
	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/observability"
	"github.com/aretw0/sift/pkg/ports"
)

// StoreOptions selects where definitions are read from. At most one
// backend may be set.
type StoreOptions struct {
	CatalogDir    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SQLitePath    string
}

// Options are the persistent flags shared by every command.
type Options struct {
	Store    StoreOptions
	LogLevel string
	MaxDepth int
	// Metrics enables the Prometheus collectors (serve only).
	Metrics bool
}

// createLogger configures the application logger from --log-level.
func createLogger(level string) (*slog.Logger, error) {
	lvl, ok, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if !ok {
		return logging.NewNop(), nil
	}
	return logging.New(lvl), nil
}

// openStore opens the configured definition store. It returns a nil store
// when none is configured.
func openStore(opts StoreOptions) (ports.DefinitionStore, io.Closer, error) {
	var set []string
	if opts.CatalogDir != "" {
		set = append(set, "--catalog")
	}
	if opts.RedisAddr != "" {
		set = append(set, "--redis")
	}
	if opts.SQLitePath != "" {
		set = append(set, "--sqlite")
	}
	if len(set) > 1 {
		return nil, nil, fmt.Errorf("%s are exclusive", strings.Join(set, ", "))
	}

	switch {
	case opts.CatalogDir != "":
		store, err := loamAdapter.Open(opts.CatalogDir)
		if err != nil {
			return nil, nil, err
		}
		return store, noClose{}, nil
	case opts.RedisAddr != "":
		store := redisAdapter.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err := store.Ping(context.Background()); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", opts.RedisAddr, err)
		}
		return store, store, nil
	case opts.SQLitePath != "":
		store, err := sqliteAdapter.Open(opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	}
	return nil, noClose{}, nil
}

type noClose struct{}

func (noClose) Close() error { return nil }

// Session is an initialized validator plus what it needs to shut down.
type Session struct {
	Validator *sift.Validator
	Logger    *slog.Logger
	closer    io.Closer
}

// Close releases the store.
func (s *Session) Close() error {
	return s.closer.Close()
}

// NewSession opens the store and loads its definitions.
func NewSession(opts Options) (*Session, error) {
	logger, err := createLogger(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	store, closer, err := openStore(opts.Store)
	if err != nil {
		return nil, err
	}

	vopts := []sift.Option{sift.WithLogger(logger), sift.WithMaxDepth(opts.MaxDepth)}
	if store != nil {
		vopts = append(vopts, sift.WithStore(store))
	}
	if opts.Metrics {
		m, err := observability.NewMetrics(nil)
		if err != nil {
			closer.Close()
			return nil, err
		}
		vopts = append(vopts, sift.WithMetrics(m))
	}

	v, err := sift.New(vopts...)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("error initializing catalog: %w", err)
	}
	return &Session{Validator: v, Logger: logger, closer: closer}, nil
}

// ResolveSchema returns the catalog name for arg. A registered name wins;
// otherwise arg is read as a definition file and registered under its base
// name.
func (s *Session) ResolveSchema(arg string) (string, error) {
	c := s.Validator.Catalog()
	if _, ok := c.Lookup(arg); ok {
		return arg, nil
	}
	if _, err := os.Stat(arg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("unknown schema %q (not in the catalog and not a file)", arg)
		}
		return "", err
	}
	def, err := definition.LoadFile(arg)
	if err != nil {
		return "", err
	}
	name := strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
	if err := c.RegisterDefinition(name, def); err != nil {
		return "", err
	}
	return name, nil
}
