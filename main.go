package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"emojiart/internal/document"
	"emojiart/internal/fetch"
	"emojiart/internal/store"
	"emojiart/internal/viewport"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	if err := newCLIApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "emojiart:", err)
		os.Exit(1)
	}
}

// session holds what every command opens from the global flags.
type session struct {
	config   *Config
	logger   *slog.Logger
	store    store.Store
	fetcher  *fetch.HTTPFetcher
	closeLog func() error
}

func openSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.DataDir = expandHome(dir)
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return nil, err
	}

	var s store.Store
	if c.Bool("ephemeral") {
		s = store.NewMemoryStore()
	} else {
		s, err = store.OpenSQLite(cfg.DataDir)
		if err != nil {
			closeLog()
			return nil, err
		}
	}

	fetcher := fetch.NewHTTPFetcher(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithMaxBytes(cfg.MaxImageBytes),
		fetch.WithLogger(logger),
	)
	logger.Debug("session opened", "data_dir", cfg.DataDir, "ephemeral", c.Bool("ephemeral"))
	return &session{config: cfg, logger: logger, store: s, fetcher: fetcher, closeLog: closeLog}, nil
}

func (s *session) Close() error {
	err := s.store.Close()
	if cerr := s.closeLog(); err == nil {
		err = cerr
	}
	return err
}

// openLogger writes to a file; the terminal belongs to the UI.
func openLogger(cfg *Config) (*slog.Logger, func() error, error) {
	path := cfg.logPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.slogLevel()}))
	return logger, f.Close, nil
}

func initialModel(cfg *Config, logger *slog.Logger, s store.Store, f fetch.Fetcher, dispatch document.Dispatcher) model {
	n := &notes{}
	cache := &backgroundCache{}
	doc := document.New(s, f, document.WithLogger(logger), document.WithDispatcher(dispatch))
	doc.Subscribe(func(c document.Change) {
		if !c.Has(document.ChangeBackground) {
			return
		}
		cache.invalidate()
		if doc.BackgroundImage() != nil {
			n.message = "Background loaded"
		}
	})

	return model{
		doc:     doc,
		view:    viewport.New(),
		mode:    ModeNormal,
		now:     time.Now,
		palette: splitGraphemes(palette),
		config:  cfg,
		logger:  logger.With("component", "ui"),
		notes:   n,
		bgCache: cache,
	}
}

func runTUI(ctx context.Context, s *session) error {
	var prog *tea.Program
	dispatch := func(fn func()) {
		prog.Send(dispatchMsg{fn: fn})
	}

	m := initialModel(s.config, s.logger, s.store, s.fetcher, dispatch)
	prog = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	m.doc.Initialize(ctx)
	defer m.doc.Close()

	s.logger.Info("starting", "version", Version)
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
