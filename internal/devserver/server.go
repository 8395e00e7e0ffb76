// Package devserver runs the development HTTP server: a compile endpoint
// for editors and tooling, run-history queries, and an event stream fed by
// a file watcher that recompiles views as they change on disk.
package devserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starview-labs/starview/internal/state"
	"github.com/starview-labs/starview/pkg/compilation"
)

// Config holds configuration for the dev server.
type Config struct {
	// Service compiles documents. Required.
	Service *compilation.Service

	// Store records run history. Required.
	Store state.Store

	Host string
	Port int

	// Watch recompiles views as they change on disk.
	Watch bool

	// ViewsDir holds the view sources served and watched.
	ViewsDir string

	// Environment is the label recorded with each run.
	Environment string

	Logger *slog.Logger
}

// Server is the development server.
type Server struct {
	svc      *compilation.Service
	store    state.Store
	host     string
	port     int
	watch    bool
	viewsDir string
	env      string
	logger   *slog.Logger
	notifier *notifier
}

// NewServer creates a dev server from cfg.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		svc:      cfg.Service,
		store:    cfg.Store,
		host:     cfg.Host,
		port:     cfg.Port,
		watch:    cfg.Watch,
		viewsDir: cfg.ViewsDir,
		env:      cfg.Environment,
		logger:   logger,
		notifier: newNotifier(),
	}
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))
	s.logger.Info("starting dev server", "addr", fmt.Sprintf("http://%s", addr))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	s.routes(r)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down dev server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchFiles recompiles view sources as they change in the views directory.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.viewsDir); err != nil {
		s.logger.Error("failed to watch views directory", "dir", s.viewsDir, "error", err)
		// Continue without watching; the compile endpoint still works.
		<-ctx.Done()
		return nil
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".star" {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			path := event.Name
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.recompile(path)
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// recompile compiles a changed view, records the run, and notifies event
// stream clients.
func (s *Server) recompile(path string) {
	s.logger.Debug("view changed, recompiling", "file", path)

	source, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("failed to read changed view", "file", path, "error", err)
		return
	}

	run, _, _ := s.compileAndRecord(path, string(source))
	s.notifier.broadcast(run)
}

// compileAndRecord runs one compile attempt and records it in run history.
// The returned run reflects the attempt even when recording fails; res and
// err are the raw service outcome for response shaping.
func (s *Server) compileAndRecord(path, source string) (*state.Run, *compilation.Result, error) {
	run := &state.Run{
		Document:    path,
		Environment: s.env,
	}

	res, err := s.svc.Compile(compilation.Document{Path: path}, source)
	switch {
	case err != nil:
		run.Status = state.RunStatusError
		run.Error = err.Error()
	case res.Success:
		run.Status = state.RunStatusSuccess
		run.Module = res.Module
		run.EntryType = res.EntryType
		run.DurationMS = res.Duration.Milliseconds()
	default:
		run.Status = state.RunStatusFailure
		run.Messages = len(res.Messages)
		run.DurationMS = res.Duration.Milliseconds()
	}

	if rerr := s.store.RecordRun(run); rerr != nil {
		s.logger.Error("failed to record run", "document", path, "error", rerr)
	}
	return run, res, err
}
