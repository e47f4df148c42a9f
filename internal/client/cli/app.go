// Package cli is the interactive BookBite client: a small REPL over the
// durable store, the sync engine, and the live-update channel.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/smforson1/book-bite-sub000/internal/client/api"
	"github.com/smforson1/book-bite-sub000/internal/client/config"
	"github.com/smforson1/book-bite-sub000/internal/client/realtime"
	"github.com/smforson1/book-bite-sub000/internal/client/session"
	"github.com/smforson1/book-bite-sub000/internal/client/storage"
	"github.com/smforson1/book-bite-sub000/internal/client/syncer"
	"github.com/smforson1/book-bite-sub000/internal/filex"
	"github.com/smforson1/book-bite-sub000/internal/logging"
)

type App struct {
	config *config.Config
	log    logging.Logger
	store  *storage.Store
	api    api.Client
	sess   *session.Manager
	engine *syncer.Engine
	push   *realtime.Client

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewDefault(cfg.LogLevel)

	dataDir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data dir: %w", err)
	}

	db, err := storage.InitDatabase(ctx, filepath.Join(dataDir, "bookbite.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	store := storage.New(db, log)
	sess := session.NewManager(store, log)

	apiClient := api.NewHTTPClient(cfg.ServerBaseURL, func() string {
		return sess.Token(context.Background())
	})

	engine := syncer.New(syncer.Config{
		SyncInterval:        cfg.SyncInterval,
		OnlineCheckInterval: cfg.OnlineCheckInterval,
		RetentionHorizon:    cfg.RetentionHorizon,
		MaxSyncAttempts:     cfg.MaxSyncAttempts,
	}, store, apiClient, sess, log)

	push := realtime.New(realtime.Config{
		URL:                  cfg.PushURL,
		ConnectTimeout:       cfg.ConnectTimeout,
		HeartbeatInterval:    cfg.HeartbeatInterval,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		ReconnectBaseDelay:   cfg.ReconnectBaseDelay,
		ReconnectMaxDelay:    cfg.ReconnectMaxDelay,
		HistoryLimit:         cfg.HistoryLimit,
	}, store, sess, log)

	return &App{
		config: cfg,
		log:    log,
		store:  store,
		api:    apiClient,
		sess:   sess,
		engine: engine,
		push:   push,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.sess.Active(context.Background())
}

// Run starts the background machinery and hands control to the REPL.
func (a *App) Run(ctx context.Context) error {
	if err := a.engine.Start(ctx); err != nil {
		return err
	}
	defer a.engine.Stop()
	defer a.push.Close()
	defer a.api.Close()

	a.engine.Events().Subscribe(syncer.EventNetworkStatus, func(ev syncer.Event) {
		if ev.Online {
			fmt.Fprintln(a.out, "[online]")
		} else {
			fmt.Fprintln(a.out, "[offline]")
		}
	})
	a.engine.Events().Subscribe(syncer.EventSyncComplete, func(syncer.Event) {
		fmt.Fprintln(a.out, "[sync complete]")
	})

	if a.isLoggedIn() {
		if err := a.push.Connect(ctx); err != nil {
			a.log.Warn(ctx, "live updates unavailable", "error", err)
		}
	}

	fmt.Fprintln(a.out, "BookBite CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.statusLine, scanner)
	return nil
}

func (a *App) statusLine() string {
	s := ""
	if u := a.sess.CurrentUser(context.Background()); u != nil && u.Name != "" {
		s = u.Name + " "
	}
	if a.engine.OfflineModeEnabled() {
		s += "offline-mode"
	} else if a.engine.Online() {
		s += "online"
	} else {
		s += "offline"
	}
	return "(" + s + ")"
}
