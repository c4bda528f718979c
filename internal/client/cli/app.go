package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/billboard/internal/client/client"
	"github.com/dmitrijs2005/billboard/internal/client/config"
	"github.com/dmitrijs2005/billboard/internal/client/identity"
	"github.com/dmitrijs2005/billboard/internal/client/repositories/bills"
	"github.com/dmitrijs2005/billboard/internal/client/services"
	"github.com/dmitrijs2005/billboard/internal/filex"
	"github.com/dmitrijs2005/billboard/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config  *config.Config
	session *services.SessionManager
	saved   *services.SavedCache
	bills   *services.BillService
	db      *sql.DB
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	modeMu sync.RWMutex
	mode   Mode

	// cancel stops background work started on behalf of the session.
	cancel context.CancelFunc
}

// NewApp wires the identity provider, the API client and the local catalog
// from c.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewTextLogger(os.Stderr, c.LogLevel)

	dsn := c.CatalogDSN
	if dsn == "" {
		dir, err := filex.EnsureDir("", "billboard")
		if err != nil {
			return nil, err
		}
		dsn = filepath.Join(dir, "catalog.db")
	}

	db, err := client.InitDatabase(ctx, dsn)
	if err != nil {
		log.Error(ctx, "error initializing catalog", "dsn", dsn, "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	idp, err := identity.NewCognitoProvider(ctx, identity.CognitoConfig{
		Region:          c.CognitoRegion,
		UserPoolID:      c.CognitoUserPoolID,
		ClientID:        c.CognitoClientID,
		ClientSecret:    c.CognitoClientSecret,
		Endpoint:        c.CognitoEndpoint,
		AccessKeyID:     c.AWSAccessKeyID,
		SecretAccessKey: c.AWSSecretAccessKey,
		Timeout:         c.RequestTimeout,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, idp, api, db, log, os.Stdin, os.Stdout), nil
}

// newApp builds the services. db may be nil, which disables the catalog.
func newApp(c *config.Config, idp identity.Provider, api client.Client, db *sql.DB, log logging.Logger, in io.Reader, out io.Writer) *App {
	var catalog bills.Repository
	if db != nil {
		catalog = bills.NewSQLiteRepository(db)
	}

	ctx, cancel := context.WithCancel(context.Background())
	session := services.NewSessionManager(idp, api, log)
	saved := services.NewSavedCache(session, api, catalog, log)
	session.Subscribe(saved.OnSession(ctx))

	return &App{
		config:  c,
		session: session,
		saved:   saved,
		bills:   services.NewBillService(api, session, catalog, log),
		db:      db,
		log:     log,
		reader:  bufio.NewReader(in),
		out:     out,
		cancel:  cancel,
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, a.cancel)
	defer stop()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

// Close stops background refreshes, waits for them and releases the local
// catalog.
func (a *App) Close() {
	a.cancel()
	a.saved.Wait()
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.AuthToken() != ""
}

func (a *App) getMode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// checkOnline probes the API once and updates the mode.
func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := a.bills.Health(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher probes the API every interval until ctx is done.
// A non-positive interval disables the watcher.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	snap := a.session.Snapshot()

	s := ""
	switch {
	case snap.User != nil:
		s = snap.User.Username
	case snap.PendingUsername != "":
		s = fmt.Sprintf("%s, %s", snap.PendingUsername, snap.Phase)
	}

	if m := a.getMode(); m != "" {
		if s != "" {
			s += " "
		}
		s += string(m)
	}

	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root prints the banner and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to Bill Board (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
