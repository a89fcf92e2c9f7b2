package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/client/config"
	"github.com/dmitrijs2005/clinicauth/internal/client/controller"
	"github.com/dmitrijs2005/clinicauth/internal/client/services"
	"github.com/dmitrijs2005/clinicauth/internal/client/session"
	"github.com/dmitrijs2005/clinicauth/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pinger is implemented by remote providers that can report reachability.
type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config     *config.Config
	logger     logging.Logger
	accounts   services.AccountService
	controller *controller.Controller
	pinger     pinger
	providers  *providers
	reader     *bufio.Reader
	out        io.Writer

	modeMu sync.Mutex
	mode   Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(os.Stderr, "text", c.LogLevel)

	p, err := openProviders(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	accounts := services.NewAccounts(p.identity, p.docs, session.NewStore(p.storage, logger), logger)

	return &App{
		config:     c,
		logger:     logger,
		accounts:   accounts,
		controller: controller.New(accounts, logger),
		pinger:     p.pinger,
		providers:  p,
		reader:     bufio.NewReader(os.Stdin),
		out:        &syncWriter{w: os.Stdout},
	}, nil
}

// Run renders the controller's view and runs the REPL until the user exits
// or input ends.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close()

	fmt.Fprintln(a.out, "Clinic Token Booking (type 'help' for commands)")

	a.controller.Observe(newRenderer(a.out).observe)
	if err := a.controller.Start(ctx); err != nil {
		return err
	}
	defer a.controller.Close()

	if a.pinger != nil && a.config.OnlineCheckInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

func (a *App) close() {
	if a.providers == nil {
		return
	}
	if err := a.providers.close(); err != nil {
		a.logger.Warn(context.Background(), "close failed", "error", err)
	}
}

func (a *App) currentMode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

func (a *App) getStatus() string {
	var parts []string
	if s := a.controller.State(); s.Profile != nil {
		parts = append(parts, s.Profile.Email)
	}
	if m := a.currentMode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ") "
}

// StartOnlineStatusWatcher pings the provider every interval and flips the
// mode shown in the prompt. It returns when ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

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

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.pinger.Ping(ctx); err != nil {
		a.logger.Debug(ctx, "ping failed", "error", err)
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// syncWriter serializes writes from the REPL and from observers running on
// the controller's event goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
