// Package controller drives which view the UI shows: it restores the
// mirrored session on start, follows the identity provider's auth events
// and runs the login, register and logout actions.
package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/clinicauth/internal/client/provider"
	"github.com/dmitrijs2005/clinicauth/internal/client/services"
	"github.com/dmitrijs2005/clinicauth/internal/logging"
)

var (
	ErrAlreadyStarted = errors.New("controller already started")
	ErrClosed         = errors.New("controller closed")
	ErrBusy           = errors.New("another request is in progress")
)

// Observer receives a snapshot after every change. Observers run on the
// goroutine that made the change and must not call controller actions.
type Observer func(State)

type Controller struct {
	accounts services.AccountService
	log      logging.Logger

	// notifyMu serializes change+delivery so observers see snapshots in
	// order.
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     State
	observers []Observer
	started   bool
	closed    bool
	// epoch advances on logout so profile lookups started before it are
	// dropped.
	epoch uint64

	// slot holds a token while a submit is in flight. Login and Register
	// give up when it is taken; Logout waits its turn.
	slot chan struct{}

	cancel      context.CancelFunc
	unsubscribe func()
	done        chan struct{}
}

func New(accounts services.AccountService, log logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop{}
	}
	return &Controller{
		accounts: accounts,
		log:      log.With("module", "controller"),
		state:    State{View: ViewLogin, Loading: true},
		slot:     make(chan struct{}, 1),
	}
}

// Observe registers fn and immediately hands it the current state.
func (c *Controller) Observe(fn Observer) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	c.observers = append(c.observers, fn)
	snap := c.state.clone()
	c.mu.Unlock()

	fn(snap)
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// update applies fn under the state lock and notifies observers when fn
// reports a change. Nothing is applied after Close.
func (c *Controller) update(fn func(s *State) bool) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed || !fn(&c.state) {
		c.mu.Unlock()
		return false
	}
	snap := c.state.clone()
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
	return true
}

// Start restores the mirrored session, if any, and begins following the
// provider's auth events until Close or ctx ends.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	if p := c.accounts.RestoreSession(ctx); p != nil {
		c.log.Debug(ctx, "session restored", "account_id", p.ID)
		c.update(func(s *State) bool {
			s.View = ViewAuthenticated
			s.Profile = p
			return true
		})
	}

	runCtx, cancel := context.WithCancel(ctx)
	events, unsubscribe := c.accounts.Subscribe(runCtx)
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel = cancel
	c.unsubscribe = unsubscribe
	c.done = done
	c.mu.Unlock()

	go c.run(runCtx, events, done)
	return nil
}

func (c *Controller) run(ctx context.Context, events <-chan provider.AuthEvent, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handleEvent(ctx, ev)
		}
	}
}

func (c *Controller) handleEvent(ctx context.Context, ev provider.AuthEvent) {
	c.log.Debug(ctx, "auth event", "kind", ev.Kind.String(), "account_id", ev.AccountID)

	if ev.Kind == provider.SignedOut {
		// The view is left alone: a restored session stays shown until a
		// later event or a logout replaces it.
		c.update(func(s *State) bool {
			changed := s.Loading
			s.Loading = false
			return changed
		})
		return
	}

	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	p, err := c.accounts.ResolveSession(ctx, ev.AccountID)
	if err != nil {
		c.log.Warn(ctx, "profile lookup for auth event failed", "account_id", ev.AccountID, "error", err)
	}
	c.update(func(s *State) bool {
		changed := s.Loading
		s.Loading = false
		if p != nil && epoch == c.epoch {
			s.View = ViewAuthenticated
			s.Profile = p
			changed = true
		}
		return changed
	})
}

// begin takes the submit slot, failing with ErrBusy when another submit
// holds it. The caller must call end once its result is applied.
func (c *Controller) begin() error {
	select {
	case c.slot <- struct{}{}:
	default:
		return ErrBusy
	}
	return c.markBusy()
}

// await is begin for actions that queue behind an in-flight submit.
func (c *Controller) await(ctx context.Context) error {
	select {
	case c.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return c.markBusy()
}

func (c *Controller) markBusy() error {
	err := ErrClosed
	c.update(func(s *State) bool {
		s.Busy = true
		s.Message = Message{}
		err = nil
		return true
	})
	if err != nil {
		c.end()
	}
	return err
}

func (c *Controller) end() { <-c.slot }

// Login submits the login form.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	p, err := c.accounts.Login(ctx, email, password)

	c.update(func(s *State) bool {
		s.Busy = false
		if err != nil {
			s.Message = Message{Kind: MessageError, Text: displayText(err)}
			return true
		}
		s.View = ViewAuthenticated
		s.Profile = p
		s.Message = Message{Kind: MessageSuccess, Text: services.MsgLoggedIn}
		return true
	})
	return err
}

// Register submits the register form. On success the view returns to login;
// the new profile is not signed in.
func (c *Controller) Register(ctx context.Context, form services.RegistrationForm) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	err := services.ValidateRegistration(form)
	if err == nil {
		_, err = c.accounts.Register(ctx, form.Name, form.Email, form.Password, form.Role)
	}

	c.update(func(s *State) bool {
		s.Busy = false
		if err != nil {
			s.Message = Message{Kind: MessageError, Text: displayText(err)}
			return true
		}
		s.View = ViewLogin
		s.Profile = nil
		s.Message = Message{Kind: MessageSuccess, Text: services.MsgRegistered}
		return true
	})
	return err
}

// Logout signs out and always returns to the login view. When the remote
// sign-out fails the local session is dropped anyway. A login or register
// still in flight finishes first; Logout then signs out whatever it left.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.await(ctx); err != nil {
		return err
	}
	defer c.end()

	err := c.accounts.Logout(ctx)
	if err != nil {
		c.log.Warn(ctx, "remote sign out failed, forgetting local session", "error", err)
		if ferr := c.accounts.ForgetSession(ctx); ferr != nil {
			c.log.Error(ctx, "forget session failed", "error", ferr)
		}
	}

	c.update(func(s *State) bool {
		c.epoch++
		s.Busy = false
		s.View = ViewLogin
		s.Profile = nil
		if err != nil {
			s.Message = Message{Kind: MessageError, Text: displayText(err)}
		}
		return true
	})
	return err
}

// ShowLogin switches from register to login.
func (c *Controller) ShowLogin() { c.navigate(ViewRegister, ViewLogin) }

// ShowRegister switches from login to register.
func (c *Controller) ShowRegister() { c.navigate(ViewLogin, ViewRegister) }

func (c *Controller) navigate(from, to View) {
	c.update(func(s *State) bool {
		if s.View != from || s.Busy {
			return false
		}
		s.View = to
		s.Message = Message{}
		return true
	})
}

// Input notes user typing; it clears any shown message.
func (c *Controller) Input() {
	c.update(func(s *State) bool {
		if s.Message.Empty() {
			return false
		}
		s.Message = Message{}
		return true
	})
}

// Close releases the auth-event subscription and waits for the event loop
// to stop. No observer is called after Close returns.
func (c *Controller) Close() {
	c.notifyMu.Lock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.notifyMu.Unlock()
		return
	}
	c.closed = true
	cancel, unsubscribe, done := c.cancel, c.unsubscribe, c.done
	c.mu.Unlock()
	c.notifyMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	if done != nil {
		<-done
	}
}

// displayText returns the message for err. Errors from the account layer
// are already user-facing; anything else gets the generic text.
func displayText(err error) string {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var pe *services.ProviderError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	var de *services.DataConsistencyError
	if errors.As(err, &de) {
		return de.Error()
	}
	return services.MessageFor(err)
}
