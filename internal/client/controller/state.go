package controller

import "github.com/dmitrijs2005/clinicauth/internal/client/models"

// View is the screen the controller wants shown.
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewAuthenticated
)

func (v View) String() string {
	switch v {
	case ViewRegister:
		return "register"
	case ViewAuthenticated:
		return "authenticated"
	default:
		return "login"
	}
}

type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageError
	MessageSuccess
)

// Message is a transient notice for the user. The zero value means none.
type Message struct {
	Kind MessageKind
	Text string
}

func (m Message) Empty() bool { return m.Kind == MessageNone }

// State is a snapshot of the controller.
type State struct {
	View View

	// Loading is set until the provider's first auth event is handled.
	Loading bool

	// Busy is set while a login, register or logout is in flight.
	Busy bool

	// Profile is set only in ViewAuthenticated.
	Profile *models.AccountProfile

	Message Message
}

func (s State) clone() State {
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	return s
}
