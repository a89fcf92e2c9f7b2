package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/clinicauth/internal/client/controller"
	"github.com/dmitrijs2005/clinicauth/internal/client/models"
)

// renderer prints the controller's view whenever it changes and every new
// message once.
type renderer struct {
	mu      sync.Mutex
	out     io.Writer
	shown   string
	message controller.Message
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{out: out}
}

func (r *renderer) observe(s controller.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.Message != r.message {
		r.message = s.Message
		renderMessage(r.out, s.Message)
	}

	// nothing to show yet; a restored session is shown straight away
	if s.Loading && s.View != controller.ViewAuthenticated {
		return
	}

	key := s.View.String()
	if s.Profile != nil {
		key += ":" + s.Profile.ID
	}
	if key == r.shown {
		return
	}
	r.shown = key
	renderView(r.out, s)
}

func renderMessage(w io.Writer, m controller.Message) {
	switch m.Kind {
	case controller.MessageError:
		fmt.Fprintf(w, "[error] %s\n", m.Text)
	case controller.MessageSuccess:
		fmt.Fprintf(w, "[ok] %s\n", m.Text)
	}
}

func renderView(w io.Writer, s controller.State) {
	switch s.View {
	case controller.ViewAuthenticated:
		renderDashboard(w, s.Profile)
	case controller.ViewRegister:
		fmt.Fprintln(w, "--- Create Account ---")
		fmt.Fprintln(w, "Type 'register' to fill in the form or 'login' to go back.")
	default:
		fmt.Fprintln(w, "--- Welcome Back ---")
		fmt.Fprintln(w, "Type 'login' to sign in or 'register' to create an account.")
	}
}

var roleActions = map[models.Role]string{
	models.RolePatient: "Book Token",
	models.RoleDoctor:  "OPD Dashboard",
	models.RoleAdmin:   "Analytics",
}

func renderDashboard(w io.Writer, p *models.AccountProfile) {
	if p == nil {
		p = &models.AccountProfile{}
	}

	name := p.Name
	if name == "" {
		name = "User"
	}
	role := p.Role
	if role == "" {
		role = models.RolePatient
	}

	fmt.Fprintln(w, "=== Clinic Token Booking ===")
	fmt.Fprintf(w, "Welcome, %s! [%s]\n", name, roleLabel(role))
	fmt.Fprintf(w, "  Email:  %s\n", orNA(p.Email))
	fmt.Fprintf(w, "  Role:   %s\n", roleLabel(role))
	fmt.Fprintf(w, "  Joined: %s\n", joined(p))
	if action, ok := roleActions[role]; ok {
		fmt.Fprintf(w, "  Action: %s\n", action)
	}
}

func roleLabel(r models.Role) string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func joined(p *models.AccountProfile) string {
	if p.CreatedAt.IsZero() {
		return "N/A"
	}
	return p.CreatedAt.Local().Format("2006-01-02")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
