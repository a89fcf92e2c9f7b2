package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/clinicauth/internal/client/controller"
	"github.com/dmitrijs2005/clinicauth/internal/client/models"
	"github.com/dmitrijs2005/clinicauth/internal/client/services"
	"github.com/dmitrijs2005/clinicauth/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) view() controller.View {
	return a.controller.State().View
}

// input reports that the user typed something.
func (a *App) input() {
	a.controller.Input()
}

// Login switches to the login view if needed, reads the form and submits
// it. Failures are shown through the controller's message.
func (a *App) Login(ctx context.Context) error {
	if s := a.controller.State(); s.View == controller.ViewAuthenticated {
		fmt.Fprintf(a.out, "Already signed in as %s\n", s.Profile.Email)
		return nil
	}
	a.controller.ShowLogin()

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.controller.Login(ctx, email, string(password))
}

// Register switches to the register view, reads the form and submits it.
// An empty role answer picks patient.
func (a *App) Register(ctx context.Context) error {
	if a.view() == controller.ViewAuthenticated {
		fmt.Fprintln(a.out, "Log out before creating another account")
		return nil
	}
	a.controller.ShowRegister()

	var f services.RegistrationForm
	var err error

	if f.Name, err = getSimpleText(a.reader, "Full name", a.out); err != nil {
		return err
	}
	if f.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if f.Role, err = getSimpleText(a.reader, "Role (patient, doctor, admin)", a.out); err != nil {
		return err
	}
	if f.Role == "" {
		f.Role = string(models.RolePatient)
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	f.Password, f.ConfirmPassword = string(password), string(confirm)
	return a.controller.Register(ctx, f)
}

func (a *App) Logout(ctx context.Context) error {
	if a.view() != controller.ViewAuthenticated {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	return a.controller.Logout(ctx)
}

// Whoami re-reads the signed-in profile from the document store and prints
// the dashboard. The cached profile is shown when the lookup fails.
func (a *App) Whoami(ctx context.Context) error {
	s := a.controller.State()
	if s.Profile == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}

	p, err := a.accounts.GetProfile(ctx, s.Profile.ID)
	if err != nil {
		fmt.Fprintf(a.out, "[error] %s\n", err)
	}
	if p == nil {
		p = s.Profile
	}
	renderDashboard(a.out, p)
	return err
}

// Status reports whether the account layer considers the user signed in.
func (a *App) Status(ctx context.Context) error {
	if a.accounts.IsAuthenticated(ctx) {
		fmt.Fprintln(a.out, "Signed in")
	} else {
		fmt.Fprintln(a.out, "Signed out")
	}
	return nil
}
