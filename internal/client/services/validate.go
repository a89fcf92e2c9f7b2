package services

import (
	"regexp"
	"unicode/utf8"

	"github.com/dmitrijs2005/clinicauth/internal/client/models"
	"github.com/dmitrijs2005/clinicauth/internal/common"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegistrationForm is the register view's input.
type RegistrationForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

// ValidateRegistration runs the register form checks in display order:
// empty fields, password length, confirmation, email shape, role.
func ValidateRegistration(f RegistrationForm) error {
	return validateRegistration(f.Name, f.Email, f.Password, f.Role, &f.ConfirmPassword)
}

func validateRegistration(name, email, password, role string, confirm *string) error {
	if name == "" || email == "" || password == "" || role == "" {
		return &ValidationError{Message: MsgFillAllFields}
	}
	if utf8.RuneCountInString(password) < common.MinPasswordLength {
		return &ValidationError{Field: "password", Message: MsgPasswordTooShort}
	}
	if confirm != nil && *confirm != password {
		return &ValidationError{Field: "confirmPassword", Message: MsgPasswordsMismatch}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: MsgInvalidEmail}
	}
	if _, ok := models.ParseRole(role); !ok {
		return &ValidationError{Field: "role", Message: MsgInvalidRole}
	}
	return nil
}

func validateLogin(email, password string) error {
	if email == "" || password == "" {
		return &ValidationError{Message: MsgFillAllFields}
	}
	return nil
}
