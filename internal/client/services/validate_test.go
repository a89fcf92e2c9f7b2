package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegistration_Order(t *testing.T) {
	valid := RegistrationForm{
		Name:            "Asha",
		Email:           "asha@x.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            "patient",
	}

	tests := []struct {
		name   string
		mutate func(f *RegistrationForm)
		want   string
	}{
		{"empty name", func(f *RegistrationForm) { f.Name = "" }, MsgFillAllFields},
		{"empty email", func(f *RegistrationForm) { f.Email = "" }, MsgFillAllFields},
		{"empty password", func(f *RegistrationForm) { f.Password = "" }, MsgFillAllFields},
		{"empty role", func(f *RegistrationForm) { f.Role = "" }, MsgFillAllFields},
		{"empty beats short", func(f *RegistrationForm) { f.Name = ""; f.Password = "123" }, MsgFillAllFields},
		{"short password", func(f *RegistrationForm) { f.Password = "12345"; f.ConfirmPassword = "12345" }, MsgPasswordTooShort},
		{"short beats mismatch", func(f *RegistrationForm) { f.Password = "123" }, MsgPasswordTooShort},
		{"mismatch", func(f *RegistrationForm) { f.ConfirmPassword = "secret2" }, MsgPasswordsMismatch},
		{"mismatch beats email", func(f *RegistrationForm) { f.ConfirmPassword = "x"; f.Email = "bad" }, MsgPasswordsMismatch},
		{"bad email", func(f *RegistrationForm) { f.Email = "asha.x.com" }, MsgInvalidEmail},
		{"email without tld", func(f *RegistrationForm) { f.Email = "asha@x" }, MsgInvalidEmail},
		{"email with space", func(f *RegistrationForm) { f.Email = "as ha@x.com" }, MsgInvalidEmail},
		{"unknown role", func(f *RegistrationForm) { f.Role = "nurse" }, MsgInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			err := ValidateRegistration(f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Equal(t, tt.want, err.Error())
		})
	}

	require.NoError(t, ValidateRegistration(valid))
}

func TestValidateRegistration_PasswordLengthCountsCharacters(t *testing.T) {
	f := RegistrationForm{Name: "a", Email: "a@b.co", Password: "пароль", ConfirmPassword: "пароль", Role: "doctor"}
	require.NoError(t, ValidateRegistration(f))
}

func TestValidateLogin(t *testing.T) {
	assert.ErrorIs(t, validateLogin("", "x"), ErrValidation)
	assert.ErrorIs(t, validateLogin("x@x.com", ""), ErrValidation)
	assert.NoError(t, validateLogin("x@x.com", "x"))
}
