package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	FullName        string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6,upperchar,numericchar"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

func violations(t *testing.T, err error) []Violation {
	t.Helper()
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	return valErr.Violations()
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(registerForm{
		FullName:        "Jane Doe",
		Email:           "jane@x.com",
		Password:        "Abcdef1",
		ConfirmPassword: "Abcdef1",
	})
	assert.NoError(t, err)
}

func TestValidate_CollectsAllFailingFields(t *testing.T) {
	err := Validate(registerForm{
		FullName:        "",
		Email:           "not-an-email",
		Password:        "Abcdef1",
		ConfirmPassword: "Abcdef1",
	})

	vs := violations(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "FullName", vs[0].Field)
	assert.Equal(t, "required", vs[0].Tag)
	assert.Equal(t, "Email", vs[1].Field)
	assert.Equal(t, "email", vs[1].Tag)
}

func TestValidate_UppercaseRule(t *testing.T) {
	err := Validate(registerForm{
		FullName:        "Jane Doe",
		Email:           "jane@x.com",
		Password:        "abcdef1",
		ConfirmPassword: "abcdef1",
	})

	vs := violations(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "Password", vs[0].Field)
	assert.Equal(t, "upperchar", vs[0].Tag)
	assert.Equal(t, "must contain at least one uppercase letter", vs[0].Message)
}

func TestValidate_NumericRule(t *testing.T) {
	err := Validate(registerForm{
		FullName:        "Jane Doe",
		Email:           "jane@x.com",
		Password:        "Abcdefg",
		ConfirmPassword: "Abcdefg",
	})

	vs := violations(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "numericchar", vs[0].Tag)
}

func TestValidate_PasswordMismatch(t *testing.T) {
	err := Validate(registerForm{
		FullName:        "Jane Doe",
		Email:           "jane@x.com",
		Password:        "Abcdef1",
		ConfirmPassword: "Abcdef2",
	})

	vs := violations(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "ConfirmPassword", vs[0].Field)
	assert.Equal(t, "eqfield", vs[0].Tag)
}

func TestValidate_ShortPassword(t *testing.T) {
	err := Validate(registerForm{
		FullName:        "Jane Doe",
		Email:           "jane@x.com",
		Password:        "Ab1",
		ConfirmPassword: "Ab1",
	})

	vs := violations(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "min", vs[0].Tag)
	assert.Equal(t, "6", vs[0].Param)
}
