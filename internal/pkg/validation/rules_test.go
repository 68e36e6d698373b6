package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_SignUp(t *testing.T) {
	tests := []struct {
		name string
		form SignUpForm
		want FieldErrors
	}{
		{
			name: "valid",
			form: SignUpForm{Email: "ada@uni.edu", Password: "secret", FullName: "Ada", Role: "student"},
			want: nil,
		},
		{
			name: "short password",
			form: SignUpForm{Email: "ada@uni.edu", Password: "12345", FullName: "Ada", Role: "student"},
			want: FieldErrors{"password": MsgPasswordShort},
		},
		{
			name: "bad email and short name",
			form: SignUpForm{Email: "not-an-email", Password: "secret", FullName: "A", Role: "admin"},
			want: FieldErrors{"email": MsgInvalidEmail, "fullName": MsgNameShort},
		},
		{
			name: "unknown role",
			form: SignUpForm{Email: "ada@uni.edu", Password: "secret", FullName: "Ada", Role: "dean"},
			want: FieldErrors{"role": MsgInvalidRole},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(&tt.form))
		})
	}
}

func TestValidate_SignIn(t *testing.T) {
	assert.Nil(t, Validate(&SignInForm{Email: "ada@uni.edu", Password: "whatever"}))
	assert.Equal(t, FieldErrors{"email": MsgInvalidEmail, "password": MsgPasswordShort}, Validate(&SignInForm{}))
}

func TestSignUpForm_NormalizeDefaultsRole(t *testing.T) {
	f := SignUpForm{Email: "  ada@uni.edu ", FullName: " Ada "}
	f.Normalize()
	assert.Equal(t, "student", f.Role)
	assert.Equal(t, "ada@uni.edu", f.Email)
	assert.Equal(t, "Ada", f.FullName)
}
