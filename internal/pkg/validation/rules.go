package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Form rule constants
const (
	PasswordMinLength = 6
	NameMinLength     = 2
)

// Field messages shown next to the offending input
const (
	MsgInvalidEmail  = "Invalid email address"
	MsgPasswordShort = "Password must be at least 6 characters"
	MsgNameShort     = "Full name must be at least 2 characters"
	MsgInvalidRole   = "Role must be one of: student, lecturer, admin"
)

// SignInForm is the payload of the sign-in screen
type SignInForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignUpForm is the payload of the sign-up screen
type SignUpForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,min=2"`
	Role     string `json:"role" validate:"required,oneof=student lecturer admin"`
}

// Normalize trims input and applies the form defaults
func (f *SignUpForm) Normalize() {
	f.Email = strings.TrimSpace(f.Email)
	f.FullName = strings.TrimSpace(f.FullName)
	f.Role = strings.ToLower(strings.TrimSpace(f.Role))
	if f.Role == "" {
		f.Role = "student"
	}
}

// Normalize trims input
func (f *SignInForm) Normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

// FieldErrors maps a json field name onto its message
type FieldErrors map[string]string

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks a form and returns nil when it is valid
func Validate(form interface{}) FieldErrors {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "email":
		return MsgInvalidEmail
	case "password":
		return MsgPasswordShort
	case "fullName":
		return MsgNameShort
	case "role":
		return MsgInvalidRole
	}

	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " validation failed: " + fe.Tag()
	}
}
