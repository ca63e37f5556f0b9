package cli

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^[+]?[(]?[0-9]{1,4}[)]?[-\s.]?[(]?[0-9]{1,4}[)]?[-\s.]?[0-9]{1,9}$`)

// registrationForm is what the register command collects.
type registrationForm struct {
	Name     string `validate:"required,min=2"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"required,eqfield=Password"`
}

// applicationForm is what the apply command collects. The phone and reason
// are only checked here; the ledger keeps the job reference and owner.
type applicationForm struct {
	Name   string `validate:"required,min=2"`
	Email  string `validate:"required,email"`
	Phone  string `validate:"required,phone"`
	Reason string `validate:"required,min=20"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		compact := strings.Join(strings.Fields(fl.Field().String()), "")
		return phonePattern.MatchString(compact)
	})
	return v
}

// validateForm trims every string field of form and validates it. The
// returned error lists one message per failing field.
func validateForm(v *validator.Validate, form any) error {
	switch f := form.(type) {
	case *registrationForm:
		f.Name, f.Email = strings.TrimSpace(f.Name), strings.TrimSpace(f.Email)
	case *applicationForm:
		f.Name, f.Email = strings.TrimSpace(f.Name), strings.TrimSpace(f.Email)
		f.Phone, f.Reason = strings.TrimSpace(f.Phone), strings.TrimSpace(f.Reason)
	}

	err := v.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	label := map[string]string{
		"Name":     "Name",
		"Email":    "Email",
		"Password": "Password",
		"Confirm":  "Password confirmation",
		"Phone":    "Contact number",
		"Reason":   "Reason",
	}[fe.Field()]

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "email":
		return "Please enter a valid email address"
	case "phone":
		return "Please enter a valid phone number"
	case "eqfield":
		return "Passwords do not match"
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
