package portal

import (
	"errors"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

// callsignPattern accepts amateur callsigns: a one or two character prefix
// with a digit, then letters or digits ending in a letter.
var callsignPattern = regexp.MustCompile(`^(([1-9][A-Z])|([A-PR-Z][0-9])|([A-PR-Z][A-Z][0-9]))[0-9A-Z]*[A-Z]$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterValidation("callsign", func(fl validator.FieldLevel) bool {
			return callsignPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// IsValidCallsign reports whether callsign (already upper-cased) is well formed.
func IsValidCallsign(callsign string) bool {
	return callsignPattern.MatchString(callsign)
}

// formMessages maps "Field.tag" to the message shown next to the field.
var formMessages = map[string]string{
	"Callsign.required":        "Please enter your callsign.",
	"Callsign.max":             "Callsign is too long.",
	"Callsign.callsign":        "Not a valid callsign.",
	"Password.min":             "Password must have at least 6 characters.",
	"ConfirmPassword.required": "Please confirm password.",
	"ConfirmPassword.eqfield":  "Password did not match.",
	"TxMHz.gte":                "TX out of range.",
	"TxMHz.lte":                "TX out of range.",
	"RxMHz.gte":                "RX out of range.",
	"RxMHz.lte":                "RX out of range.",
}

// validateForm returns one message per failing field, keyed by struct field
// name. passwordRequired overrides the message for an empty Password, which
// differs between registration and login.
func validateForm(form interface{}, passwordRequired string) map[string]string {
	err := getValidator().Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"form": err.Error()}
	}

	msgs := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := fe.Field() + "." + fe.Tag()
		switch {
		case key == "Password.required":
			msgs[fe.Field()] = passwordRequired
		case formMessages[key] != "":
			msgs[fe.Field()] = formMessages[key]
		default:
			msgs[fe.Field()] = fe.Error()
		}
	}

	// A mismatch is only reported once the password itself is acceptable.
	if _, bad := msgs["Password"]; bad && msgs["ConfirmPassword"] == formMessages["ConfirmPassword.eqfield"] {
		delete(msgs, "ConfirmPassword")
	}
	return msgs
}
