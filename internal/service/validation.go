package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"showbiz/internal/errors"
	"showbiz/internal/model"
)

var validate = validator.New()

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", errors.Validation("invalid email address")
	}
	return email, nil
}

// normalizePhone returns the E.164 form of raw, reading numbers without a country
// code as belonging to region.
func normalizePhone(raw, region string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", errors.Validation("invalid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// canonical returns the entry of allowed equal to v ignoring case.
func canonical(v string, allowed []string) (string, bool) {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(v), a) {
			return a, true
		}
	}
	return "", false
}

func validateGender(gender string) (string, error) {
	g, ok := canonical(gender, model.Genders)
	if !ok {
		return "", errors.Validation("gender must be one of: " + strings.Join(model.Genders, ", "))
	}
	return g, nil
}

// validateRole checks hirer roles against the fixed list. Talent roles are free-form.
func validateRole(kind model.Kind, role string) (string, error) {
	role = strings.TrimSpace(role)
	if kind != model.KindHirer {
		return role, nil
	}
	r, ok := canonical(role, model.HirerRoles)
	if !ok {
		return "", errors.Validation("role must be one of: " + strings.Join(model.HirerRoles, ", "))
	}
	return r, nil
}

// missingFields names the empty entries of fields, in order.
func missingFields(fields [][2]string) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	return missing
}
