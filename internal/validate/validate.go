package validate

import (
	"regexp"
	"strings"
	"time"
)

// Field identifies one input of the intake form.
type Field string

const (
	FieldName          Field = "name"
	FieldBusinessName  Field = "business_name"
	FieldMobileNumber  Field = "mobile_number"
	FieldEmail         Field = "email"
	FieldAgreedToTerms Field = "agreed_to_terms"
)

// Profile selects which optional inputs and steps a product variant enables.
// There is one core and two profiles, not two codepaths.
type Profile struct {
	// RequireEmail enables the email input and makes it mandatory.
	// When false the form has no email field at all.
	RequireEmail bool
	// SendingDelay is how long the branded "sending" step is shown after a
	// successful submit before the success view appears. Zero skips the step.
	SendingDelay time.Duration
}

// DefaultProfile matches the primary product variant: email required,
// 3 second sending animation.
var DefaultProfile = Profile{
	RequireEmail: true,
	SendingDelay: 3 * time.Second,
}

// Fields holds the raw values entered into the intake form.
type Fields struct {
	Name          string
	BusinessName  string
	MobileNumber  string
	Email         string
	AgreedToTerms bool
}

var (
	mobileRegex = regexp.MustCompile(`^[\d\s\-\+\(\)]{7,20}$`)
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Check evaluates every rule independently and returns one message per
// failing field. Fields whose rule passes have no entry. An empty map means
// the form may be submitted.
func Check(f Fields, p Profile) map[Field]string {
	errs := make(map[Field]string)

	if strings.TrimSpace(f.Name) == "" {
		errs[FieldName] = "Name is required"
	}
	if strings.TrimSpace(f.BusinessName) == "" {
		errs[FieldBusinessName] = "Business name is required"
	}
	if strings.TrimSpace(f.MobileNumber) == "" {
		errs[FieldMobileNumber] = "Mobile number is required"
	} else if !mobileRegex.MatchString(f.MobileNumber) {
		errs[FieldMobileNumber] = "Please enter a valid mobile number"
	}
	if p.RequireEmail {
		if strings.TrimSpace(f.Email) == "" {
			errs[FieldEmail] = "Email is required"
		} else if !emailRegex.MatchString(f.Email) {
			errs[FieldEmail] = "Please enter a valid email address"
		}
	}
	if !f.AgreedToTerms {
		errs[FieldAgreedToTerms] = "You must agree to the terms"
	}

	return errs
}
