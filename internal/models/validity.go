package models

import "fmt"

// Validity is the checked state of a Finding or Occurrence
type Validity string

const (
	// ValidityUnknown is the state before any validator ran
	ValidityUnknown Validity = "unknown"
	// ValidityValid means the issuer accepted the credential
	ValidityValid Validity = "valid"
	// ValidityInvalid means the issuer rejected the credential
	ValidityInvalid Validity = "invalid"
	// ValidityFailedToCheck means the validator could not reach a verdict
	ValidityFailedToCheck Validity = "failed_to_check"
)

// ParseValidity parses a stored validity string. The empty string is unknown.
func ParseValidity(s string) (Validity, error) {
	switch Validity(s) {
	case "", ValidityUnknown:
		return ValidityUnknown, nil
	case ValidityValid, ValidityInvalid, ValidityFailedToCheck:
		return Validity(s), nil
	default:
		return ValidityUnknown, fmt.Errorf("unknown validity %q", s)
	}
}

func (v Validity) String() string {
	if v == "" {
		return string(ValidityUnknown)
	}
	return string(v)
}
