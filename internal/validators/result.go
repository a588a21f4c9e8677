// Package validators checks candidate secrets against the services that
// issued them.
package validators

import (
	"context"

	"github.com/aleister1102/leakwatch/internal/models"
)

// Result is the verdict of one validation. Validators report every failure
// through Result and never return Go errors.
type Result struct {
	Validity models.Validity
	Error    string
	Metadata map[string]string
}

// IsValid reports an accepted credential
func (r Result) IsValid() bool {
	return r.Validity == models.ValidityValid
}

// Valid builds an accepting result. Empty metadata values are dropped.
func Valid(metadata map[string]string) Result {
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if v != "" {
			meta[k] = v
		}
	}
	return Result{Validity: models.ValidityValid, Metadata: meta}
}

// Invalid builds a definitive rejection
func Invalid(reason string) Result {
	return Result{Validity: models.ValidityInvalid, Error: reason}
}

// FailedToCheck builds a result for a call that produced no verdict
func FailedToCheck(err error) Result {
	msg := "validation failed"
	if err != nil {
		msg = err.Error()
	}
	return Result{Validity: models.ValidityFailedToCheck, Error: msg}
}

// Validator checks one payload shape against its issuer
type Validator interface {
	Validate(ctx context.Context, payload models.Payload) Result
}

// ValidatorFunc adapts a function to Validator
type ValidatorFunc func(ctx context.Context, payload models.Payload) Result

func (f ValidatorFunc) Validate(ctx context.Context, payload models.Payload) Result {
	return f(ctx, payload)
}

func unexpectedPayload(payload models.Payload) Result {
	kind := "nil"
	if payload != nil {
		kind = string(payload.Kind())
	}
	return Invalid("unexpected payload kind " + kind)
}
