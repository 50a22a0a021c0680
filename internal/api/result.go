package api

import (
	"fmt"

	apperrors "github.com/exclusive-store/storefront/internal/errors"
)

// Result is the tagged outcome of a single API call. Exactly one of the
// following holds:
//   - OK true: Data carries the decoded JSON document.
//   - OK false, Err set: transport-level failure (connection, encode, decode).
//   - OK false, Err nil: the server answered with a non-success status;
//     Status and Message describe it.
type Result struct {
	OK      bool
	Status  int
	Data    any
	Message string
	Err     error
}

// Failure converts a failed Result into an application error; it returns
// nil for a successful Result. context is prepended to the message.
func (r Result) Failure(context string) error {
	if r.OK {
		return nil
	}
	if r.Err != nil {
		return apperrors.Wrapf(r.Err, apperrors.ErrCodeUnavailable, "%s", context)
	}
	if r.Status == 404 {
		return apperrors.NotFoundf("%s: %s", context, r.Message)
	}
	if r.Status == 401 || r.Status == 403 {
		return apperrors.Unauthorized(fmt.Sprintf("%s: %s", context, r.Message))
	}
	return apperrors.Unavailablef("%s: %s", context, r.Message)
}

// Succeeded reports whether the call reached the server and the envelope,
// if present, did not flag an application-level failure.
func (r Result) Succeeded() bool {
	if !r.OK {
		return false
	}
	env := EnvelopeOf(r.Data)
	if env == nil {
		return true
	}
	return env.Succeeded
}
