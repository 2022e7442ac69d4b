package service

import (
	"errors"
	"fmt"

	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
)

// classify keeps caller-facing kinds intact and turns anything else coming
// back from a collaborator into an upstream failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, errs.ErrUpstream):
		return err
	case errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrAlreadyExists),
		errs.IsValidation(err):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return errs.Upstream(op, err)
	}
}
