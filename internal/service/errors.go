package service

import (
	"errors"

	"github.com/nxsys/task-tracker/internal/policy"
	"github.com/nxsys/task-tracker/internal/repository"
	apperrors "github.com/nxsys/task-tracker/pkg/util/errorutil"
)

// storeError maps repository sentinels onto domain errors.
func storeError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", nil)
	case errors.Is(err, repository.ErrForeignKey):
		return apperrors.NewConflict("referenced record is missing or still in use", nil)
	}
	return apperrors.NewInternalError(err)
}

// authorize evaluates op and converts a denial into a domain error.
func authorize(op policy.Operation, actor policy.Actor, res policy.Resource) error {
	decision := policy.Evaluate(op, actor, res)
	switch decision.Outcome {
	case policy.Allow:
		return nil
	case policy.DenyInvalid:
		return apperrors.NewBadRequest(decision.Reason)
	}
	return apperrors.NewForbidden(decision.Reason)
}
