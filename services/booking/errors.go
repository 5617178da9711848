package booking

import (
	"errors"
	"fmt"

	"maisonette/database/repository"
	"maisonette/models"
	"maisonette/utils"
)

// notFoundOr converts a repository miss into a not-found AppError and
// wraps anything else.
func notFoundOr(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NewNotFoundError(what + " not found")
	}
	return fmt.Errorf("booking: %s: %w", what, err)
}

func rangeError(err error) error {
	return &utils.AppError{Kind: utils.KindValidation, Message: "invalid dates", Err: err}
}

func unavailableError(a models.Availability) error {
	return utils.NewConflictError("dates not available: " + a.Reason)
}
