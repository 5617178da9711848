package unit

import (
	"errors"
	"fmt"

	"maisonette/database/repository"
	"maisonette/utils"
)

func notFoundOr(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NewNotFoundError(what + " not found")
	}
	return fmt.Errorf("unit: %s: %w", what, err)
}

func rangeError(err error) error {
	return &utils.AppError{Kind: utils.KindValidation, Message: "invalid dates", Err: err}
}
