package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every entity; validator caches struct metadata
// and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldErrors maps a validator failure on a named struct field to the
// matching domain sentinel.
func fieldErrors(err error, sentinels map[string]error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	for _, fe := range verrs {
		if sentinel, ok := sentinels[fe.StructField()]; ok {
			return fmt.Errorf("%w: %w", ErrValidation, sentinel)
		}
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
