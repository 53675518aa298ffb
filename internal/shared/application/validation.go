package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidCommand marks a command rejected by struct validation.
var ErrInvalidCommand = errors.New("invalid command")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func commandValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateCommand checks cmd's `validate` tags. Failures wrap
// ErrInvalidCommand and list the offending fields.
func ValidateCommand(cmd any) error {
	err := commandValidator().Struct(cmd)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	fields := make([]string, 0, len(validateErrs))
	for _, fe := range validateErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	sort.Strings(fields)
	return fmt.Errorf("%w: %s", ErrInvalidCommand, strings.Join(fields, ", "))
}
