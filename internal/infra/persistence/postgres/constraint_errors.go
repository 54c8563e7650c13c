package postgres

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func isNotNullConstraintViolation(err error) bool {
	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "null value") ||
		strings.Contains(errMsg, "not-null") ||
		strings.Contains(errMsg, "23502") // not_null_violation
}

func isCheckConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "23514") // check_violation
}
