package postgres

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Helper functions for database error classification.
func isUniqueConstraintViolation(err error) bool {
	// Check for GORM's duplicate key error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// Fall back to message patterns; the sqlite driver used in tests does not
	// translate constraint errors into GORM sentinels.
	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "23505") // PostgreSQL unique_violation error code
}

func isCheckConstraintViolation(err error) bool {
	// Check for GORM's check constraint violation error
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "check constraint") ||
		strings.Contains(errMsg, "23514") // PostgreSQL check_violation error code
}

func isLockContention(err error) bool {
	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "deadlock detected") ||
		strings.Contains(errMsg, "lock timeout") ||
		strings.Contains(errMsg, "could not obtain lock") ||
		strings.Contains(errMsg, "database is locked") || // SQLITE_BUSY
		strings.Contains(errMsg, "55p03") || // PostgreSQL lock_not_available
		strings.Contains(errMsg, "40p01") // PostgreSQL deadlock_detected
}
