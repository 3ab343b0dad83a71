package db

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// IsNotFound reports whether the error is GORM's missing-record sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether the error references a unique constraint.
// When constraintName is provided, the helper looks for the constraint text in
// the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// Postgres aborts with serialization_failure or deadlock_detected when two
// transactions contend on the same rows; SQLite surfaces the same condition as
// a busy/locked database.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// IsRetryableConflict reports whether the error is a store-detected write
// conflict that a fresh transaction attempt can resolve.
func IsRetryableConflict(err error) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgSerializationFailure || pgxErr.Code == pgDeadlockDetected
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgSerializationFailure || string(pqErr.Code) == pgDeadlockDetected
	}

	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE "+pgSerializationFailure) ||
		strings.Contains(msg, "SQLSTATE "+pgDeadlockDetected) ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// IsConnectivityError reports whether the error means the store could not be
// reached at all, as opposed to rejecting the operation. Only this class routes
// an invoice into the offline queue.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := err.Error()
	for _, fragment := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"failed to connect",
		"bad connection",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
