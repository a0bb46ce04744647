// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios without
// depending on a particular SQL driver.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrUsernameExists is returned when the unique constraint on
// users.username rejects an insert.
var ErrUsernameExists = errors.New("username already exists")

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrTodoNotFound is returned when no todo matches both the id and the
// owner. A todo that exists but belongs to someone else is reported the
// same way so callers cannot discover other users' ids.
var ErrTodoNotFound = errors.New("todo not found")

// ErrOwnerNotFound is returned when a todo is created for a user id that
// no longer exists.
var ErrOwnerNotFound = errors.New("owner not found")

// isUniqueViolation reports whether err is a duplicate key error from one
// of the supported drivers.
func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// isForeignKeyViolation reports whether err is a rejected foreign key
// reference from one of the supported drivers.
func isForeignKeyViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1452
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}
