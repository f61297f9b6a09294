// Package gormpersistence contains the GORM implementations of the repository
// interfaces. Driver errors are mapped onto repository sentinels here so the
// service layer never imports gorm.
package gormpersistence

import "strings"

// isDuplicateEntryError checks for common unique constraint error strings.
// TODO: replace with driver-specific error code checks.
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "Duplicate entry") || // MySQL
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
