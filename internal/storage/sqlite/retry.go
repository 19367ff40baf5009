package sqlite

import (
	"strings"
	"time"
)

const (
	maxBusyRetries   = 5
	busyRetryBackoff = 10 * time.Millisecond
)

// isSQLiteBusy reports whether err is a transient lock error.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// retryOnBusy runs fn, retrying with exponential backoff while SQLite
// reports the database as busy.
func retryOnBusy(fn func() error) error {
	delay := busyRetryBackoff
	var err error
	for attempt := 0; attempt < maxBusyRetries; attempt++ {
		err = fn()
		if !isSQLiteBusy(err) {
			return err
		}
		if attempt < maxBusyRetries-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
