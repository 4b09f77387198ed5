package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/ledger/internal/logger"
)

var (
	// ErrReasonRequired is returned when a share is attempted without a reason
	ErrReasonRequired = errors.New("a reason is required to share an entry")
	// ErrTitleRequired is returned when a thread title is blank
	ErrTitleRequired = errors.New("thread title cannot be empty")
	// ErrInvalidEntryType is returned for entry types other than built, helped, or learned
	ErrInvalidEntryType = errors.New("entry type must be one of built, helped, learned")
	// ErrEntryLocked is returned by guarded edits once the edit window has passed
	ErrEntryLocked = errors.New("entry is locked; add an addendum instead")
	// ErrStoreNotLoaded is returned by providers used before Init or Load
	ErrStoreNotLoaded = errors.New("storage not loaded")
	// ErrContentRequired is returned for blank addenda and witness notes
	ErrContentRequired = errors.New("content cannot be empty")
	// ErrNameRequired is returned when a trusted contact has no display name
	ErrNameRequired = errors.New("display name cannot be empty")
	// ErrInvalidSetting is returned for unknown setting keys or unparseable values
	ErrInvalidSetting = errors.New("invalid setting")
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
