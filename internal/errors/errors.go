package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/ktrou69-commits/energy-coins/internal/logger"
)

var (
	// ErrInvalidTimeFormat is returned when a time-of-day is not HH:MM
	ErrInvalidTimeFormat = errors.New("invalid time format (expected HH:MM)")
	// ErrInvalidDateFormat is returned when a date is not YYYY-MM-DD
	ErrInvalidDateFormat = errors.New("invalid date format (expected YYYY-MM-DD)")
	// ErrUnknownCategoryOrPriority is the parent of ErrUnknownCategory and ErrUnknownPriority
	ErrUnknownCategoryOrPriority = errors.New("unknown category or priority")
	ErrUnknownCategory           = fmt.Errorf("%w: category", ErrUnknownCategoryOrPriority)
	ErrUnknownPriority           = fmt.Errorf("%w: priority", ErrUnknownCategoryOrPriority)
	// ErrPersistence is returned when the durable write of the store failed.
	// The in-memory change has already been applied when this is returned.
	ErrPersistence = errors.New("failed to persist data")
	// ErrActionNotFound is returned when an update targets an id the day does not hold
	ErrActionNotFound = errors.New("action not found")
	// ErrInvalidAction is returned when an action fails validation
	ErrInvalidAction = errors.New("invalid action")
)

// Is reports whether any error in err's tree matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

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
