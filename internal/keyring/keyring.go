// Package keyring keeps the PostgreSQL password out of config files.
package keyring

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
)

// EnvPassword overrides the stored password when set
const EnvPassword = "COINS_DB_PASSWORD"

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetPassword retrieves the database password from the OS keyring
func GetPassword() (string, error) {
	pw, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return pw, nil
}

// SetPassword stores the database password in the OS keyring
func SetPassword(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, password); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// DeletePassword removes the database password from the OS keyring
func DeletePassword() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable is a best-effort check that the OS keyring answers at all
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Source names where a password came from
type Source string

const (
	SourceEnv     Source = "environment"
	SourceKeyring Source = "keyring"
	SourceNone    Source = "none"
)

// ResolvePassword returns the environment variable if set, else the keyring entry.
// No password at all is valid: .pgpass or trust auth may still let the connection in.
func ResolvePassword() (string, Source) {
	if v := os.Getenv(EnvPassword); v != "" {
		return v, SourceEnv
	}
	if v, err := GetPassword(); err == nil && v != "" {
		return v, SourceKeyring
	}
	return "", SourceNone
}
