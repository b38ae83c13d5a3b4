package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/keyring"
)

// ConfigCmd manages the PostgreSQL password kept in the OS keyring
type ConfigCmd struct {
	SetPassword    ConfigSetPasswordCmd    `cmd:"" name:"set-password" help:"Store the PostgreSQL password in the OS keyring."`
	Status         ConfigStatusCmd         `cmd:"" help:"Show where the PostgreSQL password comes from."`
	DeletePassword ConfigDeletePasswordCmd `cmd:"" name:"delete-password" help:"Remove the PostgreSQL password from the OS keyring."`
}

type ConfigSetPasswordCmd struct {
	// prompt is swapped out in tests
	prompt func(*string) error
}

func promptPassword(pw *string) error {
	return huh.NewInput().
		Title("PostgreSQL password").
		EchoMode(huh.EchoModePassword).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("password cannot be empty")
			}
			return nil
		}).
		Value(pw).
		Run()
}

func (cmd *ConfigSetPasswordCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("%w; set %s instead", keyring.ErrKeyringUnavailable, keyring.EnvPassword)
	}
	prompt := cmd.prompt
	if prompt == nil {
		prompt = promptPassword
	}
	var pw string
	if err := prompt(&pw); err != nil {
		return err
	}
	if err := keyring.SetPassword(pw); err != nil {
		return err
	}
	fmt.Println("✓ Password stored successfully in OS keyring")
	fmt.Println("  Keep the storage URL in config.yaml free of credentials")
	return nil
}

type ConfigStatusCmd struct{}

func (cmd *ConfigStatusCmd) Run(ctx *cli.Context) error {
	fmt.Printf("Config file: %s\n", ctx.ConfigPath)
	if ctx.Config != nil {
		fmt.Printf("Storage:     %s\n", maskPassword(ctx.Config.Storage))
	}

	if keyring.IsAvailable() {
		fmt.Println("✓ OS keyring is available")
	} else {
		fmt.Println("❌ OS keyring is not available on this system")
	}

	switch _, source := keyring.ResolvePassword(); source {
	case keyring.SourceEnv:
		fmt.Printf("✓ Password taken from %s\n", keyring.EnvPassword)
	case keyring.SourceKeyring:
		fmt.Println("✓ Password is stored in keyring")
	default:
		fmt.Println("ℹ No password configured")
	}
	return nil
}

type ConfigDeletePasswordCmd struct{}

func (cmd *ConfigDeletePasswordCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeletePassword(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no password found in keyring")
		}
		return err
	}
	fmt.Println("✓ Password deleted from OS keyring")
	return nil
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		if idx := strings.Index(connStr, "://"); idx != -1 {
			remaining := connStr[idx+3:]
			if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
				userInfo := remaining[:atIdx]
				if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
					return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
				}
			}
		}
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}

	return connStr
}
