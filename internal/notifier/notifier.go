// Package notifier delivers desktop notifications through the coins-tray companion app.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/logger"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// ErrTrayNotRunning is returned when no live tray process owns the lockfile
var ErrTrayNotRunning = errors.New(constants.TrayAppExecutable + " is not running")

// Sender delivers a notification text
type Sender interface {
	Notify(ctx context.Context, text string) error
}

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// endpoint is what the tray app advertises in its lockfile: port|pid|secret
type endpoint struct {
	Port   int
	PID    int
	Secret string
}

type Notifier struct {
	client     *http.Client
	retries    int
	retryDelay time.Duration
}

func New() *Notifier {
	return &Notifier{
		client:     &http.Client{Timeout: 5 * time.Second},
		retries:    constants.NotifyMaxRetries,
		retryDelay: constants.NotifyRetryDelay,
	}
}

// Notify looks up the tray app and posts text to it, retrying transient HTTP failures
func (n *Notifier) Notify(ctx context.Context, text string) error {
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		return err
	}
	ep, err := findAndValidateTrayProcess(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	payload := WebhookPayload{Text: text, DurationMs: constants.NotificationDurationMs}
	for attempt := 1; ; attempt++ {
		err = n.send(ctx, ep, payload)
		if err == nil || attempt >= n.retries {
			return err
		}
		logger.Debug("Notification attempt failed", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.retryDelay):
		}
	}
}

// GetTrayAppConfigDir returns the configuration directory used by the tray application.
// The tray app may relocate its lockfile through lockfile_dir in its settings.json.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(trayConfigDir, "settings.json"))
	if err != nil {
		return trayConfigDir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err == nil {
		if dir := store.Settings.LockfileDir; dir != nil && *dir != "" {
			return *dir, nil
		}
	}
	return trayConfigDir, nil
}

func parseLockfile(content string) (endpoint, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return endpoint{}, errors.New("lockfile is malformed")
	}

	if strings.TrimSpace(parts[0]) == "" {
		return endpoint{}, errors.New("port in lockfile is empty")
	}
	port, err := strconv.Atoi(parts[0])
	if err != nil {
		return endpoint{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return endpoint{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return endpoint{}, errors.New("invalid process ID in lockfile")
	}
	if strings.TrimSpace(parts[2]) == "" {
		return endpoint{}, errors.New("secret in lockfile is empty")
	}
	return endpoint{Port: port, PID: pid, Secret: parts[2]}, nil
}

func findAndValidateTrayProcess(lockfilePath string) (endpoint, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return endpoint{}, ErrTrayNotRunning
	}
	ep, err := parseLockfile(string(content))
	if err != nil {
		return endpoint{}, err
	}

	process, err := findProcessFunc(ep.PID)
	if err != nil || process == nil {
		return endpoint{}, ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayAppExecutable) {
		return endpoint{}, fmt.Errorf("process with PID %d is not %s (is %s)", ep.PID, constants.TrayAppExecutable, process.Executable())
	}
	return ep, nil
}

func (n *Notifier) send(ctx context.Context, ep endpoint, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://127.0.0.1:%d", ep.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Coins-Secret", ep.Secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(msg))
}
