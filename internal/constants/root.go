package constants

import "time"

const (
	AppName            = "coins"
	DefaultKeyringUser = "database-password"
	DefaultConfigDir   = "~/.config/coins"
	DefaultConfigPath  = "~/.config/coins/config.yaml"
	DefaultStoragePath = "~/.config/coins/coins.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	MinutesPerHour = 60
	MinutesPerDay  = 24 * 60
	HoursPerDay    = 24

	// DefaultSlotDurationMin is the duration requested from the slot finder when none is given
	DefaultSlotDurationMin = 60

	// History holds at most this many title suggestions
	MaxHistoryEntries = 50
	MaxSuggestions    = 5

	// ProductiveDayMinHours is the amount of planned time that makes a day count as productive
	ProductiveDayMinHours = 2.0

	// A week needs this many productive days, a year this many productive months
	ProductiveWeekMinDays   = 3
	ProductiveYearMinMonths = 6

	// Persistence retry policy
	PersistMaxRetries = 3
	PersistRetryDelay = 50 * time.Millisecond

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "coins-"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "coins-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.ktrou69.coins"
	TrayAppExecutable      = "coins-tray"

	// Export format version written into JSON envelopes
	ExportVersion = "1.0"
)
