package constants

const (
	// Setting keys as stored by the SQL backends
	SettingSleepStart    = "sleep_start"
	SettingSleepEnd      = "sleep_end"
	SettingTheme         = "theme"
	SettingNotifyMorning = "notify_morning"
	SettingNotifySleep   = "notify_sleep"
	SettingBirthDate     = "birth_date"
	SettingLifeExpect    = "life_expectancy"

	// Default Settings Values
	DefaultSleepStart    = "22:30"
	DefaultSleepEnd      = "08:30"
	DefaultTheme         = "dark"
	DefaultNotifyMorning = true
	DefaultNotifySleep   = true
	DefaultLifeExpect    = 80

	MinLifeExpect = 1
	MaxLifeExpect = 120

	ThemeDark  = "dark"
	ThemeLight = "light"
)
