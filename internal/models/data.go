package models

// HistoryEntry counts how often a title was saved, for suggestions
type HistoryEntry struct {
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// Data is the whole persisted document
type Data struct {
	Settings      Settings       `json:"settings"`
	Days          map[string]Day `json:"days"`
	ActionHistory []HistoryEntry `json:"actionHistory"`
}

// NewData returns an empty document with default settings
func NewData() *Data {
	return &Data{
		Settings:      DefaultSettings(),
		Days:          map[string]Day{},
		ActionHistory: []HistoryEntry{},
	}
}

// Normalize fills zero-valued parts left behind by older or partial documents
func (d *Data) Normalize() {
	defaults := DefaultSettings()
	if d.Settings.SleepStart == "" {
		d.Settings.SleepStart = defaults.SleepStart
	}
	if d.Settings.SleepEnd == "" {
		d.Settings.SleepEnd = defaults.SleepEnd
	}
	if d.Settings.Theme == "" {
		d.Settings.Theme = defaults.Theme
	}
	if d.Settings.Life.LifeExpectancy == 0 {
		d.Settings.Life.LifeExpectancy = defaults.Life.LifeExpectancy
	}
	if d.Days == nil {
		d.Days = map[string]Day{}
	}
	if d.ActionHistory == nil {
		d.ActionHistory = []HistoryEntry{}
	}
	for date, day := range d.Days {
		if day.Actions == nil {
			day.Actions = []Action{}
			d.Days[date] = day
		}
	}
}

// Clone returns a deep copy safe to hand to another goroutine
func (d *Data) Clone() *Data {
	out := &Data{
		Settings:      d.Settings,
		Days:          make(map[string]Day, len(d.Days)),
		ActionHistory: make([]HistoryEntry, len(d.ActionHistory)),
	}
	for k, v := range d.Days {
		out.Days[k] = v.Clone()
	}
	copy(out.ActionHistory, d.ActionHistory)
	return out
}

// ActionCount returns the number of actions across all days
func (d *Data) ActionCount() int {
	n := 0
	for _, day := range d.Days {
		n += len(day.Actions)
	}
	return n
}
