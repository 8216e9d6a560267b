package ui

import (
	"encoding/json"
	"log"

	"github.com/quasilyte/gdata"
)

// SavedSettings is the UI state persisted between runs.
type SavedSettings struct {
	Fullscreen bool `json:"fullscreen"`
	Debug      bool `json:"debug"`
}

// settingsStore wraps gdata for loading and saving UI settings. A nil
// manager (storage unavailable) degrades to in-memory settings.
type settingsStore struct {
	manager *gdata.Manager
}

func newSettingsStore() *settingsStore {
	m, err := gdata.Open(gdata.Config{
		AppName: "handpong",
	})
	if err != nil {
		log.Printf("warning: could not initialize settings storage: %v", err)
		return &settingsStore{}
	}
	return &settingsStore{manager: m}
}

// Load returns the saved settings, or nil when none exist.
func (s *settingsStore) Load() *SavedSettings {
	if s.manager == nil {
		return nil
	}

	data, err := s.manager.LoadItem("settings")
	if err != nil {
		log.Printf("warning: could not load settings: %v", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var saved SavedSettings
	if err := json.Unmarshal(data, &saved); err != nil {
		log.Printf("warning: could not parse saved settings: %v", err)
		return nil
	}
	return &saved
}

// Save persists the settings. Failures are logged, not fatal.
func (s *settingsStore) Save(saved *SavedSettings) {
	if s.manager == nil {
		return
	}

	data, err := json.Marshal(saved)
	if err != nil {
		log.Printf("warning: could not serialize settings: %v", err)
		return
	}
	if err := s.manager.SaveItem("settings", data); err != nil {
		log.Printf("warning: could not save settings: %v", err)
	}
}
