package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Setting keys.
const (
	keyCameraIndex = "camera_index"
	keyFaceBackend = "face_backend"
)

// Settings are the operator-tunable values persisted across restarts.
// They are applied at service start; a PUT takes effect on the next start.
type Settings struct {
	// CameraIndex pins the capture device; -1 means probe automatically.
	CameraIndex int `json:"camera_index"`

	// FaceBackend overrides the configured face detector backend.
	// Empty means use the config file value.
	FaceBackend string `json:"face_backend"`
}

// DefaultSettings returns the settings used when nothing is stored yet.
func DefaultSettings() *Settings {
	return &Settings{
		CameraIndex: -1,
		FaceBackend: "",
	}
}

// SettingsRepository provides access to persisted settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Load reads the stored settings, falling back to defaults for keys that
// were never written.
func (r *SettingsRepository) Load() (*Settings, error) {
	settings := DefaultSettings()

	value, err := r.get(keyCameraIndex)
	if err != nil {
		return nil, err
	}
	if value != "" {
		idx, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid stored camera_index %q: %w", value, err)
		}
		settings.CameraIndex = idx
	}

	backend, err := r.get(keyFaceBackend)
	if err != nil {
		return nil, err
	}
	settings.FaceBackend = backend

	return settings, nil
}

// Save persists the settings.
func (r *SettingsRepository) Save(settings *Settings) error {
	if err := r.set(keyCameraIndex, strconv.Itoa(settings.CameraIndex)); err != nil {
		return err
	}
	return r.set(keyFaceBackend, settings.FaceBackend)
}

// get returns the stored value for a key, or "" when absent.
func (r *SettingsRepository) get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// set upserts a key-value pair.
func (r *SettingsRepository) set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}
