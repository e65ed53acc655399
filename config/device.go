package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DeviceStore persists the per-install device identifier sent to the token
// endpoint. It plays the role of a vendor-scoped device UUID: stable across
// launches, random on first run.
type DeviceStore struct {
	path string
}

type deviceFile struct {
	DeviceID string `json:"device_id"`
}

func NewDeviceStore(path string) *DeviceStore {
	return &DeviceStore{path: path}
}

// DeviceID returns the stored identifier, creating and saving one if the file
// does not exist yet. With an empty path the identifier is ephemeral.
func (d *DeviceStore) DeviceID() (uuid.UUID, error) {
	if d.path == "" {
		return uuid.New(), nil
	}

	id, err := d.load()
	if err == nil {
		return id, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return uuid.Nil, err
	}

	id = uuid.New()
	if err := d.save(id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (d *DeviceStore) load() (uuid.UUID, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return uuid.Nil, err
	}
	var raw deviceFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse device file %s: %w", d.path, err)
	}
	id, err := uuid.Parse(raw.DeviceID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid device id in %s: %w", d.path, err)
	}
	return id, nil
}

func (d *DeviceStore) save(id uuid.UUID) error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(d.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(deviceFile{DeviceID: id.String()})
}
