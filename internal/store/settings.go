package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"basegraph.app/autofix/internal/model"
)

// SettingsStore persists the auto-fix settings file.
type SettingsStore interface {
	// Load reads the settings file merged over defaults. A missing file is
	// created with defaults; an unparsable file is logged and ignored.
	Load(ctx context.Context) (model.Settings, error)
	Save(ctx context.Context, settings model.Settings) error
	Configure(ctx context.Context, params ConfigureParams) (model.Settings, error)
	Path() string
}

// ConfigureParams carries the recognized mutations. Nil fields are left untouched.
type ConfigureParams struct {
	Enabled       *bool
	Repository    *string  // added once if absent
	Port          *int
	SparcEnabled  *bool
	SwarmEnabled  *bool
	AutoFixLabels []string // replaces the set when non-nil
	Repositories  []string // replaces the list when non-nil
}

type LocalSettingsStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewLocalSettingsStore(path string, logger *slog.Logger) *LocalSettingsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalSettingsStore{path: path, logger: logger}
}

func (s *LocalSettingsStore) Path() string {
	return s.path
}

func (s *LocalSettingsStore) Load(ctx context.Context) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *LocalSettingsStore) loadLocked(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.saveLocked(settings); err != nil {
			return settings, err
		}
		s.logger.InfoContext(ctx, "wrote default settings", "path", s.path)
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("reading settings file: %w", err)
	}

	merged, err := mergeSettings(settings, data)
	if err != nil {
		// The corrupt file is left in place until fixed by hand.
		s.logger.WarnContext(ctx, "invalid settings file, using defaults",
			"path", s.path,
			"error", err)
		return model.DefaultSettings(), nil
	}

	return merged, nil
}

// mergeSettings decodes data over base. Present top-level keys win; the
// nested sparc and swarm objects keep defaults for keys the file omits.
func mergeSettings(base model.Settings, data []byte) (model.Settings, error) {
	if err := json.Unmarshal(data, &base); err != nil {
		return model.Settings{}, fmt.Errorf("parsing settings: %w", err)
	}
	return normalize(base), nil
}

func normalize(s model.Settings) model.Settings {
	if s.Repositories == nil {
		s.Repositories = []string{}
	}
	if s.AutoFixLabels == nil {
		s.AutoFixLabels = []string{}
	}
	if s.IgnoredLabels == nil {
		s.IgnoredLabels = []string{}
	}
	if s.Swarm.Roles == nil {
		s.Swarm.Roles = []string{}
	}
	return s
}

func (s *LocalSettingsStore) Save(ctx context.Context, settings model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(settings)
}

func (s *LocalSettingsStore) saveLocked(settings model.Settings) error {
	data, err := json.MarshalIndent(normalize(settings), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

func (s *LocalSettingsStore) Configure(ctx context.Context, params ConfigureParams) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked(ctx)
	if err != nil {
		return model.Settings{}, err
	}

	updated := ApplyConfigure(current, params)
	if err := updated.Validate(); err != nil {
		return current, err
	}

	if err := s.saveLocked(updated); err != nil {
		return current, err
	}

	s.logger.InfoContext(ctx, "settings updated", "path", s.path)
	return updated, nil
}

// ApplyConfigure returns a copy of settings with params applied.
func ApplyConfigure(settings model.Settings, params ConfigureParams) model.Settings {
	out := settings.Clone()

	if params.Enabled != nil {
		out.Enabled = *params.Enabled
	}
	if params.Repositories != nil {
		out.Repositories = slices.Clone(params.Repositories)
	}
	if params.Repository != nil && *params.Repository != "" && !slices.Contains(out.Repositories, *params.Repository) {
		out.Repositories = append(out.Repositories, *params.Repository)
	}
	if params.Port != nil {
		out.WebhookPort = *params.Port
	}
	if params.SparcEnabled != nil {
		out.Sparc.Enabled = *params.SparcEnabled
	}
	if params.SwarmEnabled != nil {
		out.Swarm.Enabled = *params.SwarmEnabled
	}
	if params.AutoFixLabels != nil {
		out.AutoFixLabels = slices.Clone(params.AutoFixLabels)
	}

	return normalize(out)
}
