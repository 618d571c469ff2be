package model

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the persisted auto-fix configuration file.
type Settings struct {
	Enabled             bool          `json:"enabled" jsonschema:"description=Master switch for webhook-driven processing"`
	Repositories        []string      `json:"repositories" jsonschema:"description=Allow-list of owner/repo names; empty allows all"`
	AutoFixLabels       []string      `json:"autoFixLabels" jsonschema:"description=Labels that make an issue eligible"`
	IgnoredLabels       []string      `json:"ignoredLabels" jsonschema:"description=Labels that always exclude an issue"`
	MaxConcurrentIssues int           `json:"maxConcurrentIssues" jsonschema:"minimum=1"`
	WebhookPort         int           `json:"webhookPort" jsonschema:"minimum=1,maximum=65535"`
	Sparc               SparcSettings `json:"sparc"`
	Swarm               SwarmSettings `json:"swarm"`
}

type SparcSettings struct {
	Enabled   bool   `json:"enabled"`
	Mode      string `json:"mode"`
	Namespace string `json:"namespace"`
}

type SwarmSettings struct {
	Enabled   bool     `json:"enabled"`
	Topology  string   `json:"topology"`
	MaxAgents int      `json:"maxAgents" jsonschema:"minimum=1"`
	Roles     []string `json:"roles"`
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:             true,
		Repositories:        []string{},
		AutoFixLabels:       []string{"bug", "auto-fix", "good first issue"},
		IgnoredLabels:       []string{"wontfix", "duplicate", "question"},
		MaxConcurrentIssues: 3,
		WebhookPort:         3000,
		Sparc: SparcSettings{
			Enabled:   true,
			Mode:      "tdd",
			Namespace: "github-auto-fix",
		},
		Swarm: SwarmSettings{
			Enabled:   true,
			Topology:  "mesh",
			MaxAgents: 5,
			Roles:     []string{"researcher", "coder", "tester", "reviewer"},
		},
	}
}

func (s Settings) Validate() error {
	if s.MaxConcurrentIssues <= 0 {
		return fmt.Errorf("%w: maxConcurrentIssues must be positive, got %d", ErrInvalidSettings, s.MaxConcurrentIssues)
	}
	if s.WebhookPort <= 0 || s.WebhookPort >= 65536 {
		return fmt.Errorf("%w: webhookPort out of range: %d", ErrInvalidSettings, s.WebhookPort)
	}
	return nil
}

func (s Settings) AllowsRepository(fullName string) bool {
	return len(s.Repositories) == 0 || slices.Contains(s.Repositories, fullName)
}

// Clone returns a deep copy so callers can mutate slices freely.
func (s Settings) Clone() Settings {
	c := s
	c.Repositories = slices.Clone(s.Repositories)
	c.AutoFixLabels = slices.Clone(s.AutoFixLabels)
	c.IgnoredLabels = slices.Clone(s.IgnoredLabels)
	c.Swarm.Roles = slices.Clone(s.Swarm.Roles)
	return c
}
