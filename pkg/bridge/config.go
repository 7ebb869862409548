// Copyright 2026 Aiku AI
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridge

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

// envPrefix namespaces the environment overrides (TASKBOARD_MATRIX_TOKEN
// and friends).
const envPrefix = "taskboard"

// Config is the daemon configuration: global Matrix settings plus
// per-project delivery settings. It implements ConfigSource,
// ProjectMetadataSource and ActorSource so it can back a Dispatcher
// directly.
type Config struct {
	// HomeserverURL is the Matrix homeserver base URL. Empty disables all
	// notifications (global kill switch).
	HomeserverURL string `yaml:"homeserver_url" envconfig:"MATRIX_HOMESERVER_URL"`
	// Token is a static access token. When set, no login is performed.
	Token    string `yaml:"token" envconfig:"MATRIX_TOKEN"`
	Username string `yaml:"username" envconfig:"MATRIX_USERNAME"`
	Password string `yaml:"password" envconfig:"MATRIX_PASSWORD"`

	// ApplicationURL is the task board base URL used for deep links. Empty
	// omits the link segment from messages.
	ApplicationURL string `yaml:"application_url" envconfig:"APPLICATION_URL"`
	// AuthorName is shown as the acting user in message titles. Empty means
	// titles render without an author.
	AuthorName string `yaml:"author_name" envconfig:"AUTHOR_NAME"`

	// ListenAddr is the webhook server listen address.
	ListenAddr string `yaml:"listen_addr" envconfig:"LISTEN_ADDR"`
	// WebhookToken, when set, must match the token query parameter of
	// incoming webhook requests.
	WebhookToken string `yaml:"webhook_token" envconfig:"WEBHOOK_TOKEN"`

	Projects map[int64]ProjectSettings `yaml:"projects"`
}

// ProjectSettings are the per-project delivery settings. The boolean flags
// are tri-state: nil means unset, which defaults to true.
type ProjectSettings struct {
	Room             string `yaml:"room"`
	UseColours       *bool  `yaml:"use_colours"`
	EmbedComments    *bool  `yaml:"embed_comments"`
	EmbedDescription *bool  `yaml:"embed_description"`
	SendNotices      *bool  `yaml:"send_notices"`
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type rawConfig Config
	return node.Decode((*rawConfig)(c))
}

// LoadConfig reads the YAML config file at path, then applies environment
// overrides. An empty path skips the file and configures from the
// environment alone.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr: ":29330",
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}
	return cfg, nil
}

// Get implements ConfigSource.
func (c *Config) Get(key string) string {
	switch key {
	case KeyHomeserverURL:
		return c.HomeserverURL
	case KeyToken:
		return c.Token
	case KeyUsername:
		return c.Username
	case KeyPassword:
		return c.Password
	case KeyApplicationURL:
		return c.ApplicationURL
	default:
		return ""
	}
}

// ProjectMeta implements ProjectMetadataSource.
func (c *Config) ProjectMeta(projectID int64, key string) (string, bool) {
	settings, ok := c.Projects[projectID]
	if !ok {
		return "", false
	}
	switch key {
	case KeyRoom:
		return settings.Room, settings.Room != ""
	case KeyUseColours:
		return boolMeta(settings.UseColours)
	case KeyEmbedComments:
		return boolMeta(settings.EmbedComments)
	case KeyEmbedDescription:
		return boolMeta(settings.EmbedDescription)
	case KeySendNotices:
		return boolMeta(settings.SendNotices)
	default:
		return "", false
	}
}

// Actor implements ActorSource. The daemon has no per-request session user;
// the configured author name stands in for one.
func (c *Config) Actor() (string, bool) {
	return c.AuthorName, c.AuthorName != ""
}

func boolMeta(value *bool) (string, bool) {
	if value == nil {
		return "", false
	}
	return strconv.FormatBool(*value), true
}

// AppLinkBuilder builds absolute deep links to the task view of the
// upstream board.
type AppLinkBuilder struct {
	BaseURL string
}

// TaskURL returns the task view URL for a task in a project.
func (b AppLinkBuilder) TaskURL(taskID, projectID int64) string {
	base := b.BaseURL
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return fmt.Sprintf("%s?controller=TaskViewController&action=show&task_id=%d&project_id=%d", base, taskID, projectID)
}
