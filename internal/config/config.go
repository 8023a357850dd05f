package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the deployment configuration: everything fixed for the
// lifetime of the process. Runtime-tunable settings live in the data
// directory and are managed by internal/store.
type Config struct {
	Discord struct {
		Token     string `yaml:"token" env:"DISCORD_TOKEN,required"`
		ClientID  string `yaml:"client_id" env:"DISCORD_CLIENT_ID,required"`
		GuildID   string `yaml:"guild_id" env:"DISCORD_GUILD_ID,required"`
		ChannelID string `yaml:"channel_id" env:"STANDUP_CHANNEL_ID,required"`
	} `yaml:"discord"`

	Standup struct {
		DataDir string `yaml:"data_dir"`
		// TargetMode is "thread" (one thread per day under the standup
		// channel) or "channel" (updates land in the channel itself).
		TargetMode string `yaml:"target_mode"`
		// Precreate turns on the polling trigger that creates the day's
		// thread ahead of the prompt. Thread mode only.
		Precreate         bool   `yaml:"precreate"`
		PrecreateInterval string `yaml:"precreate_interval"`
		// ArchiveLookback is how many recently archived threads are
		// searched when resolving a day's thread.
		ArchiveLookback  int  `yaml:"archive_lookback"`
		RosterOnlyRecaps bool `yaml:"roster_only_recaps"`
	} `yaml:"standup"`

	// PrecreateEvery is PrecreateInterval parsed, zero when pre-creation
	// is off.
	PrecreateEvery time.Duration `yaml:"-"`
}

func Load() (*Config, error) {
	return LoadFrom("config.yaml")
}

func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Replace environment variables in the YAML content
	content := string(data)
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required")
	}
	if c.Discord.ClientID == "" {
		return fmt.Errorf("discord.client_id is required")
	}
	if c.Discord.GuildID == "" {
		return fmt.Errorf("discord.guild_id is required")
	}
	if c.Discord.ChannelID == "" {
		return fmt.Errorf("discord.channel_id is required")
	}

	if c.Standup.DataDir == "" {
		c.Standup.DataDir = "data"
	}
	if c.Standup.TargetMode == "" {
		c.Standup.TargetMode = "thread"
	}
	if c.Standup.TargetMode != "thread" && c.Standup.TargetMode != "channel" {
		return fmt.Errorf("standup.target_mode must be \"thread\" or \"channel\", got %q", c.Standup.TargetMode)
	}
	if c.Standup.ArchiveLookback < 0 {
		return fmt.Errorf("standup.archive_lookback must not be negative")
	}
	if c.Standup.ArchiveLookback == 0 {
		c.Standup.ArchiveLookback = 20
	}

	if c.Standup.Precreate {
		if c.Standup.TargetMode != "thread" {
			return fmt.Errorf("standup.precreate requires target_mode \"thread\"")
		}
		interval := c.Standup.PrecreateInterval
		if interval == "" {
			interval = "15m"
		}
		every, err := time.ParseDuration(interval)
		if err != nil || every <= 0 {
			return fmt.Errorf("invalid standup.precreate_interval %q", c.Standup.PrecreateInterval)
		}
		c.PrecreateEvery = every
	}

	return nil
}
