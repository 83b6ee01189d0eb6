package server

import (
	"os"
	"strings"

	"github.com/inisipanji/sawebagi/pkg/storage"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort            = "8000"
	defaultConfigPath      = "config.yaml"
	defaultMongoDatabase   = "sawebagi"
	defaultMongoCollection = "donations"
)

// Config represents the relay configuration. Values come from an optional
// YAML file and are overridden by environment variables.
type Config struct {
	Port  string `yaml:"port"`
	Redis struct {
		URL   string `yaml:"url"`
		Token string `yaml:"token"`
	} `yaml:"redis"`
	Keys struct {
		Queue       string `yaml:"queue"`
		Leaderboard string `yaml:"leaderboard"`
	} `yaml:"keys"`
	BagiBagi struct {
		WebhookToken string `yaml:"webhookToken"`
	} `yaml:"bagibagi"`
	MongoDB struct {
		URI        string `yaml:"uri"`
		Database   string `yaml:"database"`
		Collection string `yaml:"collection"`
	} `yaml:"mongodb"`
	Log struct {
		Debug bool `yaml:"debug"`
	} `yaml:"log"`
	// Forward lists URLs that receive every accepted donation as JSON.
	Forward []string `yaml:"forward"`
}

// LoadConfig loads and parses the config file. ${VAR} references in the
// file are expanded from the environment.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyEnv overrides config values with environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	set(&c.Port, "PORT")
	set(&c.Redis.URL, "UPSTASH_REDIS_REST_URL", "REDIS_URL", "REDIS")
	set(&c.Redis.Token, "UPSTASH_REDIS_REST_TOKEN", "REDIS_TOKEN")
	set(&c.Keys.Queue, "QUEUE_KEY")
	set(&c.Keys.Leaderboard, "LEADERBOARD_KEY")
	set(&c.BagiBagi.WebhookToken, "BAGIBAGI_WEBHOOK_TOKEN")
	set(&c.MongoDB.URI, "MONGODB_URI")
	set(&c.MongoDB.Database, "MONGODB_DATABASE")
	set(&c.MongoDB.Collection, "MONGODB_COLLECTION")

	if v, ok := lookup("LOG"); ok {
		c.Log.Debug = v == "1"
	}
}

// ApplyDefaults fills in unset values.
func (c *Config) ApplyDefaults() {
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.Redis.URL == "" {
		c.Redis.URL = storage.DefaultRedisURL
	}
	if c.Keys.Queue == "" {
		c.Keys.Queue = storage.DefaultQueueKey
	}
	if c.Keys.Leaderboard == "" {
		c.Keys.Leaderboard = storage.DefaultLeaderboardKey
	}
	if c.MongoDB.Database == "" {
		c.MongoDB.Database = defaultMongoDatabase
	}
	if c.MongoDB.Collection == "" {
		c.MongoDB.Collection = defaultMongoCollection
	}

	targets := make([]string, 0, len(c.Forward))
	for _, target := range c.Forward {
		if trimmed := strings.TrimSpace(target); trimmed != "" {
			targets = append(targets, trimmed)
		}
	}
	c.Forward = targets
}
