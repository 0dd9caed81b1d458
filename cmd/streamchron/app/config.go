package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/spf13/pflag"

	"github.com/cmaflive/streamchron/pkg/logging"
)

// defaultConfigPath is fixed per §6.5: streamchron always reads its JSON
// config from this relative path, never from a flag-selected path.
const defaultConfigPath = "./config.json"

// ArchiveConfig mirrors original_source/linked-data/src/config.rs's
// ArchiveConfig. ArchiveLiveChat is tagged koanf:"-": the original marks
// it #[serde(skip)], meaning it is runtime/CLI-only and derived from the
// subcommand (stream vs file), never read from the JSON file.
type ArchiveConfig struct {
	ArchiveLiveChat bool `koanf:"-"`
}

// VideoConfig mirrors the original's VideoConfig. PubsubEnable is likewise
// runtime/CLI-only.
type VideoConfig struct {
	PubsubEnable bool   `koanf:"-"`
	PubsubTopic  string `koanf:"pubsub_topic"`
}

type ChatConfig struct {
	Topic string `koanf:"topic"`
	Mods  string `koanf:"mods"`
	Bans  string `koanf:"bans"`
}

// Config mirrors original_source/linked-data/src/config.rs's Configuration.
type Config struct {
	LogFormat string `koanf:"logformat"`
	LogLevel  string `koanf:"loglevel"`

	InputSocketAddr string `koanf:"input_socket_addr"`

	Archive ArchiveConfig `koanf:"archive"`
	Video   VideoConfig   `koanf:"video"`
	Chat    ChatConfig    `koanf:"chat"`
}

var defaultConfig = Config{
	LogFormat:       logging.LogText,
	LogLevel:        "INFO",
	InputSocketAddr: "127.0.0.1:2526",
	Archive:         ArchiveConfig{ArchiveLiveChat: true},
	Video:           VideoConfig{PubsubEnable: true, PubsubTopic: "defluencer_live_video"},
	Chat:            ChatConfig{Topic: "defluencer_live_chat"},
}

// LoadConfig layers, in increasing priority: struct defaults, config.json
// (if present), STREAMCHRON_-prefixed environment variables, then CLI
// flags bound through f — the same four-provider koanf stack
// cmd/livesim2/app/config.go uses. f's flag names use "." to address
// nested keys (e.g. "chat.topic", matching §6.5's config keys directly).
func LoadConfig(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if _, err := os.Stat(defaultConfigPath); err == nil {
		if err := k.Load(file.Provider(defaultConfigPath), json.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", defaultConfigPath, err)
		}
	}

	// Environment variable names can't carry a "." themselves, so
	// STREAMCHRON_CHAT_TOPIC addresses chat.topic; a section whose leaf key
	// itself needs an underscore (pubsub_topic) isn't reachable this way
	// and must come from the config file or a CLI flag instead.
	if err := k.Load(env.Provider("STREAMCHRON_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "STREAMCHRON_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("load cli flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
