package app

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("input_socket_addr", "", "")
	fs.String("video.pubsub_topic", "", "")
	fs.String("chat.topic", "", "")
	fs.String("chat.mods", "", "")
	fs.String("chat.bans", "", "")
	fs.String("loglevel", "", "")
	fs.String("logformat", "", "")
	require.NoError(t, fs.Parse(nil))

	cfg, err := LoadConfig(fs)
	require.NoError(t, err)
	require.Equal(t, defaultConfig.InputSocketAddr, cfg.InputSocketAddr)
	require.Equal(t, defaultConfig.Video.PubsubTopic, cfg.Video.PubsubTopic)
	require.Equal(t, defaultConfig.Chat.Topic, cfg.Chat.Topic)
}

func TestLoadConfigFlagOverridesDefault(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("input_socket_addr", "", "")
	fs.String("video.pubsub_topic", "", "")
	fs.String("chat.topic", "", "")
	fs.String("chat.mods", "", "")
	fs.String("chat.bans", "", "")
	fs.String("loglevel", "", "")
	fs.String("logformat", "", "")
	require.NoError(t, fs.Parse([]string{"--input_socket_addr=127.0.0.1:9999"}))

	cfg, err := LoadConfig(fs)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", cfg.InputSocketAddr)
}
