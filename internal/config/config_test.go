package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStringDefaults(t *testing.T) {
	cfg, err := FromString("")
	require.NoError(t, err)
	assert.Equal(t, "soloircd.net", cfg.Name)
	assert.Equal(t, 30*time.Minute, cfg.SessionExpiration)
	assert.Empty(t, cfg.Motd)
}

func TestFromStringOverrides(t *testing.T) {
	cfg, err := FromString(`
Name = "irc.example.net"
Motd = ["welcome", "enjoy your stay"]
MaxSessions = 100
MaxChannels = 50
SessionExpiration = 600000000000
`)
	require.NoError(t, err)
	assert.Equal(t, "irc.example.net", cfg.Name)
	assert.Equal(t, []string{"welcome", "enjoy your stay"}, cfg.Motd)
	assert.Equal(t, uint64(100), cfg.MaxSessions)
	assert.Equal(t, uint64(50), cfg.MaxChannels)
	assert.Equal(t, 10*time.Minute, cfg.SessionExpiration)
}

func TestFromStringInvalid(t *testing.T) {
	_, err := FromString(`Name = [`)
	assert.Error(t, err)
}
