package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Network is the network configuration, i.e. the top level.
type Network struct {
	// Name is the server name used in message prefixes and in the
	// welcome messages.
	Name string

	// Motd contains the lines of the message of the day, sent after
	// registration and in response to MOTD.
	Motd []string

	// MaxSessions is the maximum number of sessions the server
	// accepts before refusing new connections. 0 means no limit.
	MaxSessions uint64

	// MaxChannels is the maximum number of channels that may exist at
	// any point in time. 0 means no limit.
	MaxChannels uint64

	// Time interval after which a session without any activity is terminated
	// by the server. The client should send a PING every minute.
	SessionExpiration time.Duration
}

var DefaultConfig = Network{
	Name:              "soloircd.net",
	SessionExpiration: 30 * time.Minute,
}

func FromString(input string) (Network, error) {
	cfg := DefaultConfig
	_, err := toml.Decode(input, &cfg)
	return cfg, err
}

func FromFile(path string) (Network, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Network{}, err
	}
	return FromString(string(b))
}
