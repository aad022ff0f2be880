// Package config loads the indexer process's own JSON configuration
// file, distinct from plugin.Config (the in-process plugin ABI's
// on_load config): this is cmd/indexer's node-level configuration —
// data directories, network listen addresses, and retention knobs —
// grounded on the teacher's node/config.go viper+pflag binding idiom.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func init() {
	pflag.String("logger.level", "info", "log level")
	pflag.String("logger.output", "stdout", "comma-separated log outputs")

	pflag.String("data_dir", "./data", "root directory for hot and cold store files")
	pflag.StringSlice("network.listen_addrs", []string{"/ip4/0.0.0.0/tcp/0"}, "libp2p listen multiaddrs")
	pflag.StringSlice("network.bootstrap_peers", nil, "libp2p bootstrap peer multiaddrs")
	pflag.String("host.private_key", "", "hex-encoded ed25519 private key seed")

	pflag.Int("retention.migration_depth_slots", 32, "rooted-slots lag before migration")
	pflag.Int("retention.hot_window_slots", 50_000_000, "max slot range retained in the hot store")
	pflag.Int("retention.orphan_ttl_slots", 0, "slots an orphaned slot's data survives before a retention sweep may drop it; 0 disables the sweep")
	pflag.Duration("migration.period", 30*time.Second, "how often the migrator checks for newly eligible ranges")
	pflag.Int("migration.range_size", 256, "slots sealed into one cold store segment per pass")
}

// Node is cmd/indexer's resolved configuration.
type Node struct {
	LoggerLevel  string
	LoggerOutput []string

	DataDir string

	NetworkListenAddrs    []string
	NetworkBootstrapPeers []string
	HostPrivateKeyHex     string

	MigrationDepthSlots uint64
	HotWindowSlots      uint64
	OrphanTTLSlots      uint64
	MigrationPeriod     time.Duration
	MigrationRangeSize  uint64
}

// Load parses pflag.CommandLine, binds it to viper, merges in
// configPath (JSON) if non-empty, and resolves Node.
func Load(configPath string) (Node, error) {
	if !pflag.Parsed() {
		pflag.Parse()
	}
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return Node{}, fmt.Errorf("config: bind flags: %w", err)
	}

	if configPath != "" {
		viper.SetConfigFile(configPath)
		viper.SetConfigType("json")
		if err := viper.ReadInConfig(); err != nil {
			return Node{}, fmt.Errorf("config: read %q: %w", configPath, err)
		}
	}

	return Node{
		LoggerLevel:           viper.GetString("logger.level"),
		LoggerOutput:          splitNonEmpty(viper.GetString("logger.output")),
		DataDir:               viper.GetString("data_dir"),
		NetworkListenAddrs:    viper.GetStringSlice("network.listen_addrs"),
		NetworkBootstrapPeers: viper.GetStringSlice("network.bootstrap_peers"),
		HostPrivateKeyHex:     viper.GetString("host.private_key"),
		MigrationDepthSlots:   uint64(viper.GetInt64("retention.migration_depth_slots")),
		HotWindowSlots:        uint64(viper.GetInt64("retention.hot_window_slots")),
		OrphanTTLSlots:        uint64(viper.GetInt64("retention.orphan_ttl_slots")),
		MigrationPeriod:       viper.GetDuration("migration.period"),
		MigrationRangeSize:    uint64(viper.GetInt64("migration.range_size")),
	}, nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return []string{"stdout"}
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
