package plugin

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/solindex/geyser-indexer/util/set"
)

// Config is decoded from the JSON file at the config_path on_load
// receives, keyed per spec §6's table. Grounded on the teacher's
// node/config.go viper-binding idiom, swapped from YAML+pflag-backed
// node flags to a JSON file viper reads directly, since on_load has
// no command line to bind pflags against.
type Config struct {
	LibPath string `mapstructure:"libpath"`

	Network struct {
		Name string `mapstructure:"name"`
	} `mapstructure:"network"`

	AccountsSelector struct {
		Accounts []string `mapstructure:"accounts"`
		Owners   []string `mapstructure:"owners"`
	} `mapstructure:"accounts_selector"`

	TransactionSelector struct {
		Mentions      []string `mapstructure:"mentions"`
		IncludeVotes  bool     `mapstructure:"include_votes"`
	} `mapstructure:"transaction_selector"`

	ThreadCount   int  `mapstructure:"thread_count"`
	BatchSize     int  `mapstructure:"batch_size"`
	UseMmap       bool `mapstructure:"use_mmap"`
	PanicOnError  bool `mapstructure:"panic_on_error"`

	Retention struct {
		MigrationDepthSlots uint64 `mapstructure:"migration_depth_slots"`
		HotWindowSlots      uint64 `mapstructure:"hot_window_slots"`
		OrphanTTLSlots      uint64 `mapstructure:"orphan_ttl_slots"`
	} `mapstructure:"retention"`

	SpillDir string `mapstructure:"spill_dir"`
}

func defaultConfig() Config {
	c := Config{
		ThreadCount:  4,
		BatchSize:    512,
		PanicOnError: false,
		SpillDir:     "overflow",
	}
	c.Retention.MigrationDepthSlots = 32
	return c
}

// LoadConfig reads path as JSON via viper, per spec §6's
// "Configuration file (JSON)" requirement.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("plugin: read config %q: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("plugin: decode config %q: %w", path, err)
	}
	return cfg, nil
}

// selectors is the decoded, matchable form of Config's
// accounts_selector/transaction_selector sections.
type selectors struct {
	allAccounts     bool
	accounts        set.Set[string]
	owners          set.Set[string]
	allTransactions bool
	mentions        set.Set[string]
	includeVotes    bool
}

func newSelectors(cfg Config) selectors {
	s := selectors{
		accounts:     set.New[string](),
		owners:       set.New[string](),
		mentions:     set.New[string](),
		includeVotes: cfg.TransactionSelector.IncludeVotes,
	}
	for _, a := range cfg.AccountsSelector.Accounts {
		if a == "*" {
			s.allAccounts = true
			continue
		}
		s.accounts.Insert(a)
	}
	s.owners.Insert(cfg.AccountsSelector.Owners...)
	for _, m := range cfg.TransactionSelector.Mentions {
		if m == "*" {
			s.allTransactions = true
			continue
		}
		s.mentions.Insert(m)
	}
	return s
}

func (s selectors) matchesAccount(pubkeyBase58, ownerBase58 string) bool {
	if s.allAccounts {
		return true
	}
	if s.accounts.Contains(pubkeyBase58) {
		return true
	}
	return s.owners.Contains(ownerBase58)
}

func (s selectors) matchesTransaction(isVote bool, accountKeysBase58 []string) bool {
	if isVote && !s.includeVotes {
		return false
	}
	if s.allTransactions {
		return true
	}
	for _, k := range accountKeysBase58 {
		if s.mentions.Contains(k) {
			return true
		}
	}
	return false
}
