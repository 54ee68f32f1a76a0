// Package config loads client settings from a file and the environment.
//
// Keys are read from an optional YAML or JSON file and may be overridden by
// DATADAO_-prefixed environment variables, with "." in a key replaced by
// "_" (local_store.backend becomes DATADAO_LOCAL_STORE_BACKEND). List values
// from the environment are comma separated.
//
// The local fallback store defaults to a localfs directory under
// ~/.datadao/blobs so that a blob stored while every publisher is down can be
// read back by a later process.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"xdao.co/datadao/storage"
	"xdao.co/datadao/storage/blobstore"
	"xdao.co/datadao/storage/storeregistry"
	"xdao.co/datadao/storage/walrus"
	"xdao.co/datadao/tx"
)

const (
	EnvPrefix = "DATADAO"

	DefaultPublisher  = "https://publisher.walrus-testnet.walrus.space"
	DefaultAggregator = "https://aggregator.walrus-testnet.walrus.space"
	DefaultRPCURL     = "https://fullnode.testnet.sui.io:443"

	DefaultLocalBackend = "localfs"
	localfsDirOption    = "localfs-dir"
)

var envReplacer = strings.NewReplacer(".", "_")

type Config struct {
	Publishers   []string      `mapstructure:"publishers"`
	Aggregators  []string      `mapstructure:"aggregators"`
	Epochs       int           `mapstructure:"epochs"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RequireJSON  bool          `mapstructure:"require_json"`
	LocalStore   StoreConfig   `mapstructure:"local_store"`
	BackupTTL    time.Duration `mapstructure:"backup_ttl"`
	RPCURL       string        `mapstructure:"rpc_url"`
	NameCacheTTL time.Duration `mapstructure:"name_cache_ttl"`
	DAO          DAOConfig     `mapstructure:"dao"`
}

// StoreConfig selects the local fallback store by storeregistry name.
// Mirrors, when present, receive every write as well; reads try Backend
// first and then each mirror in order.
type StoreConfig struct {
	Backend string            `mapstructure:"backend"`
	Options map[string]string `mapstructure:"options"`
	Mirrors []BackendConfig   `mapstructure:"mirrors"`
}

type BackendConfig struct {
	Name string `mapstructure:"name"`
	// ID distinguishes two mirrors of the same backend; Name when empty.
	ID      string            `mapstructure:"id"`
	Options map[string]string `mapstructure:"options"`
}

type DAOConfig struct {
	PackageID        string `mapstructure:"package_id"`
	DAOObjectID      string `mapstructure:"dao_object_id"`
	TreasuryObjectID string `mapstructure:"treasury_object_id"`
	Module           string `mapstructure:"module"`
}

// DataDirectory returns ~/.datadao/<name>, or a directory under the system
// temp dir when the home directory cannot be determined.
func DataDirectory(name string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "datadao", name)
	}
	return filepath.Join(home, ".datadao", name)
}

// Default returns a configuration pointing at the public testnet endpoints,
// reading aggregator bodies as JSON and keeping fallback blobs on disk.
func Default() Config {
	return Config{
		Publishers:  []string{DefaultPublisher},
		Aggregators: []string{DefaultAggregator},
		Epochs:      walrus.DefaultEpochs,
		Timeout:     walrus.DefaultTimeout,
		RequireJSON: true,
		LocalStore: StoreConfig{
			Backend: DefaultLocalBackend,
			Options: map[string]string{localfsDirOption: DataDirectory("blobs")},
		},
		RPCURL:       DefaultRPCURL,
		NameCacheTTL: 5 * time.Minute,
		DAO:          DAOConfig{Module: tx.DefaultModule},
	}
}

// Load reads path (optional) and the environment on top of Default.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	out.Publishers = splitList(out.Publishers)
	out.Aggregators = splitList(out.Aggregators)
	out.LocalStore = out.LocalStore.withDefaultDir()
	return out, out.Validate()
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("publishers", d.Publishers)
	v.SetDefault("aggregators", d.Aggregators)
	v.SetDefault("epochs", d.Epochs)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("require_json", d.RequireJSON)
	v.SetDefault("local_store.backend", d.LocalStore.Backend)
	v.SetDefault("backup_ttl", d.BackupTTL)
	v.SetDefault("rpc_url", d.RPCURL)
	v.SetDefault("name_cache_ttl", d.NameCacheTTL)
	v.SetDefault("dao.package_id", d.DAO.PackageID)
	v.SetDefault("dao.dao_object_id", d.DAO.DAOObjectID)
	v.SetDefault("dao.treasury_object_id", d.DAO.TreasuryObjectID)
	v.SetDefault("dao.module", d.DAO.Module)
}

// splitList flattens comma-separated entries, which is how lists arrive
// from the environment.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c Config) Validate() error {
	if len(c.Publishers) == 0 {
		return errors.New("config: at least one publisher is required")
	}
	if len(c.Aggregators) == 0 {
		return errors.New("config: at least one aggregator is required")
	}
	if err := checkEndpoints("publisher", c.Publishers); err != nil {
		return err
	}
	if err := checkEndpoints("aggregator", c.Aggregators); err != nil {
		return err
	}
	if c.Epochs < 1 {
		return fmt.Errorf("config: epochs must be at least 1, got %d", c.Epochs)
	}
	if c.Timeout < 0 || c.BackupTTL < 0 || c.NameCacheTTL < 0 {
		return errors.New("config: durations must not be negative")
	}
	return c.LocalStore.Validate()
}

func checkEndpoints(what string, eps []string) error {
	seen := make(map[string]struct{}, len(eps))
	for _, ep := range eps {
		u, err := url.Parse(ep)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: %s %q is not an http(s) URL", what, ep)
		}
		key := strings.TrimRight(ep, "/")
		if _, ok := seen[key]; ok {
			return fmt.Errorf("config: duplicate %s %q", what, ep)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (s StoreConfig) Validate() error {
	if s.Backend == "" {
		return errors.New("config: local_store.backend is required")
	}
	if !storeregistry.Known(s.Backend, storeregistry.UsageCLI) {
		return fmt.Errorf("config: unknown local store backend %q (known: %s)", s.Backend, strings.Join(storeregistry.Names(storeregistry.UsageCLI), ", "))
	}
	seen := map[string]struct{}{s.Backend: {}}
	for _, m := range s.Mirrors {
		if !storeregistry.Known(m.Name, storeregistry.UsageCLI) {
			return fmt.Errorf("config: unknown mirror backend %q", m.Name)
		}
		id := m.id()
		if _, ok := seen[id]; ok {
			return fmt.Errorf("config: duplicate local store id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// withDefaultDir fills in the default directory for a localfs store that
// names none.
func (s StoreConfig) withDefaultDir() StoreConfig {
	if s.Backend != DefaultLocalBackend || strings.TrimSpace(s.Options[localfsDirOption]) != "" {
		return s
	}
	opts := make(map[string]string, len(s.Options)+1)
	for k, v := range s.Options {
		opts[k] = v
	}
	opts[localfsDirOption] = DataDirectory("blobs")
	s.Options = opts
	return s
}

func (b BackendConfig) id() string {
	if b.ID != "" {
		return b.ID
	}
	return b.Name
}

// OpenLocalStore opens the configured local store. The returned close
// function releases every opened backend.
func (c Config) OpenLocalStore() (storage.Store, func() error, error) {
	if err := c.LocalStore.Validate(); err != nil {
		return nil, nil, err
	}
	backends := append([]BackendConfig{{Name: c.LocalStore.Backend, Options: c.LocalStore.Options}}, c.LocalStore.Mirrors...)

	named := make([]storage.Named, 0, len(backends))
	closers := make([]func() error, 0, len(backends))
	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	for _, b := range backends {
		s, closeFn, err := storeregistry.Open(b.Name, storeregistry.UsageCLI, b.Options)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("config: open %s: %w", b.id(), err)
		}
		named = append(named, storage.Named{Name: b.id(), Store: s})
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}
	if len(named) == 1 {
		return named[0].Store, closeAll, nil
	}
	return &storage.Replicating{Backends: named}, closeAll, nil
}

// ClientOptions maps c onto blobstore.Options around an opened local store.
func (c Config) ClientOptions(local storage.Store) blobstore.Options {
	return blobstore.Options{
		Publishers:  c.Publishers,
		Aggregators: c.Aggregators,
		Epochs:      c.Epochs,
		Timeout:     c.Timeout,
		RequireJSON: c.RequireJSON,
		Local:       local,
		BackupTTL:   c.BackupTTL,
	}
}

// Builder returns the transaction builder for the configured DAO.
func (c Config) Builder() tx.DAO {
	return tx.DAO{
		PackageID:        c.DAO.PackageID,
		DAOObjectID:      c.DAO.DAOObjectID,
		TreasuryObjectID: c.DAO.TreasuryObjectID,
		Module:           c.DAO.Module,
	}
}
