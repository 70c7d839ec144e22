package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	shellquote "github.com/kballard/go-shellquote"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/nginxconf"
)

const (
	AppName          = "nginx-route"
	DefaultUser      = "root"
	DefaultPort      = 22
	DefaultTimeout   = 15 * time.Second
	DefaultBackupDir = "."
	ConfigFileName   = "config.toml"
	HistoryFileName  = "history.jsonl"
	EnvHost          = "NGINX_ROUTE_HOST"
	EnvUser          = "NGINX_ROUTE_USER"
	EnvPassword      = "NGINX_ROUTE_PASSWORD"
	EnvConfigFile    = "NGINX_ROUTE_CONFIG"
)

// DefaultCandidates are the remote paths probed for the site config, in order.
var DefaultCandidates = []string{
	"/etc/nginx/sites-available/n-lux.com",
	"/etc/nginx/conf.d/n-lux.com",
}

// Duration is a time.Duration written as a string ("15s") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full nginx-route configuration.
type Config struct {
	Remote RemoteConfig `toml:"remote"`
	Proxy  ProxyConfig  `toml:"proxy"`
	State  StateConfig  `toml:"state"`

	// Password is only ever set from the environment or a prompt.
	Password string `toml:"-"`
}

// RemoteConfig describes the SSH target and the nginx files on it.
type RemoteConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	User           string   `toml:"user"`
	IdentityFile   string   `toml:"identity_file"`
	KnownHosts     string   `toml:"known_hosts"`
	ConnectTimeout Duration `toml:"connect_timeout"`
	Candidates     []string `toml:"candidates"`
	TestCommand    string   `toml:"test_command"`
	ReloadCommand  string   `toml:"reload_command"`
}

// ProxyConfig holds the generated location block settings.
type ProxyConfig struct {
	Upstream string `toml:"upstream"`
}

// StateConfig holds local storage locations.
type StateConfig struct {
	BackupDir string `toml:"backup_dir"`
	StateDir  string `toml:"state_dir"`
}

// Default returns a Config with built-in defaults.
func Default() *Config {
	candidates := make([]string, len(DefaultCandidates))
	copy(candidates, DefaultCandidates)

	return &Config{
		Remote: RemoteConfig{
			Port:           DefaultPort,
			User:           DefaultUser,
			ConnectTimeout: Duration{DefaultTimeout},
			Candidates:     candidates,
		},
		Proxy: ProxyConfig{
			Upstream: nginxconf.DefaultUpstream,
		},
		State: StateConfig{
			BackupDir: DefaultBackupDir,
			StateDir:  DefaultStateDir(),
		},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/nginx-route/config.toml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(dir, AppName, ConfigFileName)
}

// DefaultStateDir returns $XDG_STATE_HOME/nginx-route, falling back to
// ~/.local/state/nginx-route.
func DefaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, ".local", "state", AppName)
}

// Load reads the config file at path on top of the defaults and applies the
// environment. An empty path means the default location, which may be absent.
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		if env := getenv(EnvConfigFile); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultConfigPath()
		}
	}

	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv(getenv)
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvHost); v != "" {
		c.Remote.Host = v
	}
	if v := getenv(EnvUser); v != "" {
		c.Remote.User = v
	}
	if v := getenv(EnvPassword); v != "" {
		c.Password = v
	}
}

func (c *Config) expandPaths() {
	c.Remote.IdentityFile = expandHome(c.Remote.IdentityFile)
	c.Remote.KnownHosts = expandHome(c.Remote.KnownHosts)
	c.State.BackupDir = expandHome(c.State.BackupDir)
	c.State.StateDir = expandHome(c.State.StateDir)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Remote.Port < 1 || c.Remote.Port > 65535 {
		return fmt.Errorf("remote.port must be between 1 and 65535 (got %d)", c.Remote.Port)
	}
	if c.Remote.ConnectTimeout.Duration < 0 {
		return fmt.Errorf("remote.connect_timeout cannot be negative")
	}
	if len(c.Remote.Candidates) == 0 {
		return fmt.Errorf("remote.candidates must list at least one path")
	}
	for _, p := range c.Remote.Candidates {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("remote.candidates must be absolute paths (got %q)", p)
		}
	}
	if strings.TrimSpace(c.Proxy.Upstream) == "" {
		return fmt.Errorf("proxy.upstream is required")
	}
	if strings.ContainsAny(c.Proxy.Upstream, " \t\r\n;{}") {
		return fmt.Errorf("proxy.upstream must be a single token (got %q)", c.Proxy.Upstream)
	}
	if _, err := c.TestArgs(); err != nil {
		return fmt.Errorf("remote.test_command: %w", err)
	}
	if _, err := c.ReloadArgs(); err != nil {
		return fmt.Errorf("remote.reload_command: %w", err)
	}
	if c.State.BackupDir == "" {
		return fmt.Errorf("state.backup_dir is required")
	}
	if c.State.StateDir == "" {
		return fmt.Errorf("state.state_dir is required")
	}
	return nil
}

// ValidateRemote checks the settings needed to reach the remote host.
func (c *Config) ValidateRemote() error {
	if c.Remote.Host == "" {
		return fmt.Errorf("remote.host is required (set it in the config file or %s)", EnvHost)
	}
	if c.Remote.User == "" {
		return fmt.Errorf("remote.user is required")
	}
	return nil
}

// TestArgs returns the shell words of the post-write check command, or nil
// when none is configured.
func (c *Config) TestArgs() ([]string, error) {
	return splitCommand(c.Remote.TestCommand)
}

// ReloadArgs returns the shell words of the reload command, or nil when none
// is configured.
func (c *Config) ReloadArgs() ([]string, error) {
	return splitCommand(c.Remote.ReloadCommand)
}

func splitCommand(command string) ([]string, error) {
	if strings.TrimSpace(command) == "" {
		return nil, nil
	}
	args, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", command, err)
	}
	return args, nil
}

// NeedsPassword reports whether password authentication must be prompted for.
func (c *Config) NeedsPassword() bool {
	return c.Password == "" && c.Remote.IdentityFile == ""
}

// Paths holds the configured paths
type Paths struct {
	ConfigFile  string
	StateDir    string
	BackupDir   string
	HistoryFile string
}

// Paths returns the local paths used with this config.
func (c *Config) Paths(configFile string) *Paths {
	if configFile == "" {
		configFile = DefaultConfigPath()
	}
	return &Paths{
		ConfigFile:  configFile,
		StateDir:    c.State.StateDir,
		BackupDir:   c.State.BackupDir,
		HistoryFile: filepath.Join(c.State.StateDir, HistoryFileName),
	}
}
