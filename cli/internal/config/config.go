package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/zhaobenny/vnstat-notify/internal/vnstat"
)

// Config holds the CLI configuration
type Config struct {
	Interface  string `yaml:"interface"`
	LocalName  string `yaml:"local_name"`
	RemoteName string `yaml:"remote_name"`

	ServiceUnit    string `yaml:"service_unit"`
	ServiceProcess string `yaml:"service_process"`

	VnstatCommand      []string `yaml:"vnstat_command,omitempty"`
	VnstatMonthCommand []string `yaml:"vnstat_month_command,omitempty"`
	MonthKeyPolicy     string   `yaml:"month_key_policy,omitempty"`

	// LocalFile is where -f saves the local record and where the
	// remote record is downloaded to.
	LocalFile string `yaml:"local_file"`

	Telegram Telegram `yaml:"telegram"`
	Remote   Remote   `yaml:"remote"`

	LogDir  string `yaml:"log_dir"`
	LogFile string `yaml:"log_file"`
}

// Telegram holds bot delivery settings
type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
	APIURL   string `yaml:"api_url,omitempty"`
}

// Remote holds the SSH settings of the second machine
type Remote struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	KeyPath         string `yaml:"key_path"`
	JSONPath        string `yaml:"json_path"`
	KnownHosts      string `yaml:"known_hosts,omitempty"`
	InsecureHostKey bool   `yaml:"insecure_host_key,omitempty"`
}

// Mode selects which settings Validate requires.
type Mode uint8

const (
	// ModeSend requires telegram settings.
	ModeSend Mode = 1 << iota
	// ModeCollect requires remote settings.
	ModeCollect
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Interface:      vnstat.DefaultInterface,
		LocalName:      "local",
		RemoteName:     "remote",
		ServiceUnit:    "vnstat",
		ServiceProcess: "vnstatd",
		LocalFile:      filepath.Join(home, "vnstat.json"),
		Telegram:       Telegram{APIURL: "https://api.telegram.org"},
		Remote:         Remote{Port: 22, JSONPath: "$HOME/vnstat.json"},
		LogDir:         filepath.Join(home, ".vnstat-notify", "logs"),
		LogFile:        "vnstat.log",
	}
}

// configPath returns the path to the config file
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".vnstat-notify.yaml"), nil
}

// Load reads the config file at path (the default location when empty),
// then applies .env and environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	dotenv, err := godotenv.Read(".env")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	cfg.expandPaths()
	return cfg, nil
}

// LoadFile reads only the YAML file, on top of the defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		p, err := configPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save saves the configuration to path (the default location when empty)
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := configPath()
		if err != nil {
			return err
		}
		path = p
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"INTERFACE_NAME":      &c.Interface,
		"LOCAL_SERVICE_NAME":  &c.LocalName,
		"REMOTE_SERVICE_NAME": &c.RemoteName,
		"TELEGRAM_BOT_TOKEN":  &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":    &c.Telegram.ChatID,
		"TELEGRAM_API_URL":    &c.Telegram.APIURL,
		"VPS_HOST":            &c.Remote.Host,
		"VPS_USERNAME":        &c.Remote.User,
		"VPS_JSON_FILE_PATH":  &c.Remote.JSONPath,
		"VPS_SSH_KEY_PATH":    &c.Remote.KeyPath,
		"VPS_KNOWN_HOSTS":     &c.Remote.KnownHosts,
		"LOCAL_FILE_PATH":     &c.LocalFile,
		"LOG_DIR":             &c.LogDir,
		"LOG_FILE":            &c.LogFile,
		"MONTH_KEY_POLICY":    &c.MonthKeyPolicy,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("VNSTAT_COMMAND"); ok && v != "" {
		c.VnstatCommand = strings.Fields(v)
	}
	if v, ok := lookup("VNSTAT_MONTH_COMMAND"); ok && v != "" {
		c.VnstatMonthCommand = strings.Fields(v)
	}

	if v, ok := lookup("VPS_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid VPS_PORT '%s': must be a number", v)
		}
		c.Remote.Port = port
	}
	if v, ok := lookup("VPS_INSECURE_HOST_KEY"); ok && v != "" {
		insecure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid VPS_INSECURE_HOST_KEY '%s': must be a boolean", v)
		}
		c.Remote.InsecureHostKey = insecure
	}
	return nil
}

func (c *Config) expandPaths() {
	for _, p := range []*string{&c.LocalFile, &c.Remote.KeyPath, &c.Remote.KnownHosts, &c.LogDir} {
		*p = expandHome(*p)
	}
}

// expandHome resolves a leading ~/ against the local home directory.
// Remote paths are left alone.
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// Policy returns the parsed month key policy.
func (c *Config) Policy() (vnstat.MonthKeyPolicy, error) {
	return vnstat.ParseMonthKeyPolicy(c.MonthKeyPolicy)
}

// LogPath returns the log file location, or "" when file logging is off.
func (c *Config) LogPath() string {
	if c.LogDir == "" || c.LogFile == "" {
		return ""
	}
	return filepath.Join(c.LogDir, c.LogFile)
}

// Validate validates the configuration for the given mode and returns an
// error listing every problem found
func (c *Config) Validate(mode Mode) error {
	var errs []string

	if c.LocalName == "" {
		errs = append(errs, "local service name cannot be empty")
	}
	if c.Interface == "" {
		errs = append(errs, "interface name cannot be empty")
	}
	if _, err := c.Policy(); err != nil {
		errs = append(errs, err.Error())
	}

	if mode&ModeSend != 0 {
		if c.Telegram.BotToken == "" {
			errs = append(errs, "TELEGRAM_BOT_TOKEN is required to send messages")
		}
		if c.Telegram.ChatID == "" {
			errs = append(errs, "TELEGRAM_CHAT_ID is required to send messages")
		}
	}

	if mode&ModeCollect != 0 {
		if c.RemoteName == "" {
			errs = append(errs, "remote service name cannot be empty")
		}
		if c.Remote.Host == "" {
			errs = append(errs, "VPS_HOST is required to collect remote data")
		}
		if c.Remote.User == "" {
			errs = append(errs, "VPS_USERNAME is required to collect remote data")
		}
		if c.Remote.KeyPath == "" {
			errs = append(errs, "VPS_SSH_KEY_PATH is required to collect remote data")
		}
		if c.Remote.JSONPath == "" {
			errs = append(errs, "VPS_JSON_FILE_PATH cannot be empty")
		}
		if c.Remote.Port < 1 || c.Remote.Port > 65535 {
			errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Remote.Port))
		}
		if c.LocalFile == "" {
			errs = append(errs, "LOCAL_FILE_PATH cannot be empty when collecting remote data")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
