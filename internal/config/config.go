package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	FakeAPI FakeAPIConfig `yaml:"fakeapi"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port               int      `yaml:"port"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	// RequestTimeout bounds each API call. Zero leaves requests unbounded.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type SessionConfig struct {
	CookieName    string        `yaml:"cookie_name"`
	// Location is the IANA zone used to decide what "today" is.
	Location      string        `yaml:"location"`
	PurchaseRate  float64       `yaml:"purchase_rate"`
	PurchaseBurst int           `yaml:"purchase_burst"`
	// IdleTimeout evicts sessions not seen for this long. Zero disables it.
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	// MaxSessions caps the sessions held at once. Zero means no cap.
	MaxSessions   int           `yaml:"max_sessions"`
}

type FakeAPIConfig struct {
	Port         int    `yaml:"port"`
	FixturesPath string `yaml:"fixtures_path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("API_BASE_URL", "http://localhost:8081")
	v.SetDefault("API_REQUEST_TIMEOUT", "0s")
	v.SetDefault("SESSION_COOKIE", "stasher_session")
	v.SetDefault("SESSION_LOCATION", "Local")
	v.SetDefault("SESSION_PURCHASE_RATE", 1.0)
	v.SetDefault("SESSION_PURCHASE_BURST", 3)
	v.SetDefault("SESSION_IDLE_TIMEOUT", "30m")
	v.SetDefault("SESSION_MAX", 10000)
	v.SetDefault("FAKEAPI_PORT", 8081)
	v.SetDefault("FAKEAPI_FIXTURES", "")
	v.SetDefault("LOG_LEVEL", "info")
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	timeout, err := time.ParseDuration(v.GetString("API_REQUEST_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	idle, err := time.ParseDuration(v.GetString("SESSION_IDLE_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               v.GetInt("SERVER_PORT"),
			CORSAllowedOrigins: splitCSV(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		API: APIConfig{
			BaseURL:        v.GetString("API_BASE_URL"),
			RequestTimeout: timeout,
		},
		Session: SessionConfig{
			CookieName:    v.GetString("SESSION_COOKIE"),
			Location:      v.GetString("SESSION_LOCATION"),
			PurchaseRate:  v.GetFloat64("SESSION_PURCHASE_RATE"),
			PurchaseBurst: v.GetInt("SESSION_PURCHASE_BURST"),
			IdleTimeout:   idle,
			MaxSessions:   v.GetInt("SESSION_MAX"),
		},
		FakeAPI: FakeAPIConfig{
			Port:         v.GetInt("FAKEAPI_PORT"),
			FixturesPath: v.GetString("FAKEAPI_FIXTURES"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}

// ApplyEnv overrides cfg with every variable explicitly set in the
// environment. Values missing from both keep the Load defaults.
func ApplyEnv(cfg *Config) error {
	defaults, err := Load()
	if err != nil {
		return err
	}

	v := viper.New()
	v.AutomaticEnv()

	if v.IsSet("SERVER_PORT") || cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if v.IsSet("CORS_ALLOWED_ORIGINS") || len(cfg.Server.CORSAllowedOrigins) == 0 {
		cfg.Server.CORSAllowedOrigins = defaults.Server.CORSAllowedOrigins
	}
	if v.IsSet("API_BASE_URL") || cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if v.IsSet("API_REQUEST_TIMEOUT") {
		cfg.API.RequestTimeout = defaults.API.RequestTimeout
	}
	if v.IsSet("SESSION_COOKIE") || cfg.Session.CookieName == "" {
		cfg.Session.CookieName = defaults.Session.CookieName
	}
	if v.IsSet("SESSION_LOCATION") || cfg.Session.Location == "" {
		cfg.Session.Location = defaults.Session.Location
	}
	if v.IsSet("SESSION_PURCHASE_RATE") || cfg.Session.PurchaseRate == 0 {
		cfg.Session.PurchaseRate = defaults.Session.PurchaseRate
	}
	if v.IsSet("SESSION_PURCHASE_BURST") || cfg.Session.PurchaseBurst == 0 {
		cfg.Session.PurchaseBurst = defaults.Session.PurchaseBurst
	}
	if v.IsSet("SESSION_IDLE_TIMEOUT") || cfg.Session.IdleTimeout == 0 {
		cfg.Session.IdleTimeout = defaults.Session.IdleTimeout
	}
	if v.IsSet("SESSION_MAX") || cfg.Session.MaxSessions == 0 {
		cfg.Session.MaxSessions = defaults.Session.MaxSessions
	}
	if v.IsSet("FAKEAPI_PORT") || cfg.FakeAPI.Port == 0 {
		cfg.FakeAPI.Port = defaults.FakeAPI.Port
	}
	if v.IsSet("FAKEAPI_FIXTURES") {
		cfg.FakeAPI.FixturesPath = defaults.FakeAPI.FixturesPath
	}
	if v.IsSet("LOG_LEVEL") || cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	return nil
}

// TimeLocation resolves the configured session zone.
func (c SessionConfig) TimeLocation() (*time.Location, error) {
	if c.Location == "" || c.Location == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Location)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
