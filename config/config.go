// Package config loads engine settings from YAML and the environment.
package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/ddvk/inkcalc/log"
)

const (
	EnvHwrApplicationKey = "INKCALC_HWR_APPLICATIONKEY"
	EnvHwrHmac           = "INKCALC_HWR_HMAC"
	EnvHwrURL            = "INKCALC_HWR_URL"
	EnvVisionAPIKey      = "INKCALC_VISION_APIKEY"
	EnvVisionURL         = "INKCALC_VISION_URL"
	EnvVisionModel       = "INKCALC_VISION_MODEL"
	EnvDebounce          = "INKCALC_DEBOUNCE"
	EnvEntitlementToken  = "INKCALC_ENTITLEMENT_TOKEN"
	EnvStorePath         = "INKCALC_STORE"
	EnvTrace             = "INKCALC_TRACE"
	EnvLogFile           = "INKCALC_LOGFILE"

	// accepted for compatibility with existing rmapi setups
	envRmapiHwrApplicationKey = "RMAPI_HWR_APPLICATIONKEY"
	envRmapiHwrHmac           = "RMAPI_HWR_HMAC"
	envOpenAIKey              = "OPENAI_API_KEY"
)

type Hwr struct {
	ApplicationKey string  `yaml:"applicationKey"`
	HmacKey        string  `yaml:"hmacKey"`
	URL            string  `yaml:"url"`
	Lang           string  `yaml:"lang"`
	XDPI           float32 `yaml:"xdpi"`
	YDPI           float32 `yaml:"ydpi"`
}

type Vision struct {
	APIKey    string  `yaml:"apiKey"`
	URL       string  `yaml:"url"`
	Model     string  `yaml:"model"`
	RateLimit float64 `yaml:"rateLimit"`
	Burst     int     `yaml:"burst"`
	Retries   int     `yaml:"retries"`
}

type Recognize struct {
	Debounce        time.Duration `yaml:"debounce"`
	DedupWindow     time.Duration `yaml:"dedupWindow"`
	BandPadding     float64       `yaml:"bandPadding"`
	ClusterDistance float64       `yaml:"clusterDistance"`
	CacheTTL        time.Duration `yaml:"cacheTTL"`
	Timeout         time.Duration `yaml:"timeout"`
	Parallelism     int64         `yaml:"parallelism"`
}

type Entitlement struct {
	Key   string `yaml:"key"`
	Token string `yaml:"token"`
}

type Store struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Log struct {
	Trace bool   `yaml:"trace"`
	File  string `yaml:"file"`
}

type Config struct {
	Hwr         Hwr         `yaml:"hwr"`
	Vision      Vision      `yaml:"vision"`
	Recognize   Recognize   `yaml:"recognize"`
	Entitlement Entitlement `yaml:"entitlement"`
	Store       Store       `yaml:"store"`
	Log         Log         `yaml:"log"`
}

// Default returns a config with every field set except credentials.
func Default() Config {
	return Config{
		Hwr: Hwr{
			URL:  "https://cloud.myscript.com/api/v4.0/iink/batch",
			Lang: "en_US",
			XDPI: 96,
			YDPI: 96,
		},
		Vision: Vision{
			URL:       "https://api.openai.com/v1/chat/completions",
			Model:     "gpt-4o-mini",
			RateLimit: 1,
			Burst:     2,
			Retries:   2,
		},
		Recognize: Recognize{
			Debounce:        1500 * time.Millisecond,
			DedupWindow:     2000 * time.Millisecond,
			BandPadding:     90,
			ClusterDistance: 60,
			CacheTTL:        10 * time.Minute,
			Timeout:         30 * time.Second,
			Parallelism:     4,
		},
		Store: Store{
			Path: defaultStorePath(),
		},
	}
}

// DefaultPath is the config file location under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "inkcalc.yaml"
	}
	return filepath.Join(dir, "inkcalc", "config.yaml")
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "equations.sqlite"
	}
	return filepath.Join(dir, "inkcalc", "equations.sqlite")
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := ioutil.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			log.Trace.Printf("config: %s not found, using defaults", path)
		case err != nil:
			return cfg, errors.Wrap(err, "read config")
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, errors.Wrapf(err, "parse config %s", path)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.Hwr.ApplicationKey, envRmapiHwrApplicationKey, EnvHwrApplicationKey)
	setString(&c.Hwr.HmacKey, envRmapiHwrHmac, EnvHwrHmac)
	setString(&c.Hwr.URL, EnvHwrURL)
	setString(&c.Vision.APIKey, envOpenAIKey, EnvVisionAPIKey)
	setString(&c.Vision.URL, EnvVisionURL)
	setString(&c.Vision.Model, EnvVisionModel)
	setString(&c.Entitlement.Token, EnvEntitlementToken)
	setString(&c.Log.File, EnvLogFile)

	if v := os.Getenv(EnvStorePath); v != "" {
		c.Store.Path = v
		c.Store.Enabled = true
	}
	if v := os.Getenv(EnvTrace); v != "" {
		c.Log.Trace = v == "1" || v == "true"
	}
	if v := os.Getenv(EnvDebounce); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvDebounce)
		}
		c.Recognize.Debounce = d
	}
	return nil
}

// setString assigns the last non-empty variable of names.
func setString(dst *string, names ...string) {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			*dst = v
		}
	}
}

// parseDuration accepts Go durations and plain milliseconds.
func parseDuration(s string) (time.Duration, error) {
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

func (c Config) Validate() error {
	r := c.Recognize
	switch {
	case r.Debounce <= 0:
		return errors.New("config: recognize.debounce must be positive")
	case r.DedupWindow < 0:
		return errors.New("config: recognize.dedupWindow must not be negative")
	case r.BandPadding < 0 || r.ClusterDistance < 0:
		return errors.New("config: recognize distances must not be negative")
	case r.Parallelism < 1:
		return errors.New("config: recognize.parallelism must be at least 1")
	}
	return nil
}
