package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Firebase holds the identity provider and document store settings.
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	RateLimit *RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`

	Password *PasswordConfig `json:"password" yaml:"password"`

	Lifecycle *LifecycleConfig `json:"lifecycle" yaml:"lifecycle"`

	Audit *AuditConfig `json:"audit" yaml:"audit"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// FirebaseConfig defines the Firebase project and Identity Toolkit settings.
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`

	// WebAPIKey authenticates REST calls to the Identity Toolkit, which
	// the Admin SDK does not cover.
	WebAPIKey string `json:"webApiKey" yaml:"webApiKey"`

	// IdentityEndpoint overrides the Identity Toolkit base URL, mainly
	// for the local emulator.
	IdentityEndpoint string `json:"identityEndpoint" yaml:"identityEndpoint"`

	CallTimeout time.Duration `json:"callTimeout" yaml:"callTimeout"`
}

// AuthConfig defines sign-in protection and token freshness settings.
type AuthConfig struct {
	MaxFailedAttempts int           `json:"maxFailedAttempts" yaml:"maxFailedAttempts"`
	AttemptWindow     time.Duration `json:"attemptWindow" yaml:"attemptWindow"`
	LockDuration      time.Duration `json:"lockDuration" yaml:"lockDuration"`

	// TokenFreshness bounds how old a token's auth_time may be for
	// security-sensitive mutations such as password changes.
	TokenFreshness time.Duration `json:"tokenFreshness" yaml:"tokenFreshness"`

	// ReactivateOnSignin re-enables a pending-deletion account when its
	// owner signs in with valid credentials inside the grace window.
	ReactivateOnSignin *bool `json:"reactivateOnSignin" yaml:"reactivateOnSignin"`
}

// ShouldReactivateOnSignin defaults to true when unset.
func (a *AuthConfig) ShouldReactivateOnSignin() bool {
	if a.ReactivateOnSignin == nil {
		return true
	}

	return *a.ReactivateOnSignin
}

// RouteLimit is a per-route request quota.
type RouteLimit struct {
	Max    int           `json:"max" yaml:"max"`
	Window time.Duration `json:"window" yaml:"window"`
}

// RateLimitConfig holds the quota of each guarded route.
type RateLimitConfig struct {
	Signup         RouteLimit `json:"signup" yaml:"signup"`
	Signin         RouteLimit `json:"signin" yaml:"signin"`
	ForgotPassword RouteLimit `json:"forgotPassword" yaml:"forgotPassword"`
	CheckEmail     RouteLimit `json:"checkEmail" yaml:"checkEmail"`
	ResetPassword  RouteLimit `json:"resetPassword" yaml:"resetPassword"`
}

// PasswordConfig defines password strength requirements.
type PasswordConfig struct {
	MinLength      int      `json:"minLength" yaml:"minLength"`
	BlockedDomains []string `json:"blockedDomains" yaml:"blockedDomains"`
}

// LifecycleConfig defines the soft-delete grace window.
type LifecycleConfig struct {
	GraceDays int `json:"graceDays" yaml:"graceDays"`
}

// GracePeriod returns the grace window as a duration.
func (l *LifecycleConfig) GracePeriod() time.Duration {
	return time.Duration(l.GraceDays) * 24 * time.Hour
}

// AuditConfig defines the audit sink buffering.
type AuditConfig struct {
	BufferSize int `json:"bufferSize" yaml:"bufferSize"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: FIREBASE_WEBAPIKEY -> firebase.webApiKey (not firebase.webapikey)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Firebase == nil {
		cfg.Firebase = &FirebaseConfig{}
	}
	if cfg.Firebase.CallTimeout <= 0 {
		cfg.Firebase.CallTimeout = 15 * time.Second
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.MaxFailedAttempts <= 0 {
		cfg.Auth.MaxFailedAttempts = 5
	}
	if cfg.Auth.AttemptWindow <= 0 {
		cfg.Auth.AttemptWindow = 15 * time.Minute
	}
	if cfg.Auth.LockDuration <= 0 {
		cfg.Auth.LockDuration = 15 * time.Minute
	}
	if cfg.Auth.TokenFreshness <= 0 {
		cfg.Auth.TokenFreshness = 10 * time.Minute
	}

	if cfg.RateLimit == nil {
		cfg.RateLimit = &RateLimitConfig{}
	}
	applyRouteLimitDefault(&cfg.RateLimit.Signup, 5, 15*time.Minute)
	applyRouteLimitDefault(&cfg.RateLimit.Signin, 10, 15*time.Minute)
	applyRouteLimitDefault(&cfg.RateLimit.ForgotPassword, 3, time.Hour)
	applyRouteLimitDefault(&cfg.RateLimit.CheckEmail, 10, time.Hour)
	applyRouteLimitDefault(&cfg.RateLimit.ResetPassword, 5, time.Hour)

	if cfg.Password == nil {
		cfg.Password = &PasswordConfig{}
	}
	if cfg.Password.MinLength <= 0 {
		cfg.Password.MinLength = 8
	}

	if cfg.Lifecycle == nil {
		cfg.Lifecycle = &LifecycleConfig{}
	}
	if cfg.Lifecycle.GraceDays <= 0 {
		cfg.Lifecycle.GraceDays = 30
	}

	if cfg.Audit == nil {
		cfg.Audit = &AuditConfig{}
	}
	if cfg.Audit.BufferSize <= 0 {
		cfg.Audit.BufferSize = 256
	}
}

func applyRouteLimitDefault(limit *RouteLimit, max int, window time.Duration) {
	if limit.Max <= 0 {
		limit.Max = max
	}
	if limit.Window <= 0 {
		limit.Window = window
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
