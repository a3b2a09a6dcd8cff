package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var placeholder = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`) // Searching for environment variables to substitute.

// Load builds the configuration from the environment (after reading .env if
// present) and then overlays the YAML file at path, if path is not empty.
func Load(path string, logger *zap.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf(".env: %w", err)
	}

	var cfg Config
	var err error
	cfg.Host = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.Port = getEnv("SERVER_PORT", "8080")
	cfg.Backend = getEnv("STORE_BACKEND", BackendMemory)
	cfg.RedisURL = getEnv("REDIS_URL", "redis://127.0.0.1:6379/0")
	cfg.Namespace = getEnv("STORE_NAMESPACE", "webrtc_session")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.SwaggerHost = getEnv("SWAGGER_HOST", "")
	if cfg.JoinMaxAttempts, err = envInt("JOIN_MAX_ATTEMPTS", 5); err != nil {
		return Config{}, err
	}
	if cfg.JoinBaseBackoff, err = envDuration("JOIN_BASE_BACKOFF", 10*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.JoinMaxBackoff, err = envDuration("JOIN_MAX_BACKOFF", 200*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = envDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	maxBody, err := envInt("MAX_BODY_BYTES", 64<<10)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)
	if cfg.MaxConns, err = envInt("MAX_CONNS", 1024); err != nil {
		return Config{}, err
	}
	if cfg.WatchInterval, err = envDuration("WATCH_INTERVAL", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MaxWatchers, err = envInt("MAX_WATCHERS", 256); err != nil {
		return Config{}, err
	}
	if cfg.ValidateSDP, err = envBool("VALIDATE_SDP", false); err != nil {
		return Config{}, err
	}

	if path != "" {
		if err := overlayFile(&cfg, path, logger); err != nil {
			return Config{}, err
		}
	}
	return cfg, cfg.Validate()
}

func overlayFile(cfg *Config, path string, logger *zap.Logger) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	b = placeholder.ReplaceAllFunc(b, func(m []byte) []byte {
		k := string(placeholder.FindSubmatch(m)[1])
		val := os.Getenv(k)
		if val == "" {
			logger.Warn("env variable is empty during config expansion",
				zap.String("file", path),
				zap.String("var", k))
		}
		return []byte(val)
	})
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid store backend %q", c.Backend)
	}
	if c.Port == "" {
		return errors.New("empty server port")
	}
	if c.JoinMaxAttempts < 1 {
		return fmt.Errorf("join max attempts must be positive, got %d", c.JoinMaxAttempts)
	}
	if c.JoinBaseBackoff <= 0 || c.JoinMaxBackoff < c.JoinBaseBackoff {
		return fmt.Errorf("invalid join backoff %s..%s", c.JoinBaseBackoff, c.JoinMaxBackoff)
	}
	if c.RequestTimeout <= 0 || c.WatchInterval <= 0 {
		return errors.New("timeouts and intervals must be positive")
	}
	if c.MaxBodyBytes <= 0 || c.MaxConns <= 0 || c.MaxWatchers <= 0 {
		return errors.New("limits must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
