package config

import "time"

type Config struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	Backend         string        `yaml:"backend"` // memory|redis
	RedisURL        string        `yaml:"redisURL"`
	Namespace       string        `yaml:"namespace"`
	JoinMaxAttempts int           `yaml:"joinMaxAttempts"`
	JoinBaseBackoff time.Duration `yaml:"joinBaseBackoff"`
	JoinMaxBackoff  time.Duration `yaml:"joinMaxBackoff"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
	MaxConns        int           `yaml:"maxConns"`
	WatchInterval   time.Duration `yaml:"watchInterval"`
	MaxWatchers     int           `yaml:"maxWatchers"`
	ValidateSDP     bool          `yaml:"validateSDP"`
	LogLevel        string        `yaml:"logLevel"`
	SwaggerHost     string        `yaml:"swaggerHost"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)
