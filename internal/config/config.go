package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the immutable snapshot loaded once at startup. Nothing mutates
// it after Load returns; it's passed by pointer into the router and the
// run orchestrator.
type Config struct {
	Server       ServerConfig
	Socket       SocketConfig
	RunDefaults  RunDefaultsConfig
	Auth         AuthConfig
	Logger       LoggerConfig
	CORS         CORSConfig
	Debug        DebugConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

// SocketConfig mirrors internal/docker.SocketConfig but lives here as plain
// strings/durations so the rest of the service doesn't import internal/docker
// just to read configuration.
type SocketConfig struct {
	Path                string
	DefaultReadTimeout  time.Duration
	DefaultWriteTimeout time.Duration
}

// RunDefaultsConfig supplies the ContainerPolicy fields and RunLimits
// fallbacks a request doesn't specify, plus the hard caps the front end
// enforces before a request ever reaches the core.
type RunDefaultsConfig struct {
	Hostname         string
	User             string
	MemoryBytes      int64
	UlimitNofileSoft int64
	UlimitNofileHard int64
	UlimitNprocSoft  int64
	UlimitNprocHard  int64
	ReadonlyRootfs   bool

	DefaultMaxExecutionTime time.Duration
	DefaultMaxOutputSize    int

	MaxExecutionTimeCap time.Duration
	MaxOutputSizeCap    int
}

// AuthConfig carries the shared-secret HMAC validation settings for the
// bearer access token — there is no login/refresh flow, just one service
// credential.
type AuthConfig struct {
	SecretKey string
	Issuer    string
	Audience  string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// DebugConfig holds settings meant only for local troubleshooting, never
// exposed over the wire.
type DebugConfig struct {
	KeepContainer bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "localhost"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Socket: SocketConfig{
			Path:                getEnv("DOCKER_SOCKET_PATH", "/var/run/docker.sock"),
			DefaultReadTimeout:  getEnvDuration("DOCKER_SOCKET_READ_TIMEOUT", 5*time.Second),
			DefaultWriteTimeout: getEnvDuration("DOCKER_SOCKET_WRITE_TIMEOUT", 5*time.Second),
		},
		RunDefaults: RunDefaultsConfig{
			Hostname:                getEnv("RUN_HOSTNAME", "coderunner"),
			User:                    getEnv("RUN_USER", "1000:1000"),
			MemoryBytes:             getEnvInt64("RUN_MEMORY_BYTES", 256<<20),
			UlimitNofileSoft:        getEnvInt64("RUN_ULIMIT_NOFILE_SOFT", 64),
			UlimitNofileHard:        getEnvInt64("RUN_ULIMIT_NOFILE_HARD", 64),
			UlimitNprocSoft:         getEnvInt64("RUN_ULIMIT_NPROC_SOFT", 32),
			UlimitNprocHard:         getEnvInt64("RUN_ULIMIT_NPROC_HARD", 32),
			ReadonlyRootfs:          getEnvBool("RUN_READONLY_ROOTFS", true),
			DefaultMaxExecutionTime: getEnvDuration("RUN_DEFAULT_MAX_EXECUTION_TIME", 10*time.Second),
			DefaultMaxOutputSize:    getEnvInt("RUN_DEFAULT_MAX_OUTPUT_SIZE", 1<<20),
			MaxExecutionTimeCap:     getEnvDuration("RUN_MAX_EXECUTION_TIME_CAP", 60*time.Second),
			MaxOutputSizeCap:        getEnvInt("RUN_MAX_OUTPUT_SIZE_CAP", 10<<20),
		},
		Auth: AuthConfig{
			SecretKey: getEnv("AUTH_SECRET_KEY", "your-secret-key-change-in-production"),
			Issuer:    getEnv("AUTH_ISSUER", "coderunner"),
			Audience:  getEnv("AUTH_AUDIENCE", "coderunner-api"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			AllowedMethods: getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders: getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-Request-ID"}),
		},
		Debug: DebugConfig{
			KeepContainer: getEnvBool("DEBUG_KEEP_CONTAINER", false),
		},
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}

	if c.Socket.Path == "" {
		return fmt.Errorf("docker socket path is required")
	}
	if c.Socket.DefaultReadTimeout <= 0 {
		return fmt.Errorf("docker socket read timeout must be positive")
	}
	if c.Socket.DefaultWriteTimeout <= 0 {
		return fmt.Errorf("docker socket write timeout must be positive")
	}

	if c.RunDefaults.MemoryBytes <= 0 {
		return fmt.Errorf("run memory limit must be positive")
	}
	if c.RunDefaults.DefaultMaxExecutionTime <= 0 {
		return fmt.Errorf("run default max execution time must be positive")
	}
	if c.RunDefaults.MaxExecutionTimeCap < c.RunDefaults.DefaultMaxExecutionTime {
		return fmt.Errorf("run max execution time cap must be at least the default")
	}
	if c.RunDefaults.DefaultMaxOutputSize <= 0 {
		return fmt.Errorf("run default max output size must be positive")
	}
	if c.RunDefaults.MaxOutputSizeCap < c.RunDefaults.DefaultMaxOutputSize {
		return fmt.Errorf("run max output size cap must be at least the default")
	}

	if c.Auth.SecretKey == "" {
		return fmt.Errorf("auth secret key is required")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Server.Env) == "production"
}

func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.Server.Env) == "development"
}

func (c *Config) IsTest() bool {
	return strings.ToLower(c.Server.Env) == "test"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		result := strings.Split(value, ",")
		for i, v := range result {
			result[i] = strings.TrimSpace(v)
		}
		return result
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}
