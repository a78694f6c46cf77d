package bootstrap

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort       string        `mapstructure:"SERVER_PORT"`
	GrpcPort         string        `mapstructure:"GRPC_PORT"`
	GeminiApiKey     string        `mapstructure:"GEMINI_API_KEY"`
	OracleModel      string        `mapstructure:"ORACLE_MODEL"`
	OracleApiVersion string        `mapstructure:"ORACLE_API_VERSION"`
	OracleBaseUrl    string        `mapstructure:"ORACLE_BASE_URL"`
	OracleTimeout    time.Duration `mapstructure:"ORACLE_TIMEOUT"`
	OracleRetries    int           `mapstructure:"ORACLE_RETRIES"`
	RedisUrl         string        `mapstructure:"REDIS_URL"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	SessionTTL       time.Duration `mapstructure:"SESSION_TTL"`
	MongoUri         string        `mapstructure:"MONGO_URI"`
	MongoDatabase    string        `mapstructure:"MONGO_DATABASE"`
	IsLocalCors      bool          `mapstructure:"LOCAL_CORS"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"SERVER_PORT":        ":5000",
	"GRPC_PORT":          "",
	"GEMINI_API_KEY":     "",
	"ORACLE_MODEL":       "gemini-2.0-flash-thinking-exp",
	"ORACLE_API_VERSION": "v1alpha",
	"ORACLE_BASE_URL":    "",
	"ORACLE_TIMEOUT":     "0s",
	"ORACLE_RETRIES":     0,
	"REDIS_URL":          "",
	"REDIS_PASSWORD":     "",
	"SESSION_TTL":        "6h",
	"MONGO_URI":          "",
	"MONGO_DATABASE":     "stratego",
	"LOCAL_CORS":         true,
	"LOG_LEVEL":          "info",
}

// Setup reads cfgPath if it exists; environment variables override the file.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
