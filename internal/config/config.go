package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DB       *DBconfig
	RabbitMq *RabbitMqconfig
	App      *Appconfig
	Srv      *Serviceconfig
	Log      *Loggerconfig
}

type DBconfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RabbitMqconfig struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type Appconfig struct {
	JwtSecret string
	TokenTTL  int // hours
}

type Serviceconfig struct {
	DispatchServicePort string
	AuthServicePort     string
}

type Loggerconfig struct {
	Level string
}

func New() (*Config, error) {
	getEnv := func(key, def string) string {
		val := os.Getenv(key)
		if val == "" {
			fmt.Printf("using default for %v\n", key)
			return def
		}
		return val
	}

	getEnvInt := func(key string, def int) int {
		valStr := os.Getenv(key)
		if valStr == "" {
			fmt.Printf("using default for %v\n", key)
			return def
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			fmt.Printf("using default for %v\n", key)
			return def
		}
		return val
	}

	cnf := &Config{
		DB: &DBconfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "dispatch_user"),
			Password: getEnv("DB_PASSWORD", "dispatch_pass"),
			Database: getEnv("DB_NAME", "dispatch_db"),
		},
		RabbitMq: &RabbitMqconfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", ""),
		},
		App: &Appconfig{
			JwtSecret: getEnv("JWT_SECRET", "dev-secret"),
			TokenTTL:  getEnvInt("TOKEN_TTL_HOURS", 24),
		},
		Srv: &Serviceconfig{
			DispatchServicePort: getEnv("DISPATCH_SERVICE_PORT", "3000"),
			AuthServicePort:     getEnv("AUTH_SERVICE_PORT", "3001"),
		},
		Log: &Loggerconfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}

	return cnf, nil
}
