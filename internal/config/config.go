package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type GmailConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

type SchedulerConfig struct {
	DeadlineScanSpec string `yaml:"deadline_scan_spec"`
}

type Config struct {
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	MQ        MQConfig        `yaml:"mq"`
	JWT       JWTConfig       `yaml:"jwt"`
	Server    ServerConfig    `yaml:"server"`
	Gmail     GmailConfig     `yaml:"gmail"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// Load reads config.yaml and applies environment variable overrides.
// A missing config.yaml is not an error, environment variables alone
// are enough to run.
func Load() *Config {
	// .env is loaded if present; existing env variables win.
	_ = godotenv.Load()

	cfg := &Config{}

	if f, err := os.Open("config.yaml"); err == nil {
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(cfg); err != nil {
			log.Fatalf("failed to decode config.yaml: %v", err)
		}
	}

	overrideFromEnv(cfg)
	applyDefaults(cfg)

	return cfg
}

func overrideFromEnv(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.MQ.URL = url
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}

	if id := os.Getenv("GMAIL_CLIENT_ID"); id != "" {
		cfg.Gmail.ClientID = id
	}
	if secret := os.Getenv("GMAIL_CLIENT_SECRET"); secret != "" {
		cfg.Gmail.ClientSecret = secret
	}
	if uri := os.Getenv("GMAIL_REDIRECT_URI"); uri != "" {
		cfg.Gmail.RedirectURI = uri
	}

	if spec := os.Getenv("DEADLINE_SCAN_SPEC"); spec != "" {
		cfg.Scheduler.DeadlineScanSpec = spec
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":4000"
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-secret-change-in-production"
	}
	if cfg.Scheduler.DeadlineScanSpec == "" {
		cfg.Scheduler.DeadlineScanSpec = "0 9 * * *" // 09:00 UTC daily
	}
}
