package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	insecureSessionSecret = "communitysafe-session-secret"
	insecureJWTSecret     = "communitysafe-jwt-secret"
	insecureAdminPassword = "admin123"
)

type Config struct {
	Addr            string        `yaml:"addr"`
	APITimeout      time.Duration `yaml:"timeout"`
	DatabasePath    string        `yaml:"database_path"`
	SessionSecret   string        `yaml:"session_secret"`
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenDuration   time.Duration `yaml:"token_duration"`
	UploadDirBefore string        `yaml:"upload_dir_before"`
	UploadDirAfter  string        `yaml:"upload_dir_after"`
	AdminUsername   string        `yaml:"admin_username"`
	AdminPassword   string        `yaml:"admin_password"`
}

// LoadConfig builds the configuration from defaults, environment variables
// (optionally sourced from a .env file) and, last, an optional YAML file.
func LoadConfig(path string) (*Config, error) {
	// .env is a development convenience; absence is not an error
	_ = godotenv.Load()

	cfg := &Config{
		Addr:            getEnv("CS_ADDR", ":8080"),
		APITimeout:      15 * time.Second,
		DatabasePath:    getEnv("CS_DATABASE_PATH", "communitysafe.db"),
		SessionSecret:   getEnv("CS_SESSION_SECRET", insecureSessionSecret),
		JWTSecret:       getEnv("CS_JWT_SECRET", insecureJWTSecret),
		TokenDuration:   1 * time.Hour,
		UploadDirBefore: getEnv("CS_UPLOAD_DIR_BEFORE", "uploads/before"),
		UploadDirAfter:  getEnv("CS_UPLOAD_DIR_AFTER", "uploads/after"),
		AdminUsername:   getEnv("CS_ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("CS_ADMIN_PASSWORD", insecureAdminPassword),
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects configurations that would be unsafe outside development.
// CS_ENV=development keeps the insecure defaults usable locally.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.UploadDirBefore == "" || c.UploadDirAfter == "" {
		return fmt.Errorf("upload directories must not be empty")
	}

	if os.Getenv("CS_ENV") == "development" {
		return nil
	}
	if c.SessionSecret == insecureSessionSecret {
		return fmt.Errorf("session_secret is the insecure default; set CS_SESSION_SECRET")
	}
	if c.JWTSecret == insecureJWTSecret {
		return fmt.Errorf("jwt_secret is the insecure default; set CS_JWT_SECRET")
	}
	if c.AdminPassword == insecureAdminPassword {
		return fmt.Errorf("admin_password is the insecure default; set CS_ADMIN_PASSWORD")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
