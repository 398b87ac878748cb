package config

import (
	"errors"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	Env          string
	LogLevel     string
	ListenAddr   string
	DBType       string
	DBDSN        string
	FileSessions string
	FileSubjects string
	FileUsers    string
	AuthURL      string

	// Timer client settings.
	ServerURL string
	APIToken  string
	LocalDir  string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		v := viper.New()
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		_ = v.ReadInConfig() // .env is optional
		v.AutomaticEnv()

		v.SetDefault("APP_ENV", "development")
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LISTEN_ADDR", ":8088")
		v.SetDefault("STORAGE_BACKEND", "file")
		v.SetDefault("SESSIONS_FILE", "data/sessions.json")
		v.SetDefault("SUBJECTS_FILE", "data/subjects.json")
		v.SetDefault("USERS_FILE", "data/users.json")
		v.SetDefault("SERVER_URL", "http://localhost:8088")
		v.SetDefault("LOCAL_DIR", "data/timer")

		cfg = &Config{
			Env:          v.GetString("APP_ENV"),
			LogLevel:     v.GetString("LOG_LEVEL"),
			ListenAddr:   v.GetString("LISTEN_ADDR"),
			DBType:       v.GetString("STORAGE_BACKEND"),
			DBDSN:        v.GetString("POSTGRES_DSN"),
			FileSessions: v.GetString("SESSIONS_FILE"),
			FileSubjects: v.GetString("SUBJECTS_FILE"),
			FileUsers:    v.GetString("USERS_FILE"),
			AuthURL:      v.GetString("AUTH_SERVICE_URL"),
			ServerURL:    v.GetString("SERVER_URL"),
			APIToken:     v.GetString("API_TOKEN"),
			LocalDir:     v.GetString("LOCAL_DIR"),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "file" && (c.FileSessions == "" || c.FileSubjects == "" || c.FileUsers == "") {
		return errors.New("File storage requires SESSIONS_FILE, SUBJECTS_FILE and USERS_FILE to be set")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.AuthURL == "" {
		return errors.New("AUTH_SERVICE_URL is required outside development")
	}
	return nil
}
