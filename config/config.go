package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv string `mapstructure:"APP_ENV"`
	Port   string `mapstructure:"PORT"`

	// Backend REST API yang dikonsumsi dashboard
	ClinicAPIBaseURL string        `mapstructure:"CLINIC_API_BASE_URL"`
	ClinicAPITimeout time.Duration `mapstructure:"CLINIC_API_TIMEOUT"`

	// MariaDB untuk riwayat panggilan; kosongkan DB_HOST untuk menonaktifkan
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBName     string `mapstructure:"DB_NAME"`

	JWTSecret string        `mapstructure:"JWT_SECRET_KEY"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	DoctorUsername     string `mapstructure:"DOCTOR_USERNAME"`
	DoctorPasswordHash string `mapstructure:"DOCTOR_PASSWORD_HASH"`
	AdminUsername      string `mapstructure:"ADMIN_USERNAME"`
	AdminPasswordHash  string `mapstructure:"ADMIN_PASSWORD_HASH"`

	ChimeCommand     string        `mapstructure:"CHIME_COMMAND"`
	ChimeFile        string        `mapstructure:"CHIME_FILE"`
	SpeechCommand    string        `mapstructure:"SPEECH_COMMAND"`
	AnnouncePadWidth int           `mapstructure:"ANNOUNCE_PAD_WIDTH"`
	RepeatCooldown   time.Duration `mapstructure:"REPEAT_COOLDOWN"`
	SuggestionRPS    float64       `mapstructure:"SUGGESTION_RPS"`
	RefreshInterval  time.Duration `mapstructure:"REFRESH_INTERVAL"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`
}

var (
	cfg     *Config
	cfgErr  error
	once    sync.Once
	envKeys = []string{
		"DB_USER", "DB_PASSWORD", "DB_HOST", "DB_NAME",
		"JWT_SECRET_KEY",
		"DOCTOR_USERNAME", "DOCTOR_PASSWORD_HASH", "ADMIN_USERNAME", "ADMIN_PASSWORD_HASH",
		"SPEECH_COMMAND",
	}
)

// LoadConfig membaca konfigurasi satu kali per proses.
func LoadConfig() (*Config, error) {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found. Relying on environment variables.")
		}
		cfg, cfgErr = Load()
	})
	return cfg, cfgErr
}

// Load resolves the configuration from the process environment without caching.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CLINIC_API_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("CLINIC_API_TIMEOUT", "10s")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("JWT_TTL", "12h")
	v.SetDefault("CHIME_COMMAND", "aplay")
	v.SetDefault("CHIME_FILE", "sounds/minimalist-ding-dong.wav")
	v.SetDefault("ANNOUNCE_PAD_WIDTH", 3)
	v.SetDefault("REPEAT_COOLDOWN", "1s")
	v.SetDefault("SUGGESTION_RPS", 5)
	v.SetDefault("REFRESH_INTERVAL", "0s")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.ClinicAPIBaseURL = strings.TrimRight(c.ClinicAPIBaseURL, "/")
	if len(c.CORSOrigins) == 1 && strings.Contains(c.CORSOrigins[0], ",") {
		c.CORSOrigins = strings.Split(c.CORSOrigins[0], ",")
	}
	return c, nil
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "development"
}

// CallLogEnabled reports whether a MariaDB host is configured for call history.
func (c *Config) CallLogEnabled() bool {
	return c.DBHost != ""
}

// DSN builds the go-sql-driver/mysql data source name.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=Asia%%2FKuala_Lumpur",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Validate checks the settings required by the serve command.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.ClinicAPIBaseURL == "" {
		return fmt.Errorf("CLINIC_API_BASE_URL is required")
	}
	if c.DoctorUsername != "" && c.DoctorPasswordHash == "" {
		return fmt.Errorf("DOCTOR_PASSWORD_HASH is required when DOCTOR_USERNAME is set")
	}
	if c.AdminUsername != "" && c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required when ADMIN_USERNAME is set")
	}
	if c.AnnouncePadWidth < 0 {
		return fmt.Errorf("ANNOUNCE_PAD_WIDTH must not be negative, got %d", c.AnnouncePadWidth)
	}
	if c.SuggestionRPS <= 0 {
		return fmt.Errorf("SUGGESTION_RPS must be positive, got %v", c.SuggestionRPS)
	}
	return nil
}
