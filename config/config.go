package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	Timezone          string `mapstructure:"TIMEZONE"`

	// Upstream backend the dashboard reads from and books against.
	BackendBaseURL        string  `mapstructure:"BACKEND_BASE_URL"`
	BackendAPIToken       string  `mapstructure:"BACKEND_API_TOKEN"`
	BackendTimeoutSeconds int     `mapstructure:"BACKEND_TIMEOUT_SECONDS"`
	BackendRequestsPerSec float64 `mapstructure:"BACKEND_REQUESTS_PER_SEC"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB       int    `mapstructure:"REDIS_SESSION_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`
	SessionTTLMinutes    int    `mapstructure:"SESSION_TTL_MINUTES"`

	// MongoDB holds the notification inbox.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Reminders.
	ReminderLeadMinutes     int    `mapstructure:"REMINDER_LEAD_MINUTES"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	ReminderFCMTopic        string `mapstructure:"REMINDER_FCM_TOPIC"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("TIMEZONE", "Local")
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:8000/api")
	viper.SetDefault("BACKEND_API_TOKEN", "")
	viper.SetDefault("BACKEND_TIMEOUT_SECONDS", 10)
	viper.SetDefault("BACKEND_REQUESTS_PER_SEC", 20.0)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 1)
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "opsdash")
	viper.SetDefault("REMINDER_LEAD_MINUTES", 15)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("REMINDER_FCM_TOPIC", "meeting-reminders")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location resolves TIMEZONE, falling back to the local zone.
func Location() *time.Location {
	if AppConfig.Timezone == "" || AppConfig.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(AppConfig.Timezone)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, using local time", AppConfig.Timezone)
		return time.Local
	}
	return loc
}

// BackendTimeout returns the per-request upstream timeout.
func BackendTimeout() time.Duration {
	if AppConfig.BackendTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(AppConfig.BackendTimeoutSeconds) * time.Second
}

// SessionTTL returns the sliding lifetime of a board session.
func SessionTTL() time.Duration {
	if AppConfig.SessionTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(AppConfig.SessionTTLMinutes) * time.Minute
}
