package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Export   ExportConfig
	Jobs     JobsConfig
	Schedule ScheduleConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

// RedisConfig covers both logical namespaces: CacheDB backs the read cache,
// QueueDB backs the job broker. Same server, different database indices.
type RedisConfig struct {
	Addr    string
	Pass    string
	CacheDB int
	QueueDB int
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type ExportConfig struct {
	Dir string
}

type JobsConfig struct {
	Workers   int
	Retention time.Duration
}

// ScheduleConfig holds the wall-clock hours for the periodic jobs.
type ScheduleConfig struct {
	ReminderHour int // daily inactivity reminder
	ReportHour   int // monthly report, day 1 of each month
}

// AdminConfig describes the seeded administrator account. Admin accounts are
// never self-registered.
type AdminConfig struct {
	Email    string
	Name     string
	Password string
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_CACHE_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 0)
	viper.SetDefault("JWT_EXPIRY", "24h")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("EXPORT_DIR", "exports")
	viper.SetDefault("JOB_WORKERS", 4)
	viper.SetDefault("JOB_RETENTION", "168h")
	viper.SetDefault("REMINDER_HOUR", 18)
	viper.SetDefault("REPORT_HOUR", 9)
	viper.SetDefault("ADMIN_EMAIL", "admin@example.com")
	viper.SetDefault("ADMIN_NAME", "Administrator")

	expiry, err := time.ParseDuration(viper.GetString("JWT_EXPIRY"))
	if err != nil {
		expiry = 24 * time.Hour
	}
	retention, err := time.ParseDuration(viper.GetString("JOB_RETENTION"))
	if err != nil {
		retention = 7 * 24 * time.Hour
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr:    viper.GetString("REDIS_ADDR"),
			Pass:    viper.GetString("REDIS_PASS"),
			CacheDB: viper.GetInt("REDIS_CACHE_DB"),
			QueueDB: viper.GetInt("REDIS_QUEUE_DB"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
			Expiry: expiry,
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			Username: viper.GetString("SMTP_USERNAME"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
		},
		Export: ExportConfig{
			Dir: viper.GetString("EXPORT_DIR"),
		},
		Jobs: JobsConfig{
			Workers:   viper.GetInt("JOB_WORKERS"),
			Retention: retention,
		},
		Schedule: ScheduleConfig{
			ReminderHour: viper.GetInt("REMINDER_HOUR"),
			ReportHour:   viper.GetInt("REPORT_HOUR"),
		},
		Admin: AdminConfig{
			Email:    viper.GetString("ADMIN_EMAIL"),
			Name:     viper.GetString("ADMIN_NAME"),
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	if cfg.JWT.Secret == "" {
		log.Println("WARNING: JWT_SECRET is not set")
	}

	return cfg, nil
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
