package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey string        `mapstructure:"secret_key"`
		TTL       time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Bcrypt struct {
		Cost int `mapstructure:"cost"`
	} `mapstructure:"bcrypt"`
	Mail struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		Sender   string `mapstructure:"sender"`
		// AppName prefixes every subject line.
		AppName string `mapstructure:"app_name"`
	} `mapstructure:"mail"`
	Storage struct {
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Bucket    string `mapstructure:"bucket"`
		UseSSL    bool   `mapstructure:"use_ssl"`
	} `mapstructure:"storage"`
	Tokens struct {
		// Lifetimes are written as "10m", "1h" or "7d".
		EmailVerification string        `mapstructure:"email_verification"`
		ResetPassword     string        `mapstructure:"reset_password"`
		DeleteAccount     string        `mapstructure:"delete_account"`
		PurgeInterval     time.Duration `mapstructure:"purge_interval"`
	} `mapstructure:"tokens"`
}

var AppConfig Config

func LoadConfig(path string) {
	// A missing .env file is fine, real deployments use the environment directly.
	_ = godotenv.Load()

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("jwt.ttl", time.Hour)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("bcrypt.cost", 12)
	viper.SetDefault("mail.port", 587)
	viper.SetDefault("mail.app_name", "Merchant")
	viper.SetDefault("storage.bucket", "uploads")
	viper.SetDefault("tokens.email_verification", "10m")
	viper.SetDefault("tokens.reset_password", "30m")
	viper.SetDefault("tokens.delete_account", "10m")
	viper.SetDefault("tokens.purge_interval", 15*time.Minute)
}
