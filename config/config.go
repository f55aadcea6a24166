package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration. It is constructed once in main
// and passed by reference into each component's constructor; nothing reads
// ambient globals.
type Config struct {
	Server struct {
		Port      int    `yaml:"port"`
		ClientURL string `yaml:"client_url"` // front end origin, used for CORS and redirects
	} `yaml:"server"`
	Database struct {
		Host     string `yaml:"host"`
		User     string `yaml:"user"`
		Password string `yaml:"password" envconfig:"DB_PASSWORD"`
		DBName   string `yaml:"dbname"`
		Port     string `yaml:"port"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`
	Auth struct {
		Secret  string `yaml:"secret" envconfig:"JWT_SECRET"`
		ExpHour int    `yaml:"exp_hour"`
	} `yaml:"auth"`
	Payment struct {
		SecretKey     string `yaml:"secret_key" envconfig:"PAYMENT_SECRET_KEY"`
		WebhookSecret string `yaml:"webhook_secret" envconfig:"PAYMENT_WEBHOOK_SECRET"`
		SuccessURL    string `yaml:"success_url"`
		CancelURL     string `yaml:"cancel_url"`
	} `yaml:"payment"`
	GenAI struct {
		APIKey     string `yaml:"api_key" envconfig:"GENAI_API_KEY"`
		BaseURL    string `yaml:"base_url"`
		ChatModel  string `yaml:"chat_model"`
		ImageModel string `yaml:"image_model"`
	} `yaml:"genai"`
	Storage struct {
		CloudName string `yaml:"cloud_name"`
		APIKey    string `yaml:"api_key" envconfig:"STORAGE_API_KEY"`
		APISecret string `yaml:"api_secret" envconfig:"STORAGE_API_SECRET"`
	} `yaml:"storage"`
	OAuth struct {
		GoogleClientID     string `yaml:"google_client_id"`
		GoogleClientSecret string `yaml:"google_client_secret" envconfig:"GOOGLE_CLIENT_SECRET"`
		RedirectURL        string `yaml:"redirect_url"`
	} `yaml:"oauth"`
	MQ struct {
		URL      string `yaml:"url" envconfig:"AMQP_URL"`
		Exchange string `yaml:"exchange"`
	} `yaml:"mq"`
}

// DSN generates the PostgreSQL DSN from database config.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Database.Host,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.Port,
		c.Database.SSLMode,
	)
}

// Load reads the YAML configuration file, overlays secrets from the
// environment, and validates required fields.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	required := []struct {
		key, val string
	}{
		{"database.host", c.Database.Host},
		{"database.user", c.Database.User},
		{"database.password", c.Database.Password},
		{"database.dbname", c.Database.DBName},
		{"database.port", c.Database.Port},
		{"database.sslmode", c.Database.SSLMode},
		{"auth.secret", c.Auth.Secret},
		{"payment.secret_key", c.Payment.SecretKey},
		{"payment.webhook_secret", c.Payment.WebhookSecret},
		{"payment.success_url", c.Payment.SuccessURL},
		{"payment.cancel_url", c.Payment.CancelURL},
		{"genai.api_key", c.GenAI.APIKey},
		{"storage.cloud_name", c.Storage.CloudName},
		{"storage.api_key", c.Storage.APIKey},
		{"storage.api_secret", c.Storage.APISecret},
	}
	for _, r := range required {
		if r.val == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	if c.Auth.ExpHour <= 0 {
		c.Auth.ExpHour = 1
	}
	return nil
}
