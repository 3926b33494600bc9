package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string `mapstructure:"PORT"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	FrontendURL  string `mapstructure:"FRONTEND_URL"`
	GalleryURL   string `mapstructure:"GALLERY_URL"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`

	PaymentGatewayURL     string `mapstructure:"PAYMENT_GATEWAY_URL"`
	PaymentTimeoutSeconds int    `mapstructure:"PAYMENT_TIMEOUT_SECONDS"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	DiscordBotToken  string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordChannelID string `mapstructure:"DISCORD_CHANNEL_ID"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "camps.db")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "http://127.0.0.1:8080/auth/google/callback")
	viper.SetDefault("GALLERY_URL", "http://127.0.0.1:8080/gallery")
	viper.SetDefault("PAYMENT_TIMEOUT_SECONDS", 15)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("MAIL_FROM", "noreply@tabor-plzen.cz")

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("FRONTEND_URL")
	viper.BindEnv("GOOGLE_CLIENT_ID")
	viper.BindEnv("GOOGLE_CLIENT_SECRET")
	viper.BindEnv("GOOGLE_REDIRECT_URL")
	viper.BindEnv("PAYMENT_GATEWAY_URL")
	viper.BindEnv("PAYMENT_TIMEOUT_SECONDS")
	viper.BindEnv("SMTP_HOST")
	viper.BindEnv("SMTP_PORT")
	viper.BindEnv("SMTP_USERNAME")
	viper.BindEnv("SMTP_PASSWORD")
	viper.BindEnv("MAIL_FROM")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_CHANNEL_ID")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
