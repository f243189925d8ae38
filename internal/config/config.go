package config

import "os"

// Config holds the environment-provided settings. The mail values are part
// of the deployment surface but nothing sends mail at runtime.
type Config struct {
	Port      string
	DBURI     string
	SecretKey string

	SenderEmail   string
	EmailPassword string
	ReceiverEmail string
	SMTPServer    string
}

// Load reads configuration from environment variables, falling back to a
// local sqlite file when no database URI is set.
func Load() *Config {
	return &Config{
		Port:          getEnvOrDefault("PORT", "8080"),
		DBURI:         getEnvOrDefault("DB_URI", "posts.db"),
		SecretKey:     os.Getenv("SECRET_KEY"),
		SenderEmail:   os.Getenv("SENDER_EMAIL"),
		EmailPassword: os.Getenv("EMAIL_PASSWORD"),
		ReceiverEmail: os.Getenv("RECEIVER_EMAIL"),
		SMTPServer:    os.Getenv("SMTP_SERVER"),
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
