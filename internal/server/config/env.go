package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading a
// local .env file first when one exists. Only secrets and deploy-specific
// settings are read from the environment; structural settings stay in the
// JSON config or flags.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("NEWSDESK_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("NEWSDESK_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("NEWSDESK_WEBHOOK_SECRET"); v != "" {
		config.WebhookSecret = v
	}
	if v := os.Getenv("NEWSDESK_S3_ROOT_USER"); v != "" {
		config.S3RootUser = v
	}
	if v := os.Getenv("NEWSDESK_S3_ROOT_PASSWORD"); v != "" {
		config.S3RootPassword = v
	}
	if v := os.Getenv("NEWSDESK_SMTP_USER"); v != "" {
		config.SMTPUser = v
	}
	if v := os.Getenv("NEWSDESK_SMTP_PASSWORD"); v != "" {
		config.SMTPPassword = v
	}
	if v := os.Getenv("NEWSDESK_ADMIN_EMAILS"); v != "" {
		config.AdminEmails = splitList(v)
	}
}

// splitList parses a comma-separated list, trimming blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
