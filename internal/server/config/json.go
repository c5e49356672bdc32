package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/meridianpress/newsdesk/internal/flagx"
	"github.com/meridianpress/newsdesk/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "1h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, set fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP     string         `json:"endpoint_addr_http"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	TokenIssuer          string         `json:"token_issuer"`
	SignOffExpiration    timex.Duration `json:"sign_off_expiration"`
	AssetTokenExpiration timex.Duration `json:"asset_token_expiration"`

	ApplicationName       string `json:"application_name"`
	ContentAPIURL         string `json:"content_api_url"`
	AuthorURIDomain       string `json:"author_uri_domain"`
	ExternalStorageMarker string `json:"external_storage_marker"`
	VocabPath             string `json:"vocab_path"`

	PublicDOIURLPrefix string `json:"public_doi_url_prefix"`
	DepositorName      string `json:"depositor_name"`
	DepositorEmail     string `json:"depositor_email"`
	Registrant         string `json:"registrant"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	SMTPHost     string   `json:"smtp_host"`
	SMTPPort     int      `json:"smtp_port"`
	SMTPUser     string   `json:"smtp_user"`
	SMTPPassword string   `json:"smtp_password"`
	EmailSender  string   `json:"email_sender"`
	AdminEmails  []string `json:"admin_emails"`

	WebhookEndpoints []string `json:"webhook_endpoints"`
	WebhookSecret    string   `json:"webhook_secret"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config flags; if
// neither is set, no JSON file is loaded. Unset fields keep their previous
// values. An unreadable or invalid file panics, matching flag-parse
// behaviour.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.TokenIssuer, c.TokenIssuer)
	setDuration(&config.SignOffExpiration, c.SignOffExpiration.Duration)
	setDuration(&config.AssetTokenExpiration, c.AssetTokenExpiration.Duration)
	setString(&config.ApplicationName, c.ApplicationName)
	setString(&config.ContentAPIURL, c.ContentAPIURL)
	setString(&config.AuthorURIDomain, c.AuthorURIDomain)
	setString(&config.ExternalStorageMarker, c.ExternalStorageMarker)
	setString(&config.VocabPath, c.VocabPath)
	setString(&config.PublicDOIURLPrefix, c.PublicDOIURLPrefix)
	setString(&config.DepositorName, c.DepositorName)
	setString(&config.DepositorEmail, c.DepositorEmail)
	setString(&config.Registrant, c.Registrant)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.EmailSender, c.EmailSender)
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	if len(c.AdminEmails) > 0 {
		config.AdminEmails = c.AdminEmails
	}
	if len(c.WebhookEndpoints) > 0 {
		config.WebhookEndpoints = c.WebhookEndpoints
	}
	setString(&config.WebhookSecret, c.WebhookSecret)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
