package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string `mapstructure:"APP_ENV"`
	Port           string `mapstructure:"PORT"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`

	// Forwarding headers are only honoured from these proxies (IPs or CIDRs, comma separated).
	TrustedProxies   string `mapstructure:"TRUSTED_PROXIES"`
	BehindCloudflare bool   `mapstructure:"BEHIND_CLOUDFLARE"`

	// SecretKey signs password reset tokens.
	SecretKey     string `mapstructure:"SECRET_KEY"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	ResetTokenTTL int    `mapstructure:"RESET_TOKEN_TTL"` // seconds

	PostsPerPage int    `mapstructure:"POSTS_PER_PAGE"`
	Languages    string `mapstructure:"LANGUAGES"`

	MailServer   string `mapstructure:"MAIL_SERVER"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUsername string `mapstructure:"MAIL_USERNAME"`
	MailPassword string `mapstructure:"MAIL_PASSWORD"`
	MailUseTLS   bool   `mapstructure:"MAIL_USE_TLS"`
	MailSender   string `mapstructure:"MAIL_SENDER"`
	Admins       string `mapstructure:"ADMINS"`

	TranslatorKey    string `mapstructure:"MS_TRANSLATOR_KEY"`
	TranslatorRegion string `mapstructure:"MS_TRANSLATOR_REGION"`
	TranslatorURL    string `mapstructure:"MS_TRANSLATOR_URL"`
}

func LoadConfig() (config Config, err error) {
	v := viper.New()
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "sqlite://microblog.db")
	v.SetDefault("MIGRATIONS_PATH", "file://migration")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("BEHIND_CLOUDFLARE", false)
	v.SetDefault("SECRET_KEY", "you-will-never-guess")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("RESET_TOKEN_TTL", 600)
	v.SetDefault("POSTS_PER_PAGE", 25)
	v.SetDefault("LANGUAGES", "en,es")
	v.SetDefault("MAIL_SERVER", "")
	v.SetDefault("MAIL_PORT", 25)
	v.SetDefault("MAIL_USERNAME", "")
	v.SetDefault("MAIL_PASSWORD", "")
	v.SetDefault("MAIL_USE_TLS", false)
	v.SetDefault("MAIL_SENDER", "no-reply@microblog.local")
	v.SetDefault("ADMINS", "")
	v.SetDefault("MS_TRANSLATOR_KEY", "")
	v.SetDefault("MS_TRANSLATOR_REGION", "uksouth")
	v.SetDefault("MS_TRANSLATOR_URL", "https://api.cognitive.microsofttranslator.com")

	v.AutomaticEnv()

	err = v.Unmarshal(&config)
	if err != nil {
		log.Printf("unable to decode into struct, %v", err)
		return
	}

	if config.SessionSecret == "" {
		config.SessionSecret = config.SecretKey
	}

	return
}

// LanguageList returns the configured UI languages, first one being the fallback.
func (c Config) LanguageList() []string {
	var langs []string
	for _, l := range strings.Split(c.Languages, ",") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return []string{"en"}
	}
	return langs
}

// AdminList returns the addresses that receive operational mail.
func (c Config) AdminList() []string {
	var admins []string
	for _, a := range strings.Split(c.Admins, ",") {
		if a = strings.TrimSpace(a); a != "" {
			admins = append(admins, a)
		}
	}
	return admins
}

func (c Config) TrustedProxyList() []string {
	var proxies []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}
