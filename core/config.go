package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address         string
		Host            string
		PublicDir       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	AuthConfig struct {
		TokenTTL       time.Duration
		RememberTTL    time.Duration
		PasswordScheme string // legacy-sha256 | bcrypt
	}

	DatabaseConfig struct {
		Engine     string // postgres | memory
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
		MaxConns   int
	}

	EmailConfig struct {
		Backend        string // console | sendgrid
		FromName       string
		FromAddress    string
		SendgridAPIKey string
	}

	LogConfig struct {
		Level  string
		Dev    bool
		File   string
		MaxAge time.Duration
	}

	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		SecretKey    string
		RollbarToken string
		Server       ServerConfig
		Auth         AuthConfig
		Database     DatabaseConfig
		Email        EmailConfig
		Log          LogConfig
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func (c EmailConfig) From() mail.Address {
	return mail.Address{Name: c.FromName, Address: c.FromAddress}
}

// NewConfig reads the configuration for the current ENV (DEV, TEST, QA, PROD).
// Values come from `<ENV>_*` environment variables, optionally seeded from config/.env.<env>.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Raha Member")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "x8#r2-qa!lw0m@zk7vp$e4n^c1&d9ft)hu5yj3(bg6os")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.publicDir", "public")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("auth.tokenTTL", 24*time.Hour)
	v.SetDefault("auth.rememberTTL", 14*24*time.Hour)
	v.SetDefault("auth.passwordScheme", "legacy-sha256")
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "churchcrm")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.maxConns", 10)
	v.SetDefault("email.backend", "console")
	v.SetDefault("email.fromName", "Raha Member")
	v.SetDefault("email.fromAddress", "no-reply@raha.local")
	v.SetDefault("email.sendgridAPIKey", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dev", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.maxAge", 7*24*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     env == "TEST",
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			Host:            v.GetString("server.host"),
			PublicDir:       v.GetString("server.publicDir"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Auth: AuthConfig{
			TokenTTL:       v.GetDuration("auth.tokenTTL"),
			RememberTTL:    v.GetDuration("auth.rememberTTL"),
			PasswordScheme: v.GetString("auth.passwordScheme"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
			MaxConns:   v.GetInt("database.maxConns"),
		},
		Email: EmailConfig{
			Backend:        v.GetString("email.backend"),
			FromName:       v.GetString("email.fromName"),
			FromAddress:    v.GetString("email.fromAddress"),
			SendgridAPIKey: v.GetString("email.sendgridAPIKey"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Dev:    v.GetBool("log.dev"),
			File:   v.GetString("log.file"),
			MaxAge: v.GetDuration("log.maxAge"),
		},
	}
}

// configDir returns $CONFIG_DIR, falling back to ./config.
func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	return filepath.Join(wd, "config")
}
