package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the application configuration. Loaded once at startup via
// InitConf and treated as read-only afterwards.
var Conf *Config

type (
	ServerConfig struct {
		Host                      string
		Port                      string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	Config struct {
		Env      string
		Debug    bool
		TestMode bool

		AppName         string
		Build           string
		SecretKey       string
		FrontendBaseURL string
		WorkDir         string

		DefaultFromName string
		DefaultFromAddr string
		SendgridApiKey  string
		RollbarToken    string

		PasswordResetTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

func (c *DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// InitConf loads the configuration from defaults, an optional
// config/.env.<env> file and the environment, and sets core.Conf.
func InitConf() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	workDir := Getwd()

	env := os.Getenv("ENV") // DEV (default) | TEST | QA | PROD
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetDefault("env", env)
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("testmode", env == "TEST")
	v.SetDefault("appname", "CampusHub")
	v.SetDefault("build", "dev")
	v.SetDefault("secretkey", "z#7c@(r8&fjm!q-24d5y+vg0_s^x13nophlw6t9keiba*u)$c=")
	v.SetDefault("frontendbaseurl", "http://localhost:3000")
	v.SetDefault("workdir", workDir)
	v.SetDefault("defaultfromname", "CampusHub")
	v.SetDefault("defaultfromaddr", "noreply@campus.edu")
	v.SetDefault("sendgridapikey", "")
	v.SetDefault("rollbartoken", "")
	v.SetDefault("passwordresettimeoutdelta", 3*24*time.Hour)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.jwtexpirationdelta", 7*24*time.Hour)
	v.SetDefault("server.jwtrefreshexpirationdelta", 4*time.Hour)
	v.SetDefault("server.shutdowntimeout", 5*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "campushub")
	v.SetDefault("database.user", "campushub")
	v.SetDefault("database.password", "campushub")
	v.SetDefault("database.adminuser", "")
	v.SetDefault("database.adminpassword", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.disabletls", env == "DEV" || env == "TEST")

	// load config/.env.<env> if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	Conf = conf
	return conf
}
