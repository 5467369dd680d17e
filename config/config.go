package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port         int
		ReadTimeout  string
		WriteTimeout string
	}
	Site struct {
		Root string
		Host string
	}
	Sitemap struct {
		Output     string
		Ignore     []string
		OnShutdown bool
	}
	Database struct {
		Driver string
		URL    string
	}
	Logging struct {
		Dir string
	}
	Checker struct {
		UserAgent   string
		Parallelism int
		Timeout     string
	}
}

// LoadConfig reads config.yaml from the working directory or ./config, or
// from path when it is non-empty. A missing default file is not an error.
// Every key can be overridden from the environment, e.g. DEVSERVER_SITE_HOST.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readtimeout", "15s")
	v.SetDefault("server.writetimeout", "15s")
	v.SetDefault("site.root", "build")
	v.SetDefault("site.host", "https://example.com")
	v.SetDefault("sitemap.output", "sitemap.xml")
	v.SetDefault("sitemap.ignore", []string{`(?i)\.DS_Store$`, `^/sitemap\.xml$`})
	v.SetDefault("sitemap.onshutdown", true)
	v.SetDefault("database.driver", "")
	v.SetDefault("database.url", "")
	v.SetDefault("logging.dir", "logs")
	v.SetDefault("checker.useragent", "Site Devserver Checker v1.0")
	v.SetDefault("checker.parallelism", 2)
	v.SetDefault("checker.timeout", "30s")

	v.SetEnvPrefix("devserver")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 15*time.Second)
}

func (c *Config) GetCheckTimeout() time.Duration {
	return parseDuration(c.Checker.Timeout, 30*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}
