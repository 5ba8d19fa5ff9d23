package config

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

// SysConfig holds process-level settings.
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// WebConfig holds the HTTP listener settings.
type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// DBConfig holds database connection settings.
// Type is "postgres" in production; "sqlite" keeps a file under Workdir
// for development and tests.
type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system" json:"system"`
	Web      WebConfig `yaml:"web" json:"web"`
	Database DBConfig  `yaml:"database" json:"database"`
	Logger   LogConfig `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "kiosco",
		Location: "America/Argentina/Buenos_Aires",
		Workdir:  "/var/kiosco",
		Debug:    true,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 8080,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "kiosco",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/kiosco/kiosco.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

// LoadConfig reads the YAML configuration file if present and applies
// KIOSCO_* environment overrides on top. A missing file yields defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			cfg = new(AppConfig)
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "config parse error: %v\n", err)
				cfg = DefaultAppConfig
			}
		}
	}

	setEnvValue("KIOSCO_SYSTEM_DEBUG", func(v string) { cfg.System.Debug = cast.ToBool(v) })
	setEnvValue("KIOSCO_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("KIOSCO_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvValue("KIOSCO_WEB_PORT", func(v string) { cfg.Web.Port = cast.ToInt(v) })
	setEnvValue("KIOSCO_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("KIOSCO_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvValue("KIOSCO_DB_PORT", func(v string) { cfg.Database.Port = cast.ToInt(v) })
	setEnvValue("KIOSCO_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("KIOSCO_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("KIOSCO_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("KIOSCO_DB_DEBUG", func(v string) { cfg.Database.Debug = cast.ToBool(v) })
	setEnvValue("KIOSCO_LOGGER_MODE", func(v string) { cfg.Logger.Mode = v })

	return cfg
}
