package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appname  string `yaml:"appname"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	UploadDir string `yaml:"upload_dir"`
	Secret    string `yaml:"secret"`
}

type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type JwtConfig struct {
	Secret    string `yaml:"secret"`
	Algorithm string `yaml:"algorithm"`
	ExpireMin int    `yaml:"expire_min"`
}

type SmtpConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig  `yaml:"system"`
	Web      WebConfig  `yaml:"web"`
	Database DBConfig   `yaml:"database"`
	Jwt      JwtConfig  `yaml:"jwt"`
	Smtp     SmtpConfig `yaml:"smtp"`
	Logger   LogConfig  `yaml:"logger"`
}

func (c *AppConfig) GetWebAddr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appname:  "Animerch",
		Location: "Asia/Almaty",
		Workdir:  "/var/animerch",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		UploadDir: "/var/animerch/uploads",
		Secret:    "9b6de5cc-animerch-web-0cc258076f",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "animerch",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
	},
	Jwt: JwtConfig{
		Secret:    "9b6de5cc-animerch-jwt-0cc258076f",
		Algorithm: "HS256",
		ExpireMin: 30,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/animerch/animerch.log",
	},
}

// LoadConfig reads the YAML config file when it exists, falls back to
// defaults otherwise, then applies environment overrides.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if _, err := os.Stat(cfile); err == nil {
			data, err := os.ReadFile(cfile)
			if err == nil {
				fcfg := new(AppConfig)
				if err := yaml.Unmarshal(data, fcfg); err == nil {
					cfg = fcfg
				}
			}
		}
	}

	setEnvStringValue("ANIMERCH_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("ANIMERCH_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvStringValue("ANIMERCH_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("ANIMERCH_WEB_PORT", &cfg.Web.Port)
	setEnvStringValue("ANIMERCH_WEB_UPLOAD_DIR", &cfg.Web.UploadDir)
	setEnvStringValue("ANIMERCH_WEB_SECRET", &cfg.Web.Secret)
	setEnvStringValue("ANIMERCH_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("ANIMERCH_DB_PORT", &cfg.Database.Port)
	setEnvStringValue("ANIMERCH_DB_NAME", &cfg.Database.Name)
	setEnvStringValue("ANIMERCH_DB_USER", &cfg.Database.User)
	setEnvStringValue("ANIMERCH_DB_PWD", &cfg.Database.Passwd)
	setEnvBoolValue("ANIMERCH_DB_DEBUG", &cfg.Database.Debug)
	setEnvStringValue("ANIMERCH_JWT_SECRET", &cfg.Jwt.Secret)
	setEnvStringValue("ANIMERCH_JWT_ALGORITHM", &cfg.Jwt.Algorithm)
	setEnvIntValue("ANIMERCH_JWT_EXPIRE_MIN", &cfg.Jwt.ExpireMin)
	setEnvStringValue("ANIMERCH_SMTP_HOST", &cfg.Smtp.Host)
	setEnvIntValue("ANIMERCH_SMTP_PORT", &cfg.Smtp.Port)
	setEnvStringValue("ANIMERCH_SMTP_USERNAME", &cfg.Smtp.Username)
	setEnvStringValue("ANIMERCH_SMTP_PASSWORD", &cfg.Smtp.Password)
	setEnvStringValue("ANIMERCH_SMTP_FROM", &cfg.Smtp.From)
	setEnvStringValue("ANIMERCH_LOGGER_MODE", &cfg.Logger.Mode)

	return cfg
}

func setEnvStringValue(name string, val *string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*val = v
	}
}

func setEnvIntValue(name string, val *int) {
	if v, ok := os.LookupEnv(name); ok {
		if i, err := strconv.Atoi(v); err == nil {
			*val = i
		}
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v, ok := os.LookupEnv(name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*val = b
		}
	}
}
