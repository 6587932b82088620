package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/comparative"
)

// EnvPrefix 环境变量前缀，例如 WR_DB_HOST、WR_LOG_LEVEL
const EnvPrefix = "WR_"

// Config 项目配置结构体
type Config struct {
	Log         LogConfig           `yaml:"log" envPrefix:"LOG_"`
	DB          DBConfig            `yaml:"db" envPrefix:"DB_"`
	Catalog     CatalogConfig       `yaml:"catalog" envPrefix:"CATALOG_"`
	Analytics   comparative.Options `yaml:"analytics"`
	Concurrency ConcurrencyConfig   `yaml:"concurrency"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT" validate:"gte=0,lte=65535"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	Name     string `yaml:"name" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE" validate:"omitempty,oneof=disable require verify-ca verify-full"`
}

// DSN lib/pq 连接串
func (c DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode)
}

// CatalogConfig 职业目录配置
type CatalogConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	File  string `yaml:"file" env:"FILE"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" validate:"gte=0,lte=256"`
	QPS     int `yaml:"qps" validate:"gte=0"`
	RPM     int `yaml:"rpm" validate:"gte=0"`
}

// Default 未配置项的默认值
func Default() Config {
	return Config{
		Log:         LogConfig{Level: "info"},
		DB:          DBConfig{Host: "localhost", Port: 5432, User: "postgres", Name: "workforce_radar"},
		Analytics:   comparative.DefaultOptions(),
		Concurrency: ConcurrencyConfig{Workers: 4},
	}
}

// LoadConfig 从指定路径加载配置，再用环境变量覆盖并校验
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv 用 WR_ 前缀的环境变量覆盖配置
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env overrides: %w", err)
	}
	return nil
}

// Validate 校验配置取值范围
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
