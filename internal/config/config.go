// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（JWT_SECRET、数据库口令）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// JWT_SECRET 没有默认值：未设置时 Load 直接报错，进程拒绝启动。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// StorageDriver 存储驱动类型
type StorageDriver string

const (
	StorageMongo    StorageDriver = "mongo"
	StorageSQLite   StorageDriver = "sqlite"
	StoragePostgres StorageDriver = "postgres"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Redis   RedisConfig   `yaml:"redis"`
	MinIO   MinIOConfig   `yaml:"minio"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StorageConfig struct {
	Driver      StorageDriver `yaml:"driver"`
	MongoURI    string        `yaml:"mongo_uri"`
	MongoDB     string        `yaml:"mongo_db"`
	DatabaseURL string        `yaml:"database_url"`
	SQLitePath  string        `yaml:"sqlite_path"`
}

type AuthConfig struct {
	// SessionTTL 会话有效期：JWT 过期时间与 Cookie MaxAge 共用同一个值
	SessionTTL time.Duration `yaml:"-"`
	// LoginRatePerMin 登录/注册接口每 IP 每分钟允许的请求数
	LoginRatePerMin int `yaml:"login_rate_per_min"`
}

// UnmarshalYAML 支持 "24h" 这类时长字符串
func (a *AuthConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		SessionTTL      string `yaml:"session_ttl"`
		LoginRatePerMin int    `yaml:"login_rate_per_min"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.SessionTTL != "" {
		d, err := time.ParseDuration(raw.SessionTTL)
		if err != nil {
			return fmt.Errorf("auth.session_ttl: %w", err)
		}
		a.SessionTTL = d
	}
	if raw.LoginRatePerMin != 0 {
		a.LoginRatePerMin = raw.LoginRatePerMin
	}
	return nil
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// MinIOConfig 对象存储配置（报表归档）；Endpoint 为空表示未启用
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"-"` // MINIO_ACCESS_KEY
	SecretKey string `yaml:"-"` // MINIO_SECRET_KEY
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env       Environment
	APIPort   string
	Storage   StorageConfig
	JWTSecret string
	Auth      AuthConfig
	RedisURL  string
	MinIO     MinIOConfig
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 环境变量覆盖，校验必填项
func Load() (*Config, error) {
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	env := parseEnv(getEnv("APP_ENV", "dev"))
	yamlCfg := loadYAMLConfig(env)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set: refusing to start with no signing key")
	}

	cfg := &Config{
		Env:       env,
		APIPort:   getEnv("API_PORT", yamlCfg.Server.Port),
		Storage:   yamlCfg.Storage,
		JWTSecret: jwtSecret,
		Auth:      yamlCfg.Auth,
		RedisURL:  getEnv("REDIS_URL", yamlCfg.Redis.URL),
		MinIO:     yamlCfg.MinIO,
	}

	// 环境变量覆盖存储配置
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = StorageDriver(v)
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.Storage.MongoURI = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	cfg.MinIO.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	cfg.MinIO.SecretKey = os.Getenv("MINIO_SECRET_KEY")

	switch cfg.Storage.Driver {
	case StorageMongo, StorageSQLite, StoragePostgres:
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}

	if cfg.Auth.SessionTTL <= 0 {
		cfg.Auth.SessionTTL = 24 * time.Hour
	}
	if cfg.Auth.LoginRatePerMin <= 0 {
		cfg.Auth.LoginRatePerMin = 10
	}

	return cfg, nil
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	cfg := &YAMLConfig{
		Server: ServerConfig{Port: "8080"},
		Storage: StorageConfig{
			Driver:     StorageMongo,
			MongoURI:   "mongodb://localhost:27017",
			MongoDB:    "civic_portal",
			SQLitePath: "civic.db",
		},
		Auth: AuthConfig{SessionTTL: 24 * time.Hour, LoginRatePerMin: 10},
	}

	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsProduction 是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// String 返回配置摘要（隐藏口令）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Port: %s, Driver: %s, Mongo: %s, Redis: %s}",
		c.Env, c.APIPort, c.Storage.Driver, maskPassword(c.Storage.MongoURI), maskPassword(c.RedisURL))
}

// maskPassword 隐藏连接串中的口令
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:/@]+:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}
