package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 全局配置
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Socket  SocketConfig  `yaml:"socket"`
	Rooms   RoomsConfig   `yaml:"rooms"`
	Paths   PathsConfig   `yaml:"paths"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type SocketConfig struct {
	PingInterval   time.Duration `yaml:"ping_interval"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type RoomsConfig struct {
	// BootstrapPageSize 房间首屏加载的消息条数
	BootstrapPageSize int `yaml:"bootstrap_page_size"`
	// MaxPageSize 单次翻页允许请求的最大条数
	MaxPageSize int `yaml:"max_page_size"`
}

type PathsConfig struct {
	Seed string `yaml:"seed"`
}

// Load 从文件加载配置
func Load(path string) (*Config, error) {
	fmt.Printf("📋 Loading config from: %s\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	fmt.Printf("✅ Config parsed successfully\n")

	// 从环境变量覆盖部署相关项
	if port := os.Getenv("LOFT_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("parse LOFT_PORT: %w", err)
		}
		fmt.Printf("🔌 Using LOFT_PORT from environment: %d\n", p)
		cfg.Server.Port = p
	}
	if seed := os.Getenv("LOFT_SEED_PATH"); seed != "" {
		fmt.Printf("🌱 Using LOFT_SEED_PATH from environment: %s\n", seed)
		cfg.Paths.Seed = seed
	}

	cfg.applyDefaults()

	// 打印关键配置
	fmt.Printf("\n📊 Configuration Summary:\n")
	fmt.Printf("   Server: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("   Session TTL: %s\n", cfg.Session.TTL)
	fmt.Printf("   Seed Path: %s\n", cfg.Paths.Seed)
	fmt.Printf("\n")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	fmt.Printf("✅ Config validation passed\n\n")

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.Socket.PingInterval == 0 {
		c.Socket.PingInterval = 30 * time.Second
	}
	if c.Rooms.BootstrapPageSize == 0 {
		c.Rooms.BootstrapPageSize = 20
	}
	if c.Rooms.MaxPageSize == 0 {
		c.Rooms.MaxPageSize = 100
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Paths.Seed == "" {
		return fmt.Errorf("seed path is required (set paths.seed or LOFT_SEED_PATH)")
	}
	if c.Rooms.BootstrapPageSize > c.Rooms.MaxPageSize {
		return fmt.Errorf("bootstrap_page_size %d exceeds max_page_size %d",
			c.Rooms.BootstrapPageSize, c.Rooms.MaxPageSize)
	}
	return nil
}
