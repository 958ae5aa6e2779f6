package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 模拟器运行配置
type Config struct {
	// BindAddress 监听地址，例如 "0.0.0.0:3000"
	BindAddress string
	// LogLevel 日志级别：debug、info、warn、error
	LogLevel string
	// Tick 自动更新间隔
	Tick time.Duration
	// Seed 随机数种子，0 表示使用当前时间
	Seed uint64
	// Updater 启动时是否开始自动更新
	Updater bool
	// Archive 是否启用内存中的短信归档
	Archive bool
	// Webhook 是否在启动时打开 webhook 开关
	Webhook bool
	// AdminPassword 覆盖初始数据中的登录密码
	AdminPassword string
}

// Option 修改配置的函数
type Option func(*Config) error

// Load 依次应用 opts 得到配置
func Load(opts ...Option) (*Config, error) {
	c := &Config{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithDefaults 默认值
func WithDefaults() Option {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:3000"
		c.LogLevel = "info"
		c.Tick = 2 * time.Second
		c.Updater = true
		c.Archive = true
		return nil
	}
}

// WithEnv 从环境变量读取，PORT 只替换端口，BIND_ADDRESS 优先
func WithEnv() Option {
	return func(c *Config) error {
		if port := os.Getenv("PORT"); port != "" {
			c.BindAddress = "0.0.0.0:" + port
		}
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}
		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}
		if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
			c.AdminPassword = pw
		}

		for name, apply := range map[string]func(string) error{
			"SIM_TICK":     c.setTick,
			"SIM_SEED":     c.setSeed,
			"SIM_UPDATER":  boolSetter(&c.Updater),
			"SIM_ARCHIVE":  boolSetter(&c.Archive),
			"SIM_WEBHOOKS": boolSetter(&c.Webhook),
		} {
			if v := os.Getenv(name); v != "" {
				if err := apply(v); err != nil {
					return fmt.Errorf("invalid %s: %w", name, err)
				}
			}
		}
		return nil
	}
}

// Flags 在 fs 上注册命令行参数
func Flags(fs *flag.FlagSet) {
	fs.String("bind-address", "", "listen address")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.Duration("tick", 0, "updater interval")
	fs.Uint64("seed", 0, "random seed, 0 for time based")
	fs.Bool("updater", true, "start the autonomous updater")
	fs.Bool("archive", true, "keep an in-memory sms archive")
	fs.Bool("webhooks", false, "enable webhooks at startup")
	fs.String("admin-password", "", "override the login password")
}

// WithFlags 只应用命令行中显式给出的参数
func WithFlags(fs *flag.FlagSet) Option {
	return func(c *Config) error {
		var err error
		fs.Visit(func(f *flag.Flag) {
			if err != nil {
				return
			}
			v := f.Value.String()
			switch f.Name {
			case "bind-address":
				c.BindAddress = v
			case "log-level":
				c.LogLevel = v
			case "admin-password":
				c.AdminPassword = v
			case "tick":
				err = c.setTick(v)
			case "seed":
				err = c.setSeed(v)
			case "updater":
				err = boolSetter(&c.Updater)(v)
			case "archive":
				err = boolSetter(&c.Archive)(v)
			case "webhooks":
				err = boolSetter(&c.Webhook)(v)
			}
			if err != nil {
				err = fmt.Errorf("invalid -%s: %w", f.Name, err)
			}
		})
		return err
	}
}

func (c *Config) setTick(v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("non-positive interval %s", d)
	}
	c.Tick = d
	return nil
}

func (c *Config) setSeed(v string) error {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return err
	}
	c.Seed = n
	return nil
}

func boolSetter(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}
