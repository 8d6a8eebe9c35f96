package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

// Config параметры запуска сервиса
type Config struct {
	Addr            string
	DBDriver        string
	DSN             string
	ShutdownTimeout time.Duration
	GinMode         string
}

// Default значения по умолчанию: sqlite-файл db.sqlite рядом с процессом
func Default() Config {
	return Config{
		Addr:            ":8000",
		DBDriver:        "sqlite",
		DSN:             "db.sqlite",
		ShutdownTimeout: 5 * time.Second,
		GinMode:         gin.ReleaseMode,
	}
}

const envPrefix = "SHOPAPI_"

// envNames флаг -> переменная окружения
var envNames = map[string]string{
	"addr":             envPrefix + "ADDR",
	"db-driver":        envPrefix + "DB_DRIVER",
	"dsn":              envPrefix + "DSN",
	"shutdown-timeout": envPrefix + "SHUTDOWN_TIMEOUT",
	"gin-mode":         envPrefix + "GIN_MODE",
}

// RegisterFlags привязывает поля к набору флагов
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fs.StringVar(&c.DBDriver, "db-driver", c.DBDriver, "database driver: sqlite or postgres")
	fs.StringVar(&c.DSN, "dsn", c.DSN, "database DSN (file path for sqlite)")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "graceful shutdown timeout")
	fs.StringVar(&c.GinMode, "gin-mode", c.GinMode, "gin mode: release, debug or test")
}

// ApplyEnv переносит значения из окружения во флаги, не заданные явно
func ApplyEnv(fs *pflag.FlagSet, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		env, ok := envNames[f.Name]
		if !ok || f.Changed || err != nil {
			return
		}
		if v, ok := lookup(env); ok {
			if setErr := fs.Set(f.Name, v); setErr != nil {
				err = errors.Wrapf(setErr, "%s", env)
			}
		}
	})
	return err
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.DSN == "" {
		return errors.New("dsn must not be empty")
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return errors.Newf("unsupported db driver %q", c.DBDriver)
	}
	switch c.GinMode {
	case gin.ReleaseMode, gin.DebugMode, gin.TestMode:
	default:
		return errors.Newf("unsupported gin mode %q", c.GinMode)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	return nil
}
