package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env         string   `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer  `yaml:"http_server"`
	Database    `yaml:"database"`
	Sources     `yaml:"sources"`
	Alerts      `yaml:"alerts"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"http://localhost:5173"`
	ErrorLog    string   `yaml:"error_log" env:"ERROR_LOG" env-default:"errors.log"`

	AdminLogin string `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass  string `yaml:"admin_pass" env:"ADMIN_PASS"`
}

type HTTPServer struct {
	Address      string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout      time.Duration `yaml:"timeout" env-default:"4s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"40s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Database struct {
	User            string        `yaml:"user" env:"DB_USER" env-required:"true"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DB_PORT" env-default:"3306"`
	Name            string        `yaml:"name" env:"DB_NAME" env-required:"true"`
	ParseTime       bool          `yaml:"parse_time" env-default:"false"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"1h"`
}

// Sources: физические таблицы за логическими источниками ACTIVE_ORDERS и HISTORICAL_ORDERS.
type Sources struct {
	ActiveTable     string `yaml:"active_table" env-default:"OF_DA"`
	HistoricalTable string `yaml:"historical_table" env-default:"HISTO_OF_DA"`
	OrderPrefix     string `yaml:"order_prefix" env-default:"F"`
}

type Alerts struct {
	Enabled  bool   `yaml:"enabled" env:"ALERTS_ENABLED" env-default:"false"`
	Schedule string `yaml:"schedule" env-default:"0 0 8 * * *"`
}

// DSN собирает строку подключения для go-sql-driver.
func (d Database) DSN() string {
	c := mysql.NewConfig()
	c.User = d.User
	c.Passwd = d.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	c.DBName = d.Name
	c.ParseTime = d.ParseTime

	return c.FormatDSN()
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: config file does not exist: %s: %w", op, path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
	}

	return &cfg, nil
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}
