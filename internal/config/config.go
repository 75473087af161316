package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort   string
	LogLevel  string
	LogFormat string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	OracleBaseURL string
	OracleAPIKey  string
	OracleTimeout time.Duration
	CCMBaseURL    string
	CCMAPIKey     string
	CCMTimeout    time.Duration
	CCMReceiptTTL time.Duration
	IdempTTLSecs  int

	MonitorInterval  time.Duration
	MonitorTimeout   time.Duration
	MonitorThreshold float64
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getduration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if p, err := time.ParseDuration(v); err == nil {
			return p
		}
	}
	return d
}

func Load() *Config {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "lendx"),
		MySQLUser: getenv("MYSQL_USER", "lendx"),
		MySQLPass: getenv("MYSQL_PASS", "lendx"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),

		OracleBaseURL: getenv("ORACLE_BASE_URL", "http://oracle:8081"),
		OracleAPIKey:  os.Getenv("ORACLE_API_KEY"),
		OracleTimeout: getduration("ORACLE_TIMEOUT", 5*time.Second),
		CCMBaseURL:    getenv("CCM_BASE_URL", "http://ccm-gateway:8082"),
		CCMAPIKey:     os.Getenv("CCM_API_KEY"),
		CCMTimeout:    getduration("CCM_TIMEOUT", 10*time.Second),
		CCMReceiptTTL: getduration("CCM_RECEIPT_TTL", 24*time.Hour),
		IdempTTLSecs:  300,

		MonitorInterval:  getduration("MONITOR_INTERVAL", time.Minute),
		MonitorTimeout:   getduration("MONITOR_TIMEOUT", 30*time.Second),
		MonitorThreshold: 1.0,
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	if v := os.Getenv("MONITOR_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.MonitorThreshold = f
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.OracleBaseURL == "" {
		return errors.New("missing ORACLE_BASE_URL")
	}
	if c.CCMBaseURL == "" {
		return errors.New("missing CCM_BASE_URL")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
