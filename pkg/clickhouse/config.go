package clickhouse

import (
	"fmt"
	"time"
)

type ClientOption func(*ClientConfig)

// ClientConfig describes one ClickHouse connection pool.
type ClientConfig struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	UseHTTP         bool
	AsyncInsert     bool
	WaitForAsync    bool
	MaxExecTime     time.Duration
}

func defaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Port:            9000,
		Database:        "default",
		User:            "default",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     10 * time.Second,
	}
}

func (c *ClientConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c *ClientConfig) validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("clickhouse: host is required")
	case c.Port <= 0:
		return fmt.Errorf("clickhouse: invalid port %d", c.Port)
	case c.Database == "":
		return fmt.Errorf("clickhouse: database is required")
	}
	return nil
}

func WithHost(host string) ClientOption { return func(c *ClientConfig) { c.Host = host } }
func WithPort(port int) ClientOption    { return func(c *ClientConfig) { c.Port = port } }
func WithHTTP(on bool) ClientOption     { return func(c *ClientConfig) { c.UseHTTP = on } }

// WithDatabase sets the database holding the forecasts table.
func WithDatabase(db string) ClientOption {
	return func(c *ClientConfig) { c.Database = db }
}

func WithCredentials(user, password string) ClientOption {
	return func(c *ClientConfig) {
		c.User = user
		c.Password = password
	}
}

// WithTimeouts overrides the dial and read timeouts. Zero keeps the default.
func WithTimeouts(dial, read time.Duration) ClientOption {
	return func(c *ClientConfig) {
		if dial > 0 {
			c.DialTimeout = dial
		}
		if read > 0 {
			c.ReadTimeout = read
		}
	}
}

// WithAsyncInsert turns on server-side insert buffering. wait makes each
// insert block until the buffer is flushed.
func WithAsyncInsert(enabled, wait bool) ClientOption {
	return func(c *ClientConfig) {
		c.AsyncInsert = enabled
		c.WaitForAsync = enabled && wait
	}
}

// WithMaxExecutionTime caps server-side query time, rounded down to seconds.
func WithMaxExecutionTime(d time.Duration) ClientOption {
	return func(c *ClientConfig) { c.MaxExecTime = d }
}
