// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/hamed0406/runnercheck/internal/config"
)

type checker struct {
	out, err io.Writer
	failed   bool
}

func (c *checker) fail(msg string) { fmt.Fprintln(c.err, "✖", msg); c.failed = true }
func (c *checker) warn(msg string) { fmt.Fprintln(c.err, "⚠", msg) }
func (c *checker) ok(msg string)   { fmt.Fprintln(c.out, "✔", msg) }

func main() {
	c := &checker{out: os.Stdout, err: os.Stderr}
	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if !preflight(c, path) {
		os.Exit(1)
	}
}

// preflight validates the runnercheck environment (and optional YAML file).
func preflight(c *checker, path string) bool {
	cfg, err := config.Load(path)
	if err != nil {
		c.fail(err.Error())
		return false
	}
	c.ok(fmt.Sprintf("timeout=%s workers=%d", cfg.Timeout, cfg.Workers))

	for name, v := range map[string]string{
		"ADMIN_API_KEYS":  os.Getenv("ADMIN_API_KEYS"),
		"PUBLIC_API_KEYS": os.Getenv("PUBLIC_API_KEYS"),
	} {
		if strings.Contains(strings.TrimSpace(v), " ") {
			c.warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}
	if len(cfg.AdminAPIKeys) == 0 {
		c.warn("ADMIN_API_KEYS is empty (POST /api/scans is open).")
	}
	if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
		c.warn("no API keys configured (read routes are open).")
	}

	switch {
	case cfg.DatabaseURL != "":
		if u, err := url.Parse(cfg.DatabaseURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			c.fail("DATABASE_URL is not a postgres:// URL")
		} else {
			c.ok("DATABASE_URL present (host " + u.Host + ")")
		}
	case cfg.HistoryDB != "":
		c.ok("HISTORY_DB=" + cfg.HistoryDB)
	default:
		c.warn("no DATABASE_URL or HISTORY_DB; history is kept in memory only.")
	}

	if cfg.SlackWebhook == "" {
		c.warn("SLACK_WEBHOOK_URL empty; notifications disabled.")
	} else if u, err := url.Parse(cfg.SlackWebhook); err != nil || u.Scheme != "https" {
		c.fail("SLACK_WEBHOOK_URL must be an https URL")
	} else {
		c.ok("SLACK_WEBHOOK_URL present")
	}

	if len(cfg.AllowedOrigins) == 0 {
		c.warn("ALLOWED_ORIGINS empty; CORS allows every origin.")
	} else {
		c.ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	if c.failed {
		return false
	}
	c.ok("preflight passed")
	return true
}
