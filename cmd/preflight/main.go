// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hamed0406/sitewatch/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg, err := config.Load(".env")
	if err != nil {
		fail(err.Error())
	}
	ok(fmt.Sprintf("%d site(s) loaded from %s", len(cfg.Sites), cfg.SitesFile))
	ok(fmt.Sprintf("interval=%s probe_timeout=%s concurrency=%d",
		cfg.Interval(), cfg.ProbeTimeout, cfg.MaxConcurrentChecks))

	if cfg.Email.Enabled() {
		ok(fmt.Sprintf("email alerts to %s via %s:%d", cfg.Email.Receiver, cfg.Email.SMTPHost, cfg.Email.SMTPPort))
	} else {
		warn("EMAIL_SENDER empty; email alerts disabled.")
	}
	if cfg.SlackWebhook != "" {
		ok("SLACK_WEBHOOK_URL present")
	}
	if !cfg.Email.Enabled() && cfg.SlackWebhook == "" {
		warn("no notification channel configured; alerts will only be logged.")
	}

	if cfg.Status.Addr == "" {
		ok("status listener disabled (STATUS_ADDR empty)")
	} else {
		ok("STATUS_ADDR=" + cfg.Status.Addr)
		if len(cfg.Status.APIKeys) == 0 {
			warn("STATUS_API_KEYS empty; /api/status is open to anyone who can reach STATUS_ADDR.")
		}
		for _, k := range cfg.Status.APIKeys {
			if strings.TrimSpace(k) != k {
				warn("STATUS_API_KEYS contains spaces; use comma-separated with no spaces, e.g. key1,key2")
				break
			}
		}
	}

	ok("preflight passed")
}
