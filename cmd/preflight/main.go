package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	addr := strings.TrimSpace(os.Getenv("ADDR"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	webhook := strings.TrimSpace(os.Getenv("SLACK_WEBHOOK"))

	if admin == "" {
		fail("ADMIN_API_KEYS is empty (mutation routes will be open or 403).")
	}
	if pub == "" {
		warn("PUBLIC_API_KEYS is empty (read routes accept admin keys only).")
	}

	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if addr == "" {
		warn("ADDR is empty; the API will bind its default :5000.")
	} else {
		ok("ADDR set: " + addr)
	}

	if db == "" {
		warn("DATABASE_URL is empty; probe results will not be archived.")
	} else if !strings.HasPrefix(db, "postgres://") && !strings.HasPrefix(db, "postgresql://") {
		fail("DATABASE_URL does not look like a postgres DSN.")
	} else {
		ok("DATABASE_URL looks sane.")
	}

	if webhook == "" {
		warn("SLACK_WEBHOOK is empty; no alerts will be sent.")
	} else {
		ok("SLACK_WEBHOOK set.")
	}

	if v := os.Getenv("PROBE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n < 1 {
			fail("PROBE_WORKERS must be a positive integer, got " + v)
		}
	}
	if v := os.Getenv("HISTORY_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n < 1 {
			fail("HISTORY_CAPACITY must be a positive integer, got " + v)
		}
	}

	ok("environment looks good")
}
