// utils/env.go
package utils

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// MustGetEnv exits when key is unset.
func MustGetEnv(key string) string {
	v := GetEnv(key, "")
	if v == "" {
		log.Fatalf("%s environment variable not set", key)
	}
	return v
}

func GetEnvInt(key string, fallback int) int {
	raw := GetEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️  %s=%q is not an integer, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := GetEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a duration, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

// SplitList splits a comma separated value and drops empty items.
func SplitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
