package config

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

// loadDotEnv loads KEY=VALUE pairs from a dotenv file into the process
// environment. Intentionally minimal: enough for local development without
// pulling in a dependency.
//
// Rules:
// - Empty lines and lines starting with # are ignored.
// - "export KEY=VALUE" is supported.
// - Values may be wrapped in single or double quotes; quotes are stripped.
// - Existing environment variables are not overwritten.
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		if os.Getenv(k) != "" {
			continue
		}
		_ = os.Setenv(k, unquote(strings.TrimSpace(v)))
	}
	return sc.Err()
}

func unquote(v string) string {
	if len(v) < 2 {
		return v
	}
	if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
		return v[1 : len(v)-1]
	}
	return v
}
