package config

import (
	"os"
	"strconv"
	"strings"
)

// Get returns the value of the environment variable key. When key is unset
// and key_FILE names a readable file, the trimmed file contents are used.
// Otherwise def is returned.
func Get(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if path := os.Getenv(key + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return def
}

// parsed applies parse to Get(key, ""), returning def when the value is
// unset or parse fails.
func parsed[T any](key string, def T, parse func(string) (T, error)) T {
	val := strings.TrimSpace(Get(key, ""))
	if val == "" {
		return def
	}
	v, err := parse(val)
	if err != nil {
		return def
	}
	return v
}

// GetInt reads key as a base-10 integer.
func GetInt(key string, def int) int {
	return parsed(key, def, strconv.Atoi)
}

// GetFloat reads key as a float64.
func GetFloat(key string, def float64) float64 {
	return parsed(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

var boolWords = map[string]bool{
	"1": true, "t": true, "true": true, "y": true, "yes": true,
	"0": false, "f": false, "false": false, "n": false, "no": false,
}

// GetBool accepts the words in boolWords, case-insensitively.
func GetBool(key string, def bool) bool {
	return parsed(key, def, func(s string) (bool, error) {
		b, ok := boolWords[strings.ToLower(s)]
		if !ok {
			return false, strconv.ErrSyntax
		}
		return b, nil
	})
}
