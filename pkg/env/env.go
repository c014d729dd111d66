// Package env reads raw environment variables for the few knobs that sit
// outside the envconfig-managed configuration, such as the platform PORT.
package env

import "os"

// Get looks up key and falls back to def when the variable is unset or empty.
func Get(key, def string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	return v
}
