package config

import (
	"os"
	"strconv"
)

// IsDebug reports whether AQUA_DEBUG holds a true value ("1", "true", "T", ...).
func IsDebug() bool {
	on, err := strconv.ParseBool(os.Getenv("AQUA_DEBUG"))
	return err == nil && on
}
