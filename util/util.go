package util

import (
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/gommon/log"
)

// Environment variable names recognized by the application.
const (
	BindAddressEnvVar   = "BIND_ADDRESS"
	DBTypeEnvVar        = "DB_TYPE"
	DBPathEnvVar        = "DB_PATH"
	SessionSecretEnvVar = "SESSION_SECRET"
	LogLevelEnvVar      = "LOG_LEVEL"
)

func LookupEnvOrString(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func LookupEnvOrBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		v, err := strconv.ParseBool(val)
		if err != nil {
			fmt.Fprintf(os.Stderr, "LookupEnvOrBool[%s]: %v\n", key, err)
		}
		return v
	}
	return defaultVal
}

func LookupEnvOrInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		v, err := strconv.Atoi(val)
		if err != nil {
			fmt.Fprintf(os.Stderr, "LookupEnvOrInt[%s]: %v\n", key, err)
		}
		return v
	}
	return defaultVal
}

// StringFromEmbedFile reads a file from an embedded filesystem into a string
func StringFromEmbedFile(efs fs.FS, filename string) (string, error) {
	file, err := fs.ReadFile(efs, filename)
	if err != nil {
		return "", err
	}
	return string(file), nil
}

// ParseLogLevel returns the gommon log level matching the given name
func ParseLogLevel(lvl string) (log.Lvl, error) {
	switch strings.ToLower(lvl) {
	case "debug":
		return log.DEBUG, nil
	case "info":
		return log.INFO, nil
	case "warn":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	default:
		return log.DEBUG, fmt.Errorf("not a valid log level: %s", lvl)
	}
}
