// Package config reads prefixed environment variables
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"devquest/internal/platform/logger"

	"github.com/joho/godotenv"
)

// EnvFileKey names an alternate dotenv file, ./.env otherwise
const EnvFileKey = "DEVQUEST_ENV_FILE"

// LoadDotenv fills unset variables from the dotenv file and reports which file it read.
// A missing file is not an error, set variables always win.
func LoadDotenv() (string, error) {
	file := strings.TrimSpace(os.Getenv(EnvFileKey))
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return file, nil
}

// Conf is a view over the environment scoped by a key prefix such as CORE_API_
type Conf struct{ prefix string }

// New returns the unprefixed root view
func New() Conf { return Conf{} }

// Prefix returns a child view, prefixes stack
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key returns the full variable name for key
func (c Conf) Key(key string) string { return c.prefix + key }

func (c Conf) lookup(key string) string { return strings.TrimSpace(os.Getenv(c.Key(key))) }

// MustString returns the value or panics when it is unset or blank
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.Key(key)).Msg("missing required env")
	}
	return v
}

// MayString returns the value or def when unset
func (c Conf) MayString(key, def string) string {
	return parse(c, key, def, func(s string) (string, error) { return s, nil })
}

// MayInt returns the value or def when unset or not an int
func (c Conf) MayInt(key string, def int) int { return parse(c, key, def, strconv.Atoi) }

// MayBool returns the value or def when unset or not a bool
func (c Conf) MayBool(key string, def bool) bool { return parse(c, key, def, strconv.ParseBool) }

// MayDuration returns the value or def when unset or not a duration like 250ms
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return parse(c, key, def, time.ParseDuration)
}

// a malformed value is logged and replaced by def so a typo never stops boot
func parse[T any](c Conf, key string, def T, conv func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := conv(s)
	if err != nil {
		logger.Get().Warn().
			Str("key", c.Key(key)).
			Str("value", s).
			Interface("default", def).
			Msg("invalid env value, using default")
		return def
	}
	return v
}
