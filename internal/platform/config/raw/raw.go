// Package raw reads env vars for bootstrap code that cannot import the logger
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a prefixed env view without logging
type Conf struct{ prefix string }

// New returns the unprefixed root view
func New() Conf { return Conf{} }

// Prefix returns a child view such as LOG_
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Get returns the trimmed value or def when blank
func (c Conf) Get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(c.prefix + key)); v != "" {
		return v
	}
	return def
}

// GetBool returns the parsed value or def when blank or malformed
func (c Conf) GetBool(key string, def bool) bool {
	b, err := strconv.ParseBool(c.Get(key, ""))
	if err != nil {
		return def
	}
	return b
}
