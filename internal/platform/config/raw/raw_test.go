package raw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConf(t *testing.T) {
	t.Setenv("LOG_LEVEL", " debug ")
	t.Setenv("LOG_CALLER", "1")
	t.Setenv("LOG_JUNK", "maybe")
	c := New().Prefix("LOG_")

	assert.Equal(t, "debug", c.Get("LEVEL", "info"))
	assert.Equal(t, "json", c.Get("FORMAT", "json"))
	assert.True(t, c.GetBool("CALLER", false))
	assert.True(t, c.GetBool("JUNK", true))
	assert.False(t, c.GetBool("UNSET", false))
}
