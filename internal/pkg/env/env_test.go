package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrecedence(t *testing.T) {
	t.Cleanup(func() { Env = nil })
	t.Setenv("CATALOG_TEST_KEY", "from-os")

	Env = map[string]string{}
	assert.Equal(t, "from-os", GetEnv("CATALOG_TEST_KEY", "fallback"))

	Env["CATALOG_TEST_KEY"] = "from-file"
	assert.Equal(t, "from-file", GetEnv("CATALOG_TEST_KEY", "fallback"))

	assert.Equal(t, "fallback", GetEnv("CATALOG_TEST_MISSING", "fallback"))
}

func TestIsDev(t *testing.T) {
	t.Cleanup(func() { Env = nil })

	Env = map[string]string{}
	assert.False(t, IsDev(), "prod is the default")

	Env["APP_ENV"] = "dev"
	assert.True(t, IsDev())

	Env["APP_ENV"] = "prod"
	assert.False(t, IsDev())
}
