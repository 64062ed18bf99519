package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":               ":8080",
		"9090":           ":9090",
		":9090":          ":9090",
		"127.0.0.1:9090": "127.0.0.1:9090",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeAddr(in), in)
	}
}

func TestShutdownBeforeRun(t *testing.T) {
	var s Server
	assert.NoError(t, s.Shutdown(context.Background()))
}
