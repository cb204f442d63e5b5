package config

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected *Config
		name     string
		args     []string
	}{
		{name: "Test1 all flags", args: []string{"cmd", "-a", "http://example:8080", "-d", "cache.db", "-l", "hindi"},
			expected: &Config{ServerURL: "http://example:8080", CacheDSN: "cache.db", Language: "hindi"}},
		{name: "Test2 unknown flags filtered out", args: []string{"cmd", "-a", "http://example:8080", "-x", "ignored"},
			expected: &Config{ServerURL: "http://example:8080"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
