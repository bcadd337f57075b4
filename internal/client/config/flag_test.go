package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://127.0.0.1:9090", "-t", "10s", "-d", "/tmp/s.db", "-l", "debug"},
			expected: &Config{
				ServerURL:      "http://127.0.0.1:9090",
				RequestTimeout: 10 * time.Second,
				SecretsDSN:     "/tmp/s.db",
				LogLevel:       "debug",
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-c", "cfg.yaml", "-x", "1", "-a", "http://h"},
			expected: &Config{ServerURL: "http://h"},
		},
		{name: "incorrect timeout", args: []string{"-t", "abc"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := parseFlags(cfg, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
