package flagx

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.yaml", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.yaml"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.yaml", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.yaml"},
		},
		{
			name:         "both short and long present, preserve order",
			args:         []string{"--config=first.yaml", "-c", "second.yaml", "-x", "1"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=first.yaml", "-c", "second.yaml"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-c"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "flag followed by another flag (no value)",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "value that looks like a flag but with equals form",
			args:         []string{"--config=--weird.yaml"},
			allowedFlags: []string{"--config"},
			want:         []string{"--config=--weird.yaml"},
		},
		{
			name:         "multiple allowed flags kept",
			args:         []string{"-a", "localhost:8080", "-c", "conf.yaml", "--other", "x"},
			allowedFlags: []string{"-c", "-a"},
			want:         []string{"-a", "localhost:8080", "-c", "conf.yaml"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "path with spaces remains single arg",
			args:         []string{"-c", "/home/user/conf.yaml"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "/home/user/conf.yaml"},
		},
		{
			name:         "do not treat next dash-starting token as value",
			args:         []string{"-c", "--config=alt.yaml"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "--config=alt.yaml"},
		},
		{
			name:         "repeated allowed flag is preserved in order",
			args:         []string{"-c", "one.yaml", "-c", "two.yaml"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.yaml", "-c", "two.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "short -c with value", args: []string{"-c", "/path/short.yaml"}, want: "/path/short.yaml"},
		{name: "long -config with value", args: []string{"-config", "/path/long.yaml"}, want: "/path/long.yaml"},
		{name: "equals form", args: []string{"--config=/path/eq.yaml", "-a", "x"}, want: "/path/eq.yaml"},
		{name: "unknown flags are ignored", args: []string{"-x", "1", "-y", "2"}, want: ""},
		{name: "multiple flags, last wins", args: []string{"-c", "/path/1.yaml", "-config", "/path/2.yaml"}, want: "/path/2.yaml"},
		{name: "missing value", args: []string{"-c"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFileFlag(tt.args))
		})
	}
}
