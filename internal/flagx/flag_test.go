package flagx

import (
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
			args:         []string{"-s", "secret", "-a", ":8080"},
			allowedFlags: []string{"-s"},
			want:         []string{"-s", "secret"},
		},
		{
			name:         "flag with equals",
			args:         []string{"-alg=HS512", "-a", ":8080"},
			allowedFlags: []string{"-alg"},
			want:         []string{"-alg=HS512"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-c", "-memory"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "repeated flag preserved in order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestJSONConfigPath(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		assert.Equal(t, "/etc/gophauth.json", JSONConfigPath([]string{"-c", "/etc/gophauth.json"}))
	})
	t.Run("long", func(t *testing.T) {
		assert.Equal(t, "/etc/long.json", JSONConfigPath([]string{"-a", ":1", "-config", "/etc/long.json"}))
	})
	t.Run("absent", func(t *testing.T) {
		assert.Empty(t, JSONConfigPath([]string{"-s", "secret"}))
	})
	t.Run("last wins", func(t *testing.T) {
		assert.Equal(t, "/2.json", JSONConfigPath([]string{"-c", "/1.json", "-config", "/2.json"}))
	})
}
