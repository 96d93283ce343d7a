package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withPlatform swaps the platform lookups for the duration of a test.
func withPlatform(t *testing.T, home, cwd string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return filepath.Join(home, "cfg"), nil }
	platformDir.getwd = func() (string, error) { return cwd, nil }
}

func TestDefaultConfigDir(t *testing.T) {
	withPlatform(t, "/home/u", "/work")

	if runtime.GOOS != "linux" {
		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/home/u", "cfg", "facets"), got)
		return
	}

	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-config/facets", got)
	})

	t.Run("falls back to ~/.config when XDG unset", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/u/.config/facets", got)
	})

	t.Run("home lookup failure", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
		_, err := DefaultConfigDir()
		assert.Error(t, err)
	})
}

func TestResolveConfigDir(t *testing.T) {
	withPlatform(t, "/home/u", "/work")
	t.Setenv("XDG_CONFIG_HOME", "")

	tests := []struct {
		name    string
		flag    string
		envVal  string
		wantSub string // substring the result must contain
	}{
		{name: "flag wins over env", flag: "/explicit/config", envVal: "/env/config", wantSub: "/explicit/config"},
		{name: "env wins when flag empty", envVal: "/env/config", wantSub: "/env/config"},
		{name: "platform default when both empty", wantSub: "facets"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Contains(t, got, tt.wantSub)
		})
	}

	t.Run("relative flag becomes absolute", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "")
		got, err := ResolveConfigDir("relative/path")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	})
}

func TestResolveDataDir(t *testing.T) {
	withPlatform(t, "/home/u", "/work")

	tests := []struct {
		name        string
		flag        string
		configValue string
		envVal      string
		want        string
	}{
		{name: "flag wins over all", flag: "/flag/data", configValue: "/config/data", envVal: "/env/data", want: "/flag/data"},
		{name: "config wins over env", configValue: "/config/data", envVal: "/env/data", want: "/config/data"},
		{name: "env wins when flag and config empty", envVal: "/env/data", want: "/env/data"},
		{name: "working directory when all empty", want: "/work"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}

	t.Run("relative config value becomes absolute", func(t *testing.T) {
		t.Setenv(EnvDataDir, "")
		got, err := ResolveDataDir("", "relative/config")
		require.NoError(t, err)
		cwd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cwd, "relative", "config"), got)
	})
}

func TestResolveInput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix paths")
	}
	tests := []struct {
		dataDir, path, want string
	}{
		{"/data", "people.csv", "/data/people.csv"},
		{"/data", "sub/items.tsv", "/data/sub/items.tsv"},
		{"/data", "/abs/people.csv", "/abs/people.csv"},
		{"/data", "-", "-"},
		{"", "people.csv", "people.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveInput(tt.dataDir, tt.path))
		})
	}
}
