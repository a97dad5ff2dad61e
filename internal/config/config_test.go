package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pydo/internal/config"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func Test_DefaultDatabasePath_Prefers_XDG_Data_Home(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "xdg data home set",
			env:  map[string]string{"XDG_DATA_HOME": "/xdg/data", "HOME": "/home/u"},
			want: filepath.Join("/xdg/data", "pydo", "pydo.db"),
		},
		{
			name: "home fallback",
			env:  map[string]string{"HOME": "/home/u"},
			want: filepath.Join("/home/u", ".local", "share", "pydo", "pydo.db"),
		},
		{
			name: "no home",
			env:  map[string]string{},
			want: filepath.Join("pydo", "pydo.db"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, config.DefaultDatabasePath(tt.env))
		})
	}
}

func Test_DefaultConfigPath_Precedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "env override wins",
			env: map[string]string{
				config.EnvConfigPath: "/custom/pydo.yaml",
				"XDG_CONFIG_HOME":    "/xdg/config",
				"HOME":               "/home/u",
			},
			want: "/custom/pydo.yaml",
		},
		{
			name: "xdg config home",
			env:  map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "HOME": "/home/u"},
			want: filepath.Join("/xdg/config", "pydo", "config.yaml"),
		},
		{
			name: "home fallback",
			env:  map[string]string{"HOME": "/home/u"},
			want: filepath.Join("/home/u", ".config", "pydo", "config.yaml"),
		},
		{
			name: "no home means no config file",
			env:  map[string]string{},
			want: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, config.DefaultConfigPath(tt.env))
		})
	}
}

func Test_Load_Defaults_When_No_Config_File(t *testing.T) {
	t.Parallel()

	env := map[string]string{"HOME": t.TempDir()}

	cfg, err := config.Load(config.LoadInput{Env: env})
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDatabasePath(env), cfg.Database)
	assert.Equal(t, config.DefaultDateFormat, cfg.DateFormat)
	assert.Empty(t, cfg.Source, "no file was read")
}

func Test_Load_Reads_Config_From_Default_Location(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	dir := filepath.Join(home, ".config", "pydo")
	require.NoError(t, os.MkdirAll(dir, 0o750))

	path := writeConfig(t, dir, "database: /custom/pydo.db\ndate_format: \"02.01.2006\"\n")

	cfg, err := config.Load(config.LoadInput{Env: map[string]string{"HOME": home}})
	require.NoError(t, err)

	assert.Equal(t, "/custom/pydo.db", cfg.Database)
	assert.Equal(t, "02.01.2006", cfg.DateFormat)
	assert.Equal(t, path, cfg.Source)
}

func Test_Load_Partial_Config_Keeps_Defaults(t *testing.T) {
	t.Parallel()

	env := map[string]string{"HOME": "/home/u"}
	path := writeConfig(t, t.TempDir(), "database: /custom/pydo.db\n")

	cfg, err := config.Load(config.LoadInput{ConfigPath: path, Env: env})
	require.NoError(t, err)

	assert.Equal(t, "/custom/pydo.db", cfg.Database)
	assert.Equal(t, config.DefaultDateFormat, cfg.DateFormat)
}

func Test_Load_Database_Flag_Overrides_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "database: /from-file/pydo.db\n")

	cfg, err := config.Load(config.LoadInput{
		ConfigPath:       path,
		DatabaseOverride: "/from-flag/pydo.db",
		Env:              map[string]string{"HOME": "/home/u"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/from-flag/pydo.db", cfg.Database)
}

func Test_Load_Explicit_Missing_File_Is_An_Error(t *testing.T) {
	t.Parallel()

	_, err := config.Load(config.LoadInput{
		ConfigPath: filepath.Join(t.TempDir(), "does-not-exist.yaml"),
		Env:        map[string]string{"HOME": "/home/u"},
	})
	require.ErrorIs(t, err, config.ErrConfigRead)
}

func Test_Load_Missing_Default_File_Is_Fine(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(config.LoadInput{Env: map[string]string{"HOME": t.TempDir()}})
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Database)
}

func Test_Load_Rejects_Invalid_YAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "database: [unterminated\n")

	_, err := config.Load(config.LoadInput{ConfigPath: path, Env: map[string]string{"HOME": "/home/u"}})
	require.ErrorIs(t, err, config.ErrConfigInvalid)
}

func Test_Load_Rejects_Blank_Database(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "database: \"  \"\n")

	_, err := config.Load(config.LoadInput{ConfigPath: path, Env: map[string]string{"HOME": "/home/u"}})
	require.ErrorIs(t, err, config.ErrDatabaseEmpty)
}

func Test_WriteDefault_Creates_Readable_Config(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	env := map[string]string{"HOME": home}

	path, err := config.WriteDefault(env)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "pydo", "config.yaml"), path)

	cfg, err := config.Load(config.LoadInput{ConfigPath: path, Env: env})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDatabasePath(env), cfg.Database)
	assert.Equal(t, config.DefaultDateFormat, cfg.DateFormat)
}

func Test_WriteDefault_Without_Home_Fails(t *testing.T) {
	t.Parallel()

	_, err := config.WriteDefault(map[string]string{})
	require.Error(t, err)
}
