package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRegion(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		ambient string
		want    string
	}{
		{name: "Flag", flag: "eu-west-1", ambient: "us-west-2", want: "eu-west-1"},
		{name: "Ambient", ambient: "us-west-2", want: "us-west-2"},
		{name: "Default", want: DefaultRegion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRegion(tt.flag, tt.ambient))
		})
	}
}

// isolate points the aws config chain at an empty environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, k := range []string{"AWS_REGION", "AWS_DEFAULT_REGION", "AWS_PROFILE", "AWS_DEFAULT_PROFILE"} {
		t.Setenv(k, "")
	}
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	return dir
}

func TestConfig_AWS_region(t *testing.T) {
	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{name: "Flag", flag: "eu-west-1", env: "us-west-2", want: "eu-west-1"},
		{name: "Environment", env: "us-west-2", want: "us-west-2"},
		{name: "Default", want: DefaultRegion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("AWS_REGION", tt.env)

			cfg, err := Config{Region: tt.flag}.AWS(context.Background(), strings.NewReader(""), &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Region)
		})
	}
}

func TestConfig_AWS_profileRegion(t *testing.T) {
	dir := isolate(t)
	err := os.WriteFile(filepath.Join(dir, "config"), []byte("[profile dev]\nregion = ap-southeast-2\n"), 0o600)
	require.NoError(t, err)

	cfg, err := Config{Profile: "dev"}.AWS(context.Background(), strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", cfg.Region)

	cfg, err = Config{Profile: "dev", Region: "eu-central-1"}.AWS(context.Background(), strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", cfg.Region)
}

func TestConfig_TokenProvider(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		assert.Nil(t, Config{}.TokenProvider(strings.NewReader(""), &bytes.Buffer{}))
	})

	t.Run("Token", func(t *testing.T) {
		var prompt bytes.Buffer
		tp := Config{MFAToken: "123456"}.TokenProvider(strings.NewReader(""), &prompt)
		require.NotNil(t, tp)
		token, err := tp()
		require.NoError(t, err)
		assert.Equal(t, "123456", token)
		assert.Empty(t, prompt.String())
	})

	t.Run("Prompt", func(t *testing.T) {
		var prompt bytes.Buffer
		tp := Config{MFA: true}.TokenProvider(strings.NewReader(" 654321 \n"), &prompt)
		require.NotNil(t, tp)
		token, err := tp()
		require.NoError(t, err)
		assert.Equal(t, "654321", token)
		assert.Equal(t, "MFA token: ", prompt.String())
	})

	t.Run("PromptNoNewline", func(t *testing.T) {
		tp := Config{MFA: true}.TokenProvider(strings.NewReader("111222"), &bytes.Buffer{})
		token, err := tp()
		require.NoError(t, err)
		assert.Equal(t, "111222", token)
	})

	t.Run("PromptEmpty", func(t *testing.T) {
		tp := Config{MFA: true}.TokenProvider(strings.NewReader(""), &bytes.Buffer{})
		_, err := tp()
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{MFA: true}.Validate())
	assert.NoError(t, Config{MFAToken: "123456"}.Validate())
	assert.Error(t, Config{MFA: true, MFAToken: "123456"}.Validate())
}

func TestConfig_LogLevel(t *testing.T) {
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	assert.Equal(t, "warn", Config{}.LogLevel(getenv))
	assert.Equal(t, "debug", Config{Debug: true}.LogLevel(getenv))

	env[LogLevelEnv] = "info"
	assert.Equal(t, "info", Config{}.LogLevel(getenv))
	assert.Equal(t, "debug", Config{Debug: true}.LogLevel(getenv))
}

func TestConfig_BindFlags(t *testing.T) {
	var c Config
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.BindFlags(fs)

	err := fs.Parse([]string{"-r", "eu-west-1", "--profile", "dev", "--mfa-token", "123456", "-o", "out.env", "--debug"})
	require.NoError(t, err)

	assert.Equal(t, Config{
		Region:   "eu-west-1",
		Profile:  "dev",
		MFAToken: "123456",
		Out:      "out.env",
		Debug:    true,
	}, c)
}
