package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "lectern.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsPreserved(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
professors:
  - id: brandon
    name: Brandon
    style: You are witty.
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 60, cfg.TimeoutSeconds)
	assert.Equal(t, 5, cfg.MaxAutoExchanges)
	require.Len(t, cfg.Professors, 1)
	assert.Equal(t, "brandon", cfg.Professors[0].ID)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
listen_addr: ":9090"
provider: anthropic
model: claude-sonnet-4-20250514
timeout_seconds: 30
debate_topic: the value of homework
max_auto_exchanges: 3
professors:
  - id: stephanie
    name: Stephanie
    style: You are calm.
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, "the value of homework", cfg.DebateTopic)
	assert.Equal(t, 3, cfg.MaxAutoExchanges)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_UnsupportedProvider(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
provider: bedrock
professors:
  - id: brandon
    name: Brandon
    style: You are witty.
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestLoad_NoProfessors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "provider: openai\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no professors")
}

func TestLoad_InvalidMaxAutoExchanges(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
max_auto_exchanges: 0
professors:
  - id: brandon
    name: Brandon
    style: You are witty.
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_auto_exchanges")
}

func TestPersonas_ResolvesDocumentsRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("induction basics"), 0o644))
	path := writeConfig(t, dir, `
professors:
  - id: brandon
    name: Brandon
    style: You are witty.
    document: notes.md
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	registry, err := cfg.Personas()
	require.NoError(t, err)
	def, ok := registry.Get("brandon")
	require.True(t, ok)
	assert.True(t, def.HasDocument())
	assert.Contains(t, def.InitialInstruction(), "induction basics")
}

func TestPersonas_MissingDocumentFailsBuild(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
professors:
  - id: brandon
    name: Brandon
    style: You are witty.
    document: does-not-exist.md
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.Personas()
	assert.Error(t, err)
}

func TestCredential_PrimaryEnv(t *testing.T) {
	t.Setenv(CredentialEnv, "key-primary")
	t.Setenv("OPENAI_API_KEY", "key-openai")

	cfg := Default()
	key, err := cfg.Credential()
	require.NoError(t, err)
	assert.Equal(t, "key-primary", key)
}

func TestCredential_ProviderFallback(t *testing.T) {
	t.Setenv(CredentialEnv, "")
	t.Setenv("OPENAI_API_KEY", "key-openai")
	t.Setenv("ANTHROPIC_API_KEY", "key-anthropic")

	cfg := Default()
	key, err := cfg.Credential()
	require.NoError(t, err)
	assert.Equal(t, "key-openai", key)

	cfg.Provider = ProviderAnthropic
	key, err = cfg.Credential()
	require.NoError(t, err)
	assert.Equal(t, "key-anthropic", key)
}

func TestCredential_Missing(t *testing.T) {
	t.Setenv(CredentialEnv, "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := Default()
	_, err := cfg.Credential()
	assert.ErrorIs(t, err, ErrMissingCredential)
}
