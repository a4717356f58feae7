package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
meta:
  id: test
  name: Test Config
  enabled: true

server:
  port: 9090
  host: "0.0.0.0"

folders:
  - /tmp/relatorios

scanning:
  mode: interval
  interval_minutes: 30
  tick_seconds: 10

matching:
  tickets_keyword: chamado
  contract:
    name_tokens: ["caixa", "economica"]
    agency_codes: ["cef"]
    file_tokens: ["simrede", "0373", "2025"]

content:
  generator: template
  sender: "${TEST_SENDER}"

storage:
  registry_path: ./data/registry.json
  send_log:
    type: file
    path: ./data

logging:
  level: debug
  format: json
`

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadConfigs(t *testing.T) {
	t.Setenv("TEST_SENDER", "relatorios@example.com")

	dir := t.TempDir()
	writeConfig(t, dir, "test.config.yaml", testConfig)
	writeConfig(t, dir, "notes.txt", "ignored")

	require.NoError(t, LoadConfigs(dir))

	cfg, err := GetConfig("test")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"/tmp/relatorios"}, cfg.Folders)
	assert.Equal(t, "interval", cfg.Scanning.Mode)
	assert.Equal(t, 30, cfg.Scanning.IntervalMinutes)
	assert.Equal(t, []string{"simrede", "0373", "2025"}, cfg.Matching.Contract.FileTokens)
	assert.Equal(t, "relatorios@example.com", cfg.Content.Sender, "environment variables are expanded")
	assert.Equal(t, "json", cfg.Logging.Format)

	enabled := GetEnabledConfigs()
	require.Len(t, enabled, 1)
	assert.Equal(t, "test", enabled[0].Meta.ID)
}

func TestLoadConfigsMissingID(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "bad.config.yaml", "meta:\n  name: No ID\n")
	assert.Error(t, LoadConfigs(dir))
}

func TestLoadConfigsInvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "bad.config.yaml", `
meta:
  id: bad
  name: Bad
scanning:
  mode: sometimes
storage:
  registry_path: ./data/registry.json
  send_log:
    path: ./data
`)
	err := LoadConfigs(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanning")
}

func TestApplyTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "templates"), 0755))
	writeConfig(t, filepath.Join(dir, "templates"), "base.yaml", `
logging:
  level: warn
  format: dev
content:
  generator: template
`)
	writeConfig(t, dir, "main.config.yaml", `
meta:
  id: main
  name: Main
  enabled: true
  template: base
logging:
  level: debug
storage:
  registry_path: ./data/registry.json
  send_log:
    path: ./data
`)

	require.NoError(t, LoadConfigs(dir))
	cfg, err := GetConfig("main")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level, "explicit values win over the template")
	assert.Equal(t, "dev", cfg.Logging.Format, "template fills the gaps")
}

func TestGetConfigUnknownID(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "test.config.yaml", testConfig)
	require.NoError(t, LoadConfigs(dir))

	_, err := GetConfig("missing")
	assert.Error(t, err)
}
