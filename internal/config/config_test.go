package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points XDG_CONFIG_HOME and the working directory at empty temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	origWd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Chdir(tmpDir))
	return tmpDir
}

func TestGlobalPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/adspot/adspot.yml", GlobalPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	got := GlobalPath()
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	assert.Equal(t, "adspot.yml", filepath.Base(got))
}

func TestProjectPath(t *testing.T) {
	assert.Equal(t, "adspot.yml", ProjectPath())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultScriptBudget, cfg.ScriptBudget)
	assert.Equal(t, DefaultPlanID, cfg.DefaultPlan)
	assert.Equal(t, DefaultTaxRateBPS, cfg.TaxRateBPS)
	assert.Equal(t, DefaultSwitchDelay, cfg.SwitchDelay)
	assert.Equal(t, DefaultSession, cfg.Session)
	assert.False(t, Exists())
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	isolate(t)

	global := Default()
	global.ScriptBudget = 300
	global.DefaultPlan = "market-impact"
	require.NoError(t, WriteGlobal(global))

	project := Default()
	project.ScriptBudget = 200
	require.NoError(t, WriteProject(project))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.ScriptBudget)
	// WriteProject wrote the full struct, so default_plan comes from the project file.
	assert.Equal(t, DefaultPlanID, cfg.DefaultPlan)
	assert.True(t, Exists())
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	require.NoError(t, WriteProject(Default()))

	t.Setenv("ADSPOT_SCRIPT_BUDGET", "120")
	t.Setenv("ADSPOT_SWITCH_DELAY", "10ms")
	t.Setenv("ADSPOT_DEFAULT_PLAN", "maximum-exposure")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.ScriptBudget)
	assert.Equal(t, 10*time.Millisecond, cfg.SwitchDelay)
	assert.Equal(t, "maximum-exposure", cfg.DefaultPlan)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("ADSPOT_SCRIPT_BUDGET", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script_budget")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative tax", func(c *Config) { c.TaxRateBPS = -1 }, "tax_rate_bps"},
		{"tax over 100%", func(c *Config) { c.TaxRateBPS = 10001 }, "tax_rate_bps"},
		{"negative delay", func(c *Config) { c.SwitchDelay = -time.Second }, "switch_delay"},
		{"blank plan", func(c *Config) { c.DefaultPlan = "  " }, "default_plan"},
		{"dotted session", func(c *Config) { c.Session = "a.b" }, "session"},
		{"empty session", func(c *Config) { c.Session = "" }, "session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
