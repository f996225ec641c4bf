package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
	"github.com/rl1809/cocktail-pantry/internal/core/engine"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.HTTPPort)
	assert.Equal(t, "50051", cfg.Server.GRPCPort)
	assert.Equal(t, engine.DefaultTolerance, cfg.Engine.Tolerance)
	assert.Equal(t, engine.MergeReplace, cfg.Engine.MergePolicy)
	assert.Equal(t, 2, cfg.Engine.DefaultMaxMissing)
	assert.False(t, cfg.Engine.RejectUnknownUnits)
	assert.Equal(t, 5*time.Second, cfg.Lock.TTL)
	assert.Equal(t, 2*time.Second, cfg.Lock.Wait)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "@hourly", cfg.Sweeper.CronSchedule)
}

func TestLoad_FromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_HTTP_PORT=9090\nENGINE_MERGE_POLICY=reject\nENGINE_REJECT_UNKNOWN_UNITS=true\nLOCK_WAIT=500ms\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	for _, key := range []string{"APP_HTTP_PORT", "ENGINE_MERGE_POLICY", "ENGINE_REJECT_UNKNOWN_UNITS", "LOCK_WAIT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.HTTPPort)
	assert.Equal(t, engine.MergeReject, cfg.Engine.MergePolicy)
	assert.True(t, cfg.Engine.RejectUnknownUnits)
	assert.Equal(t, 500*time.Millisecond, cfg.Lock.Wait)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"ENGINE_TOLERANCE":            "abc",
		"ENGINE_MERGE_POLICY":         "average",
		"ENGINE_DEFAULT_MAX_MISSING":  "-1",
		"LOCK_TTL":                    "soon",
		"ENGINE_REJECT_UNKNOWN_UNITS": "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	var cfg *Config
	assert.Error(t, cfg.Validate())
}

func TestLoadUnitsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.yaml")
	content := `units:
  - code: barspoon
    class: liquid
    factor: 5
    aliases: [bsp, bar spoon]
  - code: peel
    class: special
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	defs, err := LoadUnitsFile(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, domain.UnitDefinition{Code: "barspoon", Class: domain.UnitClassLiquid, Factor: 5, Aliases: []string{"bsp", "bar spoon"}}, defs[0])
	assert.Equal(t, domain.UnitClassSpecial, defs[1].Class)

	catalog, err := engine.DefaultCatalog().Overlay(defs)
	require.NoError(t, err)
	factor, ok := catalog.CanonicalFactor("barspoon")
	assert.True(t, ok)
	assert.Equal(t, 5.0, factor)
}

func TestLoadUnitsFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.yaml")
	require.NoError(t, os.WriteFile(path, []byte("units:\n  - code: drizzle\n    class: gas\n"), 0o600))

	_, err := LoadUnitsFile(path)
	assert.Error(t, err)

	defs, err := LoadUnitsFile("")
	assert.NoError(t, err)
	assert.Nil(t, defs)

	_, err = LoadUnitsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
