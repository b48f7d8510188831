package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axxaxinx/user-management-final-123/pkg/client"
)

func TestParseItems(t *testing.T) {
	items, err := parseItems("Laptop:1, Mouse ,Dock:2")
	require.NoError(t, err)
	assert.Equal(t, []client.RequestItemInput{
		{Name: "Laptop", Quantity: 1},
		{Name: "Mouse"},
		{Name: "Dock", Quantity: 2},
	}, items)

	for _, raw := range []string{"", " , ", "Laptop:x", "Laptop:0", ":3"} {
		_, err := parseItems(raw)
		assert.Error(t, err, raw)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	t.Setenv("HRCTL_CONFIG", filepath.Join(t.TempDir(), "hrctl", "config.json"))

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, defaultServer, cfg.Server)
	assert.Empty(t, cfg.RefreshToken)

	require.NoError(t, saveConfig(cliConfig{Server: "http://hr.local", Email: "a@b.c", RefreshToken: "abc"}))
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://hr.local", cfg.Server)
	assert.Equal(t, "abc", cfg.RefreshToken)
}
