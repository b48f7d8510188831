package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/axxaxinx/user-management-final-123/pkg/client"
)

const defaultServer = "http://127.0.0.1:4000"

type cliConfig struct {
	Server       string `json:"server"`
	Email        string `json:"email,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func configPath() (string, error) {
	if p := os.Getenv("HRCTL_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hrctl", "config.json"), nil
}

func loadConfig() (cliConfig, error) {
	path, err := configPath()
	if err != nil {
		return cliConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cliConfig{Server: defaultServer}, nil
		}
		return cliConfig{}, err
	}
	var cfg cliConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cliConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Server == "" {
		cfg.Server = defaultServer
	}
	return cfg, nil
}

func saveConfig(cfg cliConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// withSession restores the saved refresh token, runs fn with a signed-in
// client and persists the rotated token afterwards.
func withSession(ctx context.Context, fn func(*client.Client) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RefreshToken == "" {
		return errors.New("not logged in, run `hrctl login` first")
	}

	c, err := client.New(cfg.Server)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.SetRefreshCookie(cfg.RefreshToken); err != nil {
		return err
	}
	if _, err := c.Refresh(ctx); err != nil {
		if client.StatusOf(err) == http.StatusUnauthorized {
			cfg.RefreshToken = ""
			_ = saveConfig(cfg)
			return errors.New("session expired, run `hrctl login` again")
		}
		return err
	}

	runErr := fn(c)
	if token := c.RefreshCookie(); token != "" {
		cfg.RefreshToken = token
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}
	return runErr
}
