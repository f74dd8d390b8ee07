package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const fileName = "themeplane.config"

type Config struct {
	DataDir     string `json:"data_dir"`
	ListenAddr  string `json:"listen_addr,omitempty"`
	ThemesDir   string `json:"themes_dir"`
	CurrentLink string `json:"current_link"`
	SetTool     string `json:"set_tool"`
	InstallTool string `json:"install_tool"`
	CacheDir    string `json:"cache_dir"`
	GitHubToken string `json:"github_token,omitempty"`
}

func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataDir:     ".",
		ThemesDir:   filepath.Join(home, ".config/omarchy/themes"),
		CurrentLink: filepath.Join(home, ".config/omarchy/current/theme"),
		SetTool:     filepath.Join(home, ".local/share/omarchy/bin/omarchy-theme-set"),
		InstallTool: filepath.Join(home, ".local/share/omarchy/bin/omarchy-theme-install"),
		CacheDir:    filepath.Join(xdg.CacheHome, "themeplane"),
	}
}

func Load(dataDir string) (Config, error) {
	cfgPath := filepath.Join(dataDir, fileName)

	f, err := os.Open(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, err
	}

	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.ThemesDir == "" {
		cfg.ThemesDir = def.ThemesDir
	}
	if cfg.CurrentLink == "" {
		cfg.CurrentLink = def.CurrentLink
	}
	if cfg.SetTool == "" {
		cfg.SetTool = def.SetTool
	}
	if cfg.InstallTool == "" {
		cfg.InstallTool = def.InstallTool
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = def.CacheDir
	}

	return cfg, nil
}

func Save(cfg Config) error {
	cfgPath := filepath.Join(cfg.DataDir, fileName)

	// Create directory if it doesn't exist
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	tmp := cfgPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, cfgPath)
}
