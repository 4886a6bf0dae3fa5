package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ClaudeRoot  string `toml:"claude_root"`
	GeminiRoot  string `toml:"gemini_root"`
	ChatGPTPath string `toml:"chatgpt_path"`
	DBPath      string `toml:"db_path"`
	FoldLines   int    `toml:"fold_lines"`
	CacheSize   int    `toml:"cache_size"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ClaudeRoot: filepath.Join(home, ".claude", "projects"),
		GeminiRoot: filepath.Join(home, ".gemini", "tmp"),
		DBPath:     filepath.Join(home, ".config", "aicb", "aicb.db"),
	}

	cfgPath := filepath.Join(home, ".config", "aicb", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// expand ~ in paths
	cfg.ClaudeRoot = expandHome(cfg.ClaudeRoot, home)
	cfg.GeminiRoot = expandHome(cfg.GeminiRoot, home)
	cfg.ChatGPTPath = expandHome(cfg.ChatGPTPath, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
