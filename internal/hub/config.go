package hub

import (
	"os"
	"path/filepath"
)

type Config struct {
	API struct {
		BaseURL string
	}
	Logging struct {
		Level string
	}
	DataDir string
}

func DefaultConfig() Config {
	cfg := Config{}
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.Logging.Level = "info"
	cfg.DataDir = defaultDataDir()
	return cfg
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agenthub"
	}
	return filepath.Join(home, ".agenthub")
}
