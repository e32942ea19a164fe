package config

import (
	"encoding/json"
	"os"

	"github.com/vmatveev/registerd/internal/flagx"
)

// JsonConfig is the DTO used only for reading JSON configuration files.
// After unmarshalling, non-empty fields are copied into the runtime Config.
type JsonConfig struct {
	Addr           string `json:"address"`
	DatabaseDSN    string `json:"database_dsn"`
	SessionSecret  string `json:"session_secret"`
	AllowedOrigins string `json:"allowed_origins"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config flags; if
// neither is set, no JSON file is loaded. An unreadable or invalid file
// panics, the same as a malformed flag would.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SessionSecret != "" {
		config.SessionSecret = c.SessionSecret
	}
	if c.AllowedOrigins != "" {
		config.AllowedOrigins = c.AllowedOrigins
	}
}
