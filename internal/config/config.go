package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Mesh   MeshConfig
	CORS   CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// StoreConfig holds wheel database file configuration.
type StoreConfig struct {
	// DatabaseFile is the JSON document the wheel database loads from at
	// startup and saves back to on request.
	DatabaseFile string
	// ExportDir is where export documents are written.
	ExportDir string
}

// MeshConfig holds tire tessellation configuration.
type MeshConfig struct {
	Segments    int
	TreadPoints int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables. It uses viper to
// read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATABASE_FILE", "wheel_database.json")
	v.SetDefault("EXPORT_DIR", ".")
	v.SetDefault("MESH_SEGMENTS", 32)
	v.SetDefault("MESH_TREAD_POINTS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Store: StoreConfig{
			DatabaseFile: v.GetString("DATABASE_FILE"),
			ExportDir:    v.GetString("EXPORT_DIR"),
		},
		Mesh: MeshConfig{
			Segments:    v.GetInt("MESH_SEGMENTS"),
			TreadPoints: v.GetInt("MESH_TREAD_POINTS"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Store.DatabaseFile == "" {
		return fmt.Errorf("DATABASE_FILE is required")
	}
	if c.Store.ExportDir == "" {
		return fmt.Errorf("EXPORT_DIR is required")
	}

	if c.Mesh.Segments < 3 {
		return fmt.Errorf("MESH_SEGMENTS must be at least 3")
	}
	if c.Mesh.TreadPoints < 2 {
		return fmt.Errorf("MESH_TREAD_POINTS must be at least 2")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
