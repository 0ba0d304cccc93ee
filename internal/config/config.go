package config

import (
	"strings"

	"github.com/spf13/viper"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port      string
	AppEnv    string
	DataDir   string
	UploadDir string
}

// Load reads configuration from BOOKING_-prefixed environment variables,
// falling back to defaults suitable for local development.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("UPLOAD_DIR", "storage/uploads")

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:      port,
		AppEnv:    v.GetString("APP_ENV"),
		DataDir:   v.GetString("DATA_DIR"),
		UploadDir: v.GetString("UPLOAD_DIR"),
	}, nil
}
