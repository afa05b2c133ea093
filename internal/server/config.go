package server

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the configuration for the conversion service
type Config struct {
	Port    int    `env:"PORT" env-default:"8080" env-description:"HTTP server port"`
	BaseURL string `env:"BASE_URL" env-default:"http://localhost:8080" env-description:"Public base URL used when rewriting asset references"`

	WorkDir   string `env:"WORK_DIR" env-default:"./work" env-description:"Root of per-conversion working directories"`
	OutputDir string `env:"OUTPUT_DIR" env-default:"./rendered" env-description:"Directory rendered documents are written to"`

	ConverterRuntime string `env:"CONVERTER_RUNTIME" env-default:"docker" env-description:"Container runtime binary for the converter"`
	ConverterImage   string `env:"CONVERTER_IMAGE" env-default:"" env-description:"Converter image reference (empty uses the pinned default)"`

	AssetTTL            time.Duration `env:"ASSET_TTL" env-default:"24h" env-description:"Age after which asset catalog entries are reclaimed"`
	AssetSweepInterval  time.Duration `env:"ASSET_SWEEP_INTERVAL" env-default:"1h" env-description:"How often the asset sweep runs"`
	RenderTTL           time.Duration `env:"RENDER_TTL" env-default:"1h" env-description:"Age after which rendered documents are reclaimed"`
	RenderSweepInterval time.Duration `env:"RENDER_SWEEP_INTERVAL" env-default:"10m" env-description:"How often the render sweep runs"`

	RenderPoolSize int           `env:"RENDER_POOL_SIZE" env-default:"0" env-description:"Browser pool size (0 derives from CPU count)"`
	RenderTimeout  time.Duration `env:"RENDER_TIMEOUT" env-default:"30s" env-description:"Hard timeout for page load during rendering"`
	StabilizeDelay time.Duration `env:"STABILIZE_DELAY" env-default:"1500ms" env-description:"Fixed settle delay after page load"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
