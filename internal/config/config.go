// config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"roadside-assist-service/internal/simulator"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	Port         string
	StoreBackend string
	MongoURI     string
	MongoDBName  string

	// StrictMode desactiva los fallbacks de demo y propaga errores normales.
	StrictMode bool

	Simulator      simulator.Config
	NearbyRadiusKm float64

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	NearbyCacheTTL time.Duration

	RabbitURL   string
	AdminAPIKey string

	LogLevel  string
	LogFormat string
	GinMode   string
}

// Load lee .env (si existe) y después las variables de entorno.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "5001")
	v.SetDefault("STORE_BACKEND", BackendMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "helpmycar")
	v.SetDefault("STRICT_MODE", false)
	v.SetDefault("SIM_STEP_FRACTION", simulator.DefaultStepFraction)
	v.SetDefault("SIM_ARRIVAL_THRESHOLD", simulator.DefaultArrivalThreshold)
	v.SetDefault("NEARBY_RADIUS_KM", 10.0)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("NEARBY_CACHE_TTL", "30s")
	v.SetDefault("RABBIT_URL", "")
	v.SetDefault("ADMIN_API_KEY", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("GIN_MODE", "release")
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:         v.GetString("PORT"),
		StoreBackend: strings.ToLower(v.GetString("STORE_BACKEND")),
		MongoURI:     v.GetString("MONGO_URI"),
		MongoDBName:  v.GetString("MONGO_DB_NAME"),
		StrictMode:   v.GetBool("STRICT_MODE"),
		Simulator: simulator.Config{
			StepFraction:     v.GetFloat64("SIM_STEP_FRACTION"),
			ArrivalThreshold: v.GetFloat64("SIM_ARRIVAL_THRESHOLD"),
		},
		NearbyRadiusKm: v.GetFloat64("NEARBY_RADIUS_KM"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		NearbyCacheTTL: v.GetDuration("NEARBY_CACHE_TTL"),
		RabbitURL:      v.GetString("RABBIT_URL"),
		AdminAPIKey:    v.GetString("ADMIN_API_KEY"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		GinMode:        v.GetString("GIN_MODE"),
	}

	if cfg.StoreBackend != BackendMongo && cfg.StoreBackend != BackendMemory {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q", cfg.StoreBackend)
	}
	if err := cfg.Simulator.Validate(); err != nil {
		return nil, err
	}
	if cfg.NearbyRadiusKm <= 0 {
		return nil, fmt.Errorf("invalid NEARBY_RADIUS_KM %v", cfg.NearbyRadiusKm)
	}
	return cfg, nil
}
