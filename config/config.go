package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the simulator
type Config struct {
	Simulation SimulationConfig
	Flow       FlowConfig
	Strategy   StrategyConfig
	Export     ExportConfig
	Logger     LoggerConfig
}

// SimulationConfig controls the driver loop
type SimulationConfig struct {
	Horizon      time.Duration // simulated time covered by the run
	RequoteEvery int           // strategy re-quotes after this many events
	DepthLevels  int           // levels logged in the final depth snapshot
}

// FlowConfig parameterises the Poisson order flow
type FlowConfig struct {
	Seed           int64
	StartPrice     float64
	Tick           float64
	LimitRate      float64 // limit arrivals per simulated second
	MarketRate     float64 // market arrivals per simulated second
	BuyProbability float64
	MeanQuantity   float64
	MaxOffsetTicks int
}

// StrategyConfig holds market maker parameters
type StrategyConfig struct {
	Enabled      bool
	HalfSpread   float64
	Quantity     float64
	MaxInventory float64
}

// ExportConfig controls where executed trades are written
type ExportConfig struct {
	TradeLogPath string // empty disables the JSON lines audit file
	RecentTrades int
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level string // DEBUG, INFO, WARN, ERROR
}

var instance *Config

// Load loads configuration from .env file (if exists) and environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Simulation: SimulationConfig{
			Horizon:      getEnvDuration("SIM_HORIZON", 10*time.Minute),
			RequoteEvery: getEnvInt("SIM_REQUOTE_EVERY", 10),
			DepthLevels:  getEnvInt("SIM_DEPTH_LEVELS", 5),
		},
		Flow: FlowConfig{
			Seed:           getEnvInt64("FLOW_SEED", 42),
			StartPrice:     getEnvFloat("FLOW_START_PRICE", 100.0),
			Tick:           getEnvFloat("FLOW_TICK", 0.01),
			LimitRate:      getEnvFloat("FLOW_LIMIT_RATE", 5.0),
			MarketRate:     getEnvFloat("FLOW_MARKET_RATE", 1.0),
			BuyProbability: getEnvFloat("FLOW_BUY_PROBABILITY", 0.5),
			MeanQuantity:   getEnvFloat("FLOW_MEAN_QUANTITY", 10),
			MaxOffsetTicks: getEnvInt("FLOW_MAX_OFFSET_TICKS", 20),
		},
		Strategy: StrategyConfig{
			Enabled:      getEnvBool("STRATEGY_ENABLED", true),
			HalfSpread:   getEnvFloat("STRATEGY_HALF_SPREAD", 0.05),
			Quantity:     getEnvFloat("STRATEGY_QUANTITY", 5),
			MaxInventory: getEnvFloat("STRATEGY_MAX_INVENTORY", 50),
		},
		Export: ExportConfig{
			TradeLogPath: getEnv("TRADE_LOG_PATH", "trades.log"),
			RecentTrades: getEnvInt("RECENT_TRADES", 1000),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	instance = cfg
	return cfg, nil
}

// Get returns the singleton config instance
func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate simulation config
	if c.Simulation.Horizon <= 0 {
		return fmt.Errorf("SIM_HORIZON must be > 0")
	}
	if c.Simulation.RequoteEvery < 1 {
		return fmt.Errorf("SIM_REQUOTE_EVERY must be > 0")
	}
	if c.Simulation.DepthLevels < 1 {
		return fmt.Errorf("SIM_DEPTH_LEVELS must be > 0")
	}

	// Validate flow config
	if c.Flow.StartPrice <= 0 {
		return fmt.Errorf("FLOW_START_PRICE must be > 0")
	}
	if c.Flow.Tick <= 0 {
		return fmt.Errorf("FLOW_TICK must be > 0")
	}
	if c.Flow.LimitRate < 0 || c.Flow.MarketRate < 0 {
		return fmt.Errorf("FLOW_LIMIT_RATE and FLOW_MARKET_RATE must be >= 0")
	}
	if c.Flow.LimitRate+c.Flow.MarketRate <= 0 {
		return fmt.Errorf("at least one of FLOW_LIMIT_RATE, FLOW_MARKET_RATE must be > 0")
	}
	if c.Flow.BuyProbability < 0 || c.Flow.BuyProbability > 1 {
		return fmt.Errorf("FLOW_BUY_PROBABILITY must be within [0, 1]")
	}
	if c.Flow.MeanQuantity < 1 {
		return fmt.Errorf("FLOW_MEAN_QUANTITY must be >= 1")
	}
	if c.Flow.MaxOffsetTicks < 1 {
		return fmt.Errorf("FLOW_MAX_OFFSET_TICKS must be > 0")
	}

	// Validate strategy config
	if c.Strategy.Enabled {
		if c.Strategy.HalfSpread <= 0 {
			return fmt.Errorf("STRATEGY_HALF_SPREAD must be > 0")
		}
		if c.Strategy.Quantity <= 0 {
			return fmt.Errorf("STRATEGY_QUANTITY must be > 0")
		}
		if c.Strategy.MaxInventory < c.Strategy.Quantity {
			return fmt.Errorf("STRATEGY_MAX_INVENTORY must be >= STRATEGY_QUANTITY")
		}
	}

	// Validate export config
	if c.Export.RecentTrades < 1 {
		return fmt.Errorf("RECENT_TRADES must be > 0")
	}

	// Validate logger config
	validLevels := map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: DEBUG, INFO, WARN, ERROR")
	}

	return nil
}

// Helper functions to read environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
