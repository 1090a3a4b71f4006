package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends understood by STORAGE_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendPebble = "pebble"
)

// Order ID strategies understood by ORDER_ID_STRATEGY.
const (
	IDStrategyTimestamp = "timestamp"
	IDStrategyUUID      = "uuid"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
// - oneof: comma separated list of accepted values
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Storage holds the key-value storage configuration.
	Storage StorageConfig `mapstructure:",squash"`

	// Orders holds the order store behaviour switches.
	Orders OrdersConfig `mapstructure:",squash"`

	// Demo holds settings for demo-only helpers.
	Demo DemoConfig `mapstructure:",squash"`
}

// StorageConfig selects and configures the durable key-value backend.
type StorageConfig struct {
	// Backend is one of memory, redis or pebble.
	Backend string `mapstructure:"STORAGE_BACKEND" default:"memory" oneof:"memory,redis,pebble"`
	// RedisURL is used when Backend is redis.
	RedisURL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
	// PebbleDir is the data directory used when Backend is pebble.
	PebbleDir string `mapstructure:"PEBBLE_DIR" default:"./data/afterlife"`
	// OrdersKey is the fixed key holding the persisted order list.
	OrdersKey string `mapstructure:"ORDERS_STORAGE_KEY" default:"afterlife-orders" required:"true"`
	// CartKey is the fixed key holding the persisted cart.
	CartKey string `mapstructure:"CART_STORAGE_KEY" default:"afterlife-cart" required:"true"`
}

// OrdersConfig holds order store switches.
type OrdersConfig struct {
	// IDStrategy is timestamp (ORD-<millis>) or uuid (ORD-<uuid>).
	IDStrategy string `mapstructure:"ORDER_ID_STRATEGY" default:"timestamp" oneof:"timestamp,uuid"`
	// StrictTransitions rejects backward and post-terminal status updates.
	StrictTransitions bool `mapstructure:"STRICT_TRANSITIONS" default:"false"`
}

// DemoConfig holds demo helpers.
type DemoConfig struct {
	// JourneySchedule is a cron spec (with seconds) advancing every open order one stage.
	// Empty disables the simulator.
	JourneySchedule string `mapstructure:"DEMO_JOURNEY_SCHEDULE"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateTags(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind env %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateTags checks required fields for non-zero values and oneof fields for accepted values.
func validateTags(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateTags(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		value := val.Field(i)

		if field.Tag.Get("required") == "true" && isZero(value) {
			return fmt.Errorf("missing required configuration: %s", key)
		}

		if oneof := field.Tag.Get("oneof"); oneof != "" && value.Kind() == reflect.String {
			if !contains(strings.Split(oneof, ","), value.String()) {
				return fmt.Errorf("invalid configuration: %s must be one of [%s], got %q", key, oneof, value.String())
			}
		}
	}
	return nil
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
