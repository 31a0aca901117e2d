package definitions

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DeviceUDIDEnv = "TARGET_IPHONE_UDID"

	DeviceUDIDGuidance = "you must set it in the environment variable or pass --udid, read more: https://github.com/sion-codin/iPhone-use"
)

// Config holds all runtime settings.
type Config struct {
	DeviceUDID        string        `envconfig:"TARGET_IPHONE_UDID" json:"udid"`
	AppiumURL         string        `envconfig:"APPIUM_URL" default:"http://127.0.0.1:4723" json:"appium_url"`
	DeviceName        string        `envconfig:"IPHONE_DEVICE_NAME" json:"device_name,omitempty"`
	PlatformVersion   string        `envconfig:"IPHONE_PLATFORM_VERSION" json:"platform_version,omitempty"`
	NewCommandTimeout int           `envconfig:"IPHONE_USE_NEW_COMMAND_TIMEOUT" default:"0" json:"new_command_timeout"`
	SessionTimeout    time.Duration `envconfig:"IPHONE_USE_SESSION_TIMEOUT" default:"10m" json:"session_timeout"`
	CommandTimeout    time.Duration `envconfig:"IPHONE_USE_COMMAND_TIMEOUT" default:"2m" json:"command_timeout"`
	MetricsAddr       string        `envconfig:"IPHONE_USE_METRICS_ADDR" json:"metrics_addr,omitempty"`
	Debug             bool          `envconfig:"IPHONE_USE_DEBUG" default:"false" json:"debug"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// RequireDeviceUDID returns the configured device identity or a ConfigurationError.
func (c *Config) RequireDeviceUDID() (string, error) {
	if c == nil || c.DeviceUDID == "" {
		return "", &ConfigurationError{Setting: DeviceUDIDEnv, Guidance: DeviceUDIDGuidance}
	}
	return c.DeviceUDID, nil
}

// Capabilities builds the session capability descriptor for the configured device.
func (c *Config) Capabilities() (Capabilities, error) {
	udid, err := c.RequireDeviceUDID()
	if err != nil {
		return Capabilities{}, err
	}
	return Capabilities{
		PlatformName:           "iOS",
		AutomationName:         "XCUITest",
		UDID:                   udid,
		DeviceName:             c.DeviceName,
		PlatformVersion:        c.PlatformVersion,
		IncludeSafariInWebview: true,
		NewCommandTimeout:      c.NewCommandTimeout,
	}, nil
}
