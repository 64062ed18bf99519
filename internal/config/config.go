package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration loaded from configs/config.yml.
// Every key can be overridden from the environment with the MOTION_ prefix,
// e.g. MOTION_MQTT_BROKER or MOTION_SECURITY_FACE_WINDOW.
type Config struct {
	Port       string           `mapstructure:"port"`
	LogLevel   string           `mapstructure:"log_level"`
	DB         DBConfig         `mapstructure:"db"`
	Security   SecurityConfig   `mapstructure:"security"`
	Auth       AuthConfig       `mapstructure:"auth"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
	Bulb       BulbConfig       `mapstructure:"bulb"`
	Sensors    SensorsConfig    `mapstructure:"sensors"`
	Camera     CameraConfig     `mapstructure:"camera"`
	Recognizer RecognizerConfig `mapstructure:"recognizer"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
	InfluxDB   InfluxDBConfig   `mapstructure:"influxdb"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// SecurityConfig tunes the motion response.
type SecurityConfig struct {
	LightThreshold  int           `mapstructure:"light_threshold"`
	FaceWindow      time.Duration `mapstructure:"face_window"`
	ActuationWindow time.Duration `mapstructure:"actuation_window"`
	FaceThreshold   float64       `mapstructure:"face_threshold"`
	MinDistanceGap  float64       `mapstructure:"min_distance_gap"`
	RefreshEvery    int           `mapstructure:"refresh_every"`
	WaitPoll        time.Duration `mapstructure:"wait_poll"`
	FramePause      time.Duration `mapstructure:"frame_pause"`
	DefaultColor    string        `mapstructure:"default_color"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// MQTTConfig configures the broker shared by the bulb bridge and the dashboard.
// An empty Broker disables MQTT entirely.
type MQTTConfig struct {
	Broker         string        `mapstructure:"broker"`
	ClientID       string        `mapstructure:"client_id"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	TopicPrefix    string        `mapstructure:"topic_prefix"`
	QoS            int           `mapstructure:"qos"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type BulbConfig struct {
	DeviceID string `mapstructure:"device_id"`
}

// SensorsConfig points at the serial MCU carrying the PIR, light sensor and LED.
type SensorsConfig struct {
	Port string `mapstructure:"port"`
	Baud int    `mapstructure:"baud"`
}

type CameraConfig struct {
	SnapshotURL   string        `mapstructure:"snapshot_url"`
	Dir           string        `mapstructure:"dir"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type RecognizerConfig struct {
	URL           string        `mapstructure:"url"`
	RegisteredDir string        `mapstructure:"registered_dir"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type DashboardConfig struct {
	SyncInterval time.Duration `mapstructure:"sync_interval"`
}

type InfluxDBConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

const envPrefix = "MOTION"

var (
	errFaceWindowTooLong = errors.New("security.face_window must not exceed security.actuation_window")
	errNonPositive       = errors.New("must be positive")
)

// SetDefaults registers the default value of every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("db.path", "security.db")

	v.SetDefault("security.light_threshold", 500)
	v.SetDefault("security.face_window", 30*time.Second)
	v.SetDefault("security.actuation_window", 60*time.Second)
	v.SetDefault("security.face_threshold", 0.6)
	v.SetDefault("security.min_distance_gap", 0.1)
	v.SetDefault("security.refresh_every", 10)
	v.SetDefault("security.wait_poll", time.Second)
	v.SetDefault("security.frame_pause", 100*time.Millisecond)
	v.SetDefault("security.default_color", "white")

	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", time.Hour)

	v.SetDefault("mqtt.client_id", "motion-security")
	v.SetDefault("mqtt.topic_prefix", "motionsec")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.connect_timeout", 5*time.Second)

	v.SetDefault("bulb.device_id", "porch")

	v.SetDefault("sensors.baud", 115200)

	v.SetDefault("camera.frame_interval", 200*time.Millisecond)
	v.SetDefault("camera.timeout", 3*time.Second)

	v.SetDefault("recognizer.registered_dir", "registered_faces")
	v.SetDefault("recognizer.timeout", 5*time.Second)

	v.SetDefault("dashboard.sync_interval", 2*time.Second)
}

// Load reads configs/config.yml (or the file at path when non-empty),
// applies env overrides and validates the result. A missing config file is
// not an error: defaults and environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the security settings. The face window must fit inside
// the actuation window: recognition is never meant to outlive the light.
func (c *Config) Validate() error {
	s := c.Security
	checks := []struct {
		name string
		ok   bool
	}{
		{"security.light_threshold", s.LightThreshold > 0},
		{"security.face_window", s.FaceWindow > 0},
		{"security.actuation_window", s.ActuationWindow > 0},
		{"security.face_threshold", s.FaceThreshold > 0},
		{"security.refresh_every", s.RefreshEvery > 0},
		{"security.wait_poll", s.WaitPoll > 0},
		{"security.frame_pause", s.FramePause > 0},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%s %w", chk.name, errNonPositive)
		}
	}
	if s.MinDistanceGap < 0 {
		return fmt.Errorf("security.min_distance_gap must not be negative")
	}
	if s.FaceWindow > s.ActuationWindow {
		return fmt.Errorf("%w (%s > %s)", errFaceWindowTooLong, s.FaceWindow, s.ActuationWindow)
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	return nil
}
