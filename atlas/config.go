package atlas

import (
	"time"

	"github.com/golang/geo/r3"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const (
	defaultGlobalFrame      = "map"
	defaultOdomFrame        = "odom"
	defaultTransformTimeout = 500 * time.Millisecond
)

// Config describes how to configure the wrapper.
type Config struct {
	// GlobalFrame names the world frame every output is expressed in.
	GlobalFrame string
	// OdomFrame names the local odometry frame for map→odom corrections.
	OdomFrame string
	// RobotStart is the configured robot start position anchoring the root
	// map's reference pose.
	RobotStart r3.Vector
	// TransformTimeout leads the map→odom stamp ahead of the odometry sample
	// to satisfy downstream extrapolation tolerance.
	TransformTimeout time.Duration
}

// DefaultConfig returns a config with the standard frame names and timeout.
func DefaultConfig() Config {
	return Config{
		GlobalFrame:      defaultGlobalFrame,
		OdomFrame:        defaultOdomFrame,
		TransformTimeout: defaultTransformTimeout,
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if c.GlobalFrame == "" {
		return errors.New("global frame must not be empty")
	}
	if c.OdomFrame == "" {
		return errors.New("odom frame must not be empty")
	}
	if c.GlobalFrame == c.OdomFrame {
		return errors.Errorf("global frame and odom frame must differ, both are %q", c.GlobalFrame)
	}
	if c.TransformTimeout < 0 {
		return errors.New("transform timeout must not be negative")
	}
	return nil
}

// attrConfig mirrors the raw service attribute map.
type attrConfig struct {
	GlobalFrame        string  `json:"global_frame"`
	OdomFrame          string  `json:"odom_frame"`
	RobotStartX        float64 `json:"robot_x"`
	RobotStartY        float64 `json:"robot_y"`
	TransformTimeoutMs int     `json:"transform_timeout_ms"`
}

// ConfigFromAttributes decodes a service attribute map into a Config,
// applying defaults for unset fields.
func ConfigFromAttributes(attributes map[string]interface{}) (Config, error) {
	var attrs attrConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: &attrs})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return Config{}, errors.Wrap(err, "decoding wrapper attributes")
	}

	conf := DefaultConfig()
	if attrs.GlobalFrame != "" {
		conf.GlobalFrame = attrs.GlobalFrame
	}
	if attrs.OdomFrame != "" {
		conf.OdomFrame = attrs.OdomFrame
	}
	conf.RobotStart = r3.Vector{X: attrs.RobotStartX, Y: attrs.RobotStartY}
	if attrs.TransformTimeoutMs != 0 {
		conf.TransformTimeout = time.Duration(attrs.TransformTimeoutMs) * time.Millisecond
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}
