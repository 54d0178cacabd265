package atlas

import (
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{"empty global frame", func(c *Config) { c.GlobalFrame = "" }, "global frame"},
		{"empty odom frame", func(c *Config) { c.OdomFrame = "" }, "odom frame"},
		{"identical frames", func(c *Config) { c.OdomFrame = c.GlobalFrame }, "must differ"},
		{"negative timeout", func(c *Config) { c.TransformTimeout = -time.Second }, "negative"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
		})
	}

	cfg := DefaultConfig()
	test.That(t, cfg.Validate(), test.ShouldBeNil)
}

func TestConfigFromAttributes(t *testing.T) {
	conf, err := ConfigFromAttributes(map[string]interface{}{
		"global_frame":         "world",
		"robot_x":              1.5,
		"robot_y":              -2.0,
		"transform_timeout_ms": 250,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.GlobalFrame, test.ShouldEqual, "world")
	test.That(t, conf.OdomFrame, test.ShouldEqual, "odom")
	test.That(t, conf.RobotStart, test.ShouldResemble, r3.Vector{X: 1.5, Y: -2.0})
	test.That(t, conf.TransformTimeout, test.ShouldEqual, 250*time.Millisecond)
}

func TestConfigFromAttributesDefaults(t *testing.T) {
	conf, err := ConfigFromAttributes(map[string]interface{}{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf, test.ShouldResemble, DefaultConfig())
}

func TestConfigFromAttributesBadValue(t *testing.T) {
	_, err := ConfigFromAttributes(map[string]interface{}{"robot_x": "not a number"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "decoding wrapper attributes")
}
