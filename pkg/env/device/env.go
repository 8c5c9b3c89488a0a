// Package device sets up the environment for the device-side daemon.
package device

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ectalks/ecdbg/pkg/comm"
	"github.com/ectalks/ecdbg/pkg/comm/mqtt"
	"github.com/ectalks/ecdbg/pkg/ec"
	"github.com/ectalks/ecdbg/pkg/ec/mailbox"
	"github.com/ectalks/ecdbg/pkg/ec/raw"
	"github.com/ectalks/ecdbg/pkg/ec/sim"
	"github.com/ectalks/ecdbg/pkg/env"
)

// Config provides common options to expose an EC debug endpoint.
type Config struct {
	Info comm.DeviceInfo

	// MQTTBrokerURL specifies the MQTT broker to register with.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string

	// SerialDevice is the serial port wired to the EC mailbox.
	SerialDevice string
	Baud         int

	// Sim replaces the hardware with a simulated EC.
	Sim bool
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/ecdbg/",
	SerialDevice:  "/dev/ttyS0",
	Baud:          mailbox.DefaultBaud,
}

func init() {
	if val := os.Getenv("ECDBG_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("ECDBG_SERIAL_DEV"); val != "" {
		defaultConfig.SerialDevice = val
	}
	defaultConfig.Info.Ref.ID = env.MachineID()
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "EC type")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "EC host ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.SerialDevice, "serial", defaultConfig.SerialDevice, "Serial device of the EC mailbox")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate")
	flag.BoolVar(&defaultConfig.Sim, "sim", defaultConfig.Sim, "Use a simulated EC")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// SetDeviceType should be called in init with basic info about the EC.
func SetDeviceType(typ string, meta comm.DeviceMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// Env is the environment for the device-side daemon.
type Env struct {
	Config    *Config
	Device    ec.Device
	Session   *raw.Session
	Registrar *mqtt.Registrar
}

// NewDevice opens the EC behind the configured transport.
func (c *Config) NewDevice() (ec.Device, error) {
	if c.Sim {
		return sim.NewDevice(), nil
	}
	mc := &mailbox.Config{Device: c.SerialDevice, Baud: c.Baud}
	return mc.Open()
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("EC type and id must be specified")
	}
	dev, err := c.NewDevice()
	if err != nil {
		return nil, fmt.Errorf("open EC error: %v", err)
	}
	e := &Env{
		Config:  c,
		Device:  dev,
		Session: raw.NewSession(dev),
	}
	if c.MQTTBrokerURL == "" {
		return nil, fmt.Errorf("an MQTT broker is required")
	}
	reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info.Ref, c.Info.Meta, e.Session)
	if err != nil {
		return nil, fmt.Errorf("create MQTT registrar error: %v", err)
	}
	e.Registrar = reg
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}
