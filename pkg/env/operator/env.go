// Package operator sets up the environment for operator-side tools.
package operator

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/ectalks/ecdbg/pkg/comm"
	"github.com/ectalks/ecdbg/pkg/comm/mqtt"
)

// Config provides common options to connect debug endpoints.
type Config struct {
	Ref comm.DeviceRef

	// RegistryURL specifies the URL of the endpoint registry.
	// e.g. mqtt://host:port/topic-prefix
	RegistryURL string
}

var defaultConfig = Config{
	RegistryURL: "mqtt://localhost:1883/ecdbg/",
}

func init() {
	if val := os.Getenv("ECDBG_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val := os.Getenv("ECDBG_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("ECDBG_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "ec-type", defaultConfig.Ref.Type, "EC type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "ec-id", defaultConfig.Ref.ID, "EC host ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "ec-reg", defaultConfig.RegistryURL, "Endpoint registry URL.")
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

// NewConnector creates a Connector using current config.
func (c *Config) NewConnector() (comm.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %v", err)
	}
	switch parsedURL.Scheme {
	case "mqtt":
		return mqtt.NewConnector(c.RegistryURL)
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() comm.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// Connect directly connects the configured endpoint.
func (c *Config) Connect() (comm.Channel, error) {
	if !c.Ref.IsValid() {
		return nil, fmt.Errorf("EC type and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.TODO(), c.Ref)
}

// MustConnect connects the configured endpoint and fails on error.
func (c *Config) MustConnect() comm.Channel {
	conn, err := c.Connect()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}
