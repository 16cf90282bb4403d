package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-locator/internal/locate"
	"github.com/pixil98/go-locator/internal/protocol"
)

type LocatorConfig struct {
	RequestChannel      string `json:"request_channel"`
	ResponseChannel     string `json:"response_channel"`
	LimitedCapability   string `json:"limited_capability"`
	UnlimitedCapability string `json:"unlimited_capability"`
	Precision           string `json:"precision"`
}

func (c *LocatorConfig) validate() error {
	el := errors.NewErrorList()

	for name, v := range map[string]string{
		"request_channel":  c.RequestChannel,
		"response_channel": c.ResponseChannel,
	} {
		if v != "" && !tokenPattern.MatchString(v) {
			el.Add(fmt.Errorf("%s %q must be letters, digits, '-' or '_'", name, v))
		}
	}

	if _, err := c.precision(); err != nil {
		el.Add(err)
	}

	return el.Err()
}

func (c *LocatorConfig) precision() (protocol.Precision, error) {
	switch c.Precision {
	case "", "block":
		return protocol.PrecisionBlock, nil
	case "exact":
		return protocol.PrecisionExact, nil
	default:
		return 0, fmt.Errorf("precision must be block or exact, got %q", c.Precision)
	}
}

// build fills unset fields with the defaults.
func (c *LocatorConfig) build() (locate.Config, error) {
	cfg := locate.DefaultConfig()

	if c.RequestChannel != "" {
		cfg.RequestChannel = c.RequestChannel
	}
	if c.ResponseChannel != "" {
		cfg.ResponseChannel = c.ResponseChannel
	}
	if c.LimitedCapability != "" {
		cfg.LimitedCapability = c.LimitedCapability
	}
	if c.UnlimitedCapability != "" {
		cfg.UnlimitedCapability = c.UnlimitedCapability
	}

	p, err := c.precision()
	if err != nil {
		return locate.Config{}, err
	}
	cfg.Precision = p

	return cfg, nil
}
