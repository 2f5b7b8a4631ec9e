package station

import (
	"fmt"

	"github.com/itohio/wxstation/pkg/classify"
	"github.com/itohio/wxstation/pkg/config"
	"github.com/itohio/wxstation/pkg/sensor"
)

// Channel is a sensor channel together with its classification policy.
type Channel struct {
	sensor.Channel
	Policy classify.Policy
}

// ChannelsFromConfig converts the configured channel table, preserving order.
func ChannelsFromConfig(cfgs []config.ChannelConfig) ([]Channel, error) {
	out := make([]Channel, 0, len(cfgs))
	for _, c := range cfgs {
		kind, err := sensor.ParseKind(c.Kind)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", c.ID, err)
		}
		strategy, err := classify.ParseStrategy(c.Strategy)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", c.ID, err)
		}
		if c.Strategy == "" && kind == sensor.Digital {
			strategy = classify.Presence
		}

		ceiling := c.Ceiling
		if ceiling == 0 && strategy == classify.Range {
			ceiling = classify.DefaultCeiling
		}

		out = append(out, Channel{
			Channel: sensor.Channel{
				ID:    c.ID,
				Label: c.Label,
				Kind:  kind,
				Input: c.Input,
			},
			Policy: classify.Policy{
				Strategy: strategy,
				Thresholds: classify.Thresholds{
					High:      c.High,
					Ceiling:   ceiling,
					ActiveLow: c.ActiveLow,
				},
			},
		})
	}
	return out, nil
}
