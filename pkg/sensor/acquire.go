package sensor

import "fmt"

// Acquirer reads every configured channel in a stable order.
type Acquirer struct {
	channels []Channel
	analog   AnalogSource
	digital  DigitalSource
}

// NewAcquirer creates an Acquirer. A source may be nil only when no channel needs it.
func NewAcquirer(channels []Channel, analog AnalogSource, digital DigitalSource) (*Acquirer, error) {
	for _, ch := range channels {
		switch ch.Kind {
		case Analog:
			if analog == nil {
				return nil, fmt.Errorf("channel %q: no analog source", ch.ID)
			}
		case Digital:
			if digital == nil {
				return nil, fmt.Errorf("channel %q: no digital source", ch.ID)
			}
		case Unimplemented:
		default:
			return nil, fmt.Errorf("channel %q: unsupported kind %v", ch.ID, ch.Kind)
		}
	}

	return &Acquirer{
		channels: append([]Channel(nil), channels...),
		analog:   analog,
		digital:  digital,
	}, nil
}

// Channels returns the configured channels in acquisition order.
func (a *Acquirer) Channels() []Channel {
	return a.channels
}

// Acquire reads all channels and appends one Reading per channel to dst[:0].
// Destination-based: reuses dst if it has sufficient capacity.
func (a *Acquirer) Acquire(dst []Reading) []Reading {
	dst = dst[:0]
	for _, ch := range a.channels {
		dst = append(dst, a.Read(ch))
	}
	return dst
}

// Read acquires a single channel.
func (a *Acquirer) Read(ch Channel) Reading {
	switch ch.Kind {
	case Analog:
		return a.readAnalog(ch)
	case Digital:
		level := a.digital.Level(ch.Input)
		return Reading{Channel: ch.ID, Raw: level, Valid: level != DigitalSentinel}
	}
	return Reading{Channel: ch.ID, Raw: DigitalSentinel, Valid: false}
}

// readAnalog issues a conversion and blocks until the source reports completion.
// There is no software timeout and no retry.
func (a *Acquirer) readAnalog(ch Channel) Reading {
	if err := a.analog.Start(ch.Input); err != nil {
		return Reading{Channel: ch.ID, Raw: AnalogSentinel, Valid: false}
	}
	if err := a.analog.AwaitReady(); err != nil {
		return Reading{Channel: ch.ID, Raw: AnalogSentinel, Valid: false}
	}
	v := a.analog.Value()
	return Reading{Channel: ch.ID, Raw: v, Valid: v != AnalogSentinel}
}
