package models

import (
	"fmt"
	"strings"
)

// Transport is one of the fixed ways of traversing a route
type Transport uint8

const (
	TransportTrain Transport = iota
	TransportBus
	TransportBoat
	TransportWalk
	TransportBicycle
)

// NumTransports is the size of the transport catalog
const NumTransports = 5

var transportInfo = [NumTransports]struct {
	key   string
	label string
	style string
	emoji string
}{
	TransportTrain:   {"train", "Train", "edge-train", "🚆"},
	TransportBus:     {"bus", "Bus", "edge-bus", "🚌"},
	TransportBoat:    {"boat", "Boat", "edge-boat", "🚢"},
	TransportWalk:    {"walk", "Walk", "edge-walk", "🚶"},
	TransportBicycle: {"bicycle", "Bicycle", "edge-bicycle", "🚲"},
}

// AllTransports returns the catalog in its canonical order
func AllTransports() []Transport {
	return []Transport{TransportTrain, TransportBus, TransportBoat, TransportWalk, TransportBicycle}
}

// Valid reports whether t belongs to the catalog
func (t Transport) Valid() bool {
	return t < NumTransports
}

// Key returns the lowercase machine key ("bus")
func (t Transport) Key() string {
	if !t.Valid() {
		return ""
	}
	return transportInfo[t].key
}

// Label returns the display label ("Bus")
func (t Transport) Label() string {
	if !t.Valid() {
		return ""
	}
	return transportInfo[t].label
}

// StyleClass returns the style tag used by renderers
func (t Transport) StyleClass() string {
	if !t.Valid() {
		return ""
	}
	return transportInfo[t].style
}

// Emoji returns the icon of the transport
func (t Transport) Emoji() string {
	if !t.Valid() {
		return ""
	}
	return transportInfo[t].emoji
}

func (t Transport) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Transport(%d)", uint8(t))
	}
	return transportInfo[t].label
}

// ParseTransport maps a label or key back to its transport.
// Matching is case-insensitive.
func ParseTransport(s string) (Transport, error) {
	s = strings.TrimSpace(s)
	for i, info := range transportInfo {
		if strings.EqualFold(s, info.label) || strings.EqualFold(s, info.key) {
			return Transport(i), nil
		}
	}
	return 0, fmt.Errorf("unknown transport %q", s)
}

// ParseTransportList parses a comma-separated list such as "bus,train".
// Duplicates are dropped and the result follows catalog order.
func ParseTransportList(s string) ([]Transport, error) {
	var seen [NumTransports]bool
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseTransport(part)
		if err != nil {
			return nil, err
		}
		seen[t] = true
	}

	var result []Transport
	for i, ok := range seen {
		if ok {
			result = append(result, Transport(i))
		}
	}
	return result, nil
}

// TransportLabels returns the display labels in catalog order
func TransportLabels() []string {
	labels := make([]string, 0, NumTransports)
	for _, info := range transportInfo {
		labels = append(labels, info.label)
	}
	return labels
}

// MarshalText encodes a transport as its key
func (t Transport) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid transport %d", uint8(t))
	}
	return []byte(t.Key()), nil
}

// UnmarshalText accepts either a key or a label
func (t *Transport) UnmarshalText(text []byte) error {
	parsed, err := ParseTransport(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
