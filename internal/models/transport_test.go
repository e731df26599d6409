package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportLabelsRoundTrip(t *testing.T) {
	for _, tr := range AllTransports() {
		t.Run(tr.Label(), func(t *testing.T) {
			parsed, err := ParseTransport(tr.Label())
			require.NoError(t, err)
			assert.Equal(t, tr, parsed)

			parsed, err = ParseTransport(tr.Key())
			require.NoError(t, err)
			assert.Equal(t, tr, parsed)
		})
	}
}

func TestParseTransport(t *testing.T) {
	tests := []struct {
		input    string
		expected Transport
		wantErr  bool
	}{
		{"Bus", TransportBus, false},
		{"BICYCLE", TransportBicycle, false},
		{" walk ", TransportWalk, false},
		{"boat", TransportBoat, false},
		{"rocket", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTransport(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseTransportList(t *testing.T) {
	got, err := ParseTransportList("bicycle, bus,bus,,Train")
	require.NoError(t, err)
	assert.Equal(t, []Transport{TransportTrain, TransportBus, TransportBicycle}, got)

	got, err = ParseTransportList("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseTransportList("bus,plane")
	assert.Error(t, err)
}

func TestTransportMetadata(t *testing.T) {
	assert.Equal(t, "edge-boat", TransportBoat.StyleClass())
	assert.Equal(t, "🚲", TransportBicycle.Emoji())
	assert.Equal(t, []string{"Train", "Bus", "Boat", "Walk", "Bicycle"}, TransportLabels())
	assert.False(t, Transport(9).Valid())
	assert.Equal(t, "", Transport(9).Label())
}

func TestTransportJSON(t *testing.T) {
	data, err := json.Marshal(TransportWalk)
	require.NoError(t, err)
	assert.Equal(t, `"walk"`, string(data))

	var tr Transport
	require.NoError(t, json.Unmarshal([]byte(`"Boat"`), &tr))
	assert.Equal(t, TransportBoat, tr)
}
