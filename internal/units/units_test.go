package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetersToEncoderUnits(t *testing.T) {
	assert.Equal(t, 0, MetersToEncoderUnits(0))
	assert.Equal(t, 4305, MetersToEncoderUnits(1))
	assert.Equal(t, 431, MetersToEncoderUnits(0.10))
	assert.Equal(t, -431, MetersToEncoderUnits(-0.10))
	assert.Equal(t, 49512, MetersToEncoderUnits(11.5))
}

func TestEncoderUnitsToMeters(t *testing.T) {
	assert.InDelta(t, 1.0, EncoderUnitsToMeters(4305), 1/CountsPerMeter)
	assert.Equal(t, 0.0, EncoderUnitsToMeters(0))
}

func TestRoundTripWithinOneCount(t *testing.T) {
	quantum := 1 / CountsPerMeter
	for m := 0.0; m <= 11.5; m += 0.0137 {
		got := EncoderUnitsToMeters(MetersToEncoderUnits(m))
		assert.InDelta(t, m, got, quantum, "meters=%v", m)
	}
}
