package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		label    string
		prefix   string
		segments []int
	}{
		{"v1.0.10", "v", []int{1, 0, 10}},
		{"1.2", "", []int{1, 2}},
		{"V007", "V", []int{7}},
		{"  v2.0.1 ", "v", []int{2, 0, 1}},
		{"r1.02.3.4", "r", []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			p, err := Parse(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.prefix, p.Prefix())
			assert.Equal(t, tt.segments, p.Segments())
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	labels := []string{"", "   ", "v", "vv1", "v1..2", "v1.2.", "v1.2a", "v1.-2", "v1.2.3-rc1", "v99999999999999999999999"}

	for _, label := range labels {
		t.Run(label, func(t *testing.T) {
			_, err := Parse(label)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))

			var malformed *MalformedVersionError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, label, malformed.Label)
		})
	}
}

func TestParse_MultiSegmentNotTruncated(t *testing.T) {
	// A float parse of "1.0.10" would stop at "1.0" and tie with "1.0.9".
	c, err := CompareLabels("v1.0.10", "v1.0.9")
	require.NoError(t, err)
	assert.Equal(t, 1, c)
}

func TestParsed_String(t *testing.T) {
	assert.Equal(t, "v1.2.3", MustParse("v01.2.03").String())
	assert.Equal(t, "4", MustParse("4").String())
}

func TestSegments_ReturnsCopy(t *testing.T) {
	p := MustParse("v1.2")
	segs := p.Segments()
	segs[0] = 9
	assert.Equal(t, []int{1, 2}, p.Segments())
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("v1"))
	assert.False(t, Valid("latest"))
}
