package storage

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	state := settings{Theme: "dark", Volume: 7}

	for _, codec := range []Codec{JSON, YAML} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Marshal(&state)
			require.NoError(t, err)
			g.Assert(t, "settings_"+codec.Name(), data)
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	state := settings{Theme: "light", Volume: 3, Muted: true}

	for _, codec := range []Codec{JSON, YAML, TOML} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Marshal(&state)
			require.NoError(t, err)

			var decoded settings
			require.NoError(t, codec.Unmarshal(data, &decoded))
			assert.Equal(t, state, decoded)
		})
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	for _, codec := range []Codec{JSON, YAML, TOML} {
		t.Run(codec.Name(), func(t *testing.T) {
			var decoded settings
			assert.Error(t, codec.Unmarshal([]byte("{{{ not valid"), &decoded))
		})
	}
}
