package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrid(t *testing.T) {
	t.Run("quoted fields keep the delimiter", func(t *testing.T) {
		g := ParseGrid(",2015,2016\nMAZOWIECKIE,\"8 000,00\",\"8 500,00\"\n")

		require.Len(t, g, 2)
		assert.Equal(t, []string{"", "2015", "2016"}, g.Header())
		assert.Equal(t, []string{"MAZOWIECKIE", "8 000,00", "8 500,00"}, g[1])
	})

	t.Run("empty input is an empty grid", func(t *testing.T) {
		for _, in := range []string{"", "   ", "\n\n"} {
			g := ParseGrid(in)
			assert.NotNil(t, g)
			assert.Empty(t, g)
			assert.Nil(t, g.Header())
			assert.Nil(t, g.DataRows())
		}
	})

	t.Run("header only has no data rows", func(t *testing.T) {
		g := ParseGrid(",2015,2016")
		require.Len(t, g, 1)
		assert.Nil(t, g.DataRows())
	})

	t.Run("ragged rows are kept as-is", func(t *testing.T) {
		g := ParseGrid(",2015,2016,2017\nA,1\nB,1,2,3,4\n")

		require.Len(t, g, 3)
		assert.Len(t, g[1], 2)
		assert.Len(t, g[2], 5)
	})

	t.Run("byte order mark is dropped", func(t *testing.T) {
		g := ParseGrid("\ufeffregion,2015\nOpolskie,\"5 100,00\"")

		require.Len(t, g, 2)
		assert.Equal(t, "region", g[0][0])
	})

	t.Run("space before an opening quote", func(t *testing.T) {
		g := ParseGrid(",2015\nLubuskie, \"4 900,50\"")

		require.Len(t, g, 2)
		assert.Equal(t, "4 900,50", g[1][1])
	})

	t.Run("stray quote inside a field", func(t *testing.T) {
		g := ParseGrid(",2015\nPodlaskie 5\"x,\"4 100,00\"")

		require.Len(t, g, 2)
		assert.Equal(t, "Podlaskie 5\"x", g[1][0])
	})
}

func TestParseGridDelimited(t *testing.T) {
	g := ParseGridDelimited(";2015;2016\nPomorskie;6 200,00;6 600,00\n", ';')

	require.Len(t, g, 2)
	assert.Equal(t, []string{"Pomorskie", "6 200,00", "6 600,00"}, g.DataRows()[0])
}
