package layers

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"georisk/internal/domain"
	"georisk/internal/geometry"
)

func TestAdvisoryPrimitives(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	boundaries := geometry.NewBoundaries([]geometry.Feature{
		{Code: "KR", Name: "South Korea", Rings: [][][2]float64{
			{{126, 37}, {127, 37}, {127, 38}, {126, 38}, {126, 37}},
			{{128, 35}, {129, 35}, {129, 36}, {128, 35}},
		}},
		{Code: "JP", Name: "Japan", Rings: [][][2]float64{
			{{139, 35}, {140, 35}, {140, 36}, {139, 35}},
		}},
	})
	build := AdvisoryPrimitives(func() *geometry.Boundaries { return boundaries }, log)

	t.Run("one polygon per boundary ring", func(t *testing.T) {
		level := 3
		prims := build([]domain.Advisory{{Country: "South Korea", RegionCode: "KS", Level: &level}})
		require.Len(t, prims, 2, "FIPS alias resolves through the mapping table")
		for _, p := range prims {
			require.Equal(t, "South Korea", p.Label)
			require.Equal(t, AdvisoryFill(&level), p.Appearance.Fill)
		}
	})

	t.Run("unmatched regions are skipped", func(t *testing.T) {
		level := 2
		prims := build([]domain.Advisory{
			{Country: "Atlantis", RegionCode: "ZZ", Level: &level},
			{Country: "Japan", RegionCode: "JP", Level: &level},
		})
		require.Len(t, prims, 1)
		require.Equal(t, "Japan", prims[0].Label)
	})

	t.Run("nil level renders with the neutral fill", func(t *testing.T) {
		prims := build([]domain.Advisory{{Country: "Japan", RegionCode: "JP"}})
		require.Len(t, prims, 1)
		require.Equal(t, NoDataFill, prims[0].Appearance.Fill)
	})

	t.Run("nil boundaries yields nothing", func(t *testing.T) {
		unavailable := func() *geometry.Boundaries { return nil }
		prims := AdvisoryPrimitives(unavailable, log)([]domain.Advisory{{RegionCode: "JP"}})
		require.Empty(t, prims)
	})

	t.Run("late boundary resolve fills in on the next rebuild", func(t *testing.T) {
		var resolved *geometry.Boundaries
		lazy := AdvisoryPrimitives(func() *geometry.Boundaries { return resolved }, log)

		records := []domain.Advisory{{Country: "Japan", RegionCode: "JP"}}
		require.Empty(t, lazy(records), "nothing renders while the dataset is missing")

		resolved = boundaries
		prims := lazy(records)
		require.Len(t, prims, 1)
		require.Equal(t, "Japan", prims[0].Label)
	})
}
