package layers

import (
	"log/slog"

	"georisk/internal/domain"
	"georisk/internal/geometry"
	"georisk/internal/viewport"
)

// AdvisoryPrimitives renders one polygon per boundary ring of each advisory
// record's region. Boundaries come from the provider on every rebuild, so a
// map that started without them fills in as soon as a later resolve succeeds;
// a nil result renders nothing for now. Region matching goes through the
// boundary resolver's explicit code mapping; records whose region has no
// boundary are logged and skipped, while matched regions without a level
// render with the neutral "no data" fill rather than being omitted.
func AdvisoryPrimitives(boundaries func() *geometry.Boundaries, log *slog.Logger) func([]domain.Advisory) []viewport.Primitive {
	return func(items []domain.Advisory) []viewport.Primitive {
		resolved := boundaries()
		if resolved == nil {
			return nil
		}
		var out []viewport.Primitive
		for _, a := range items {
			feature, ok := resolved.Find(a.RegionCode)
			if !ok {
				log.Warn("no boundary for region", "code", a.RegionCode, "country", a.Country)
				continue
			}
			fill := AdvisoryFill(a.Level)
			for _, ring := range feature.Rings {
				out = append(out, viewport.Primitive{
					Kind:  viewport.PolygonPrimitive,
					Ring:  ring,
					Label: feature.Name,
					Appearance: viewport.Appearance{
						Fill:    fill,
						Outline: "#455a64",
						Opacity: 0.45,
					},
					Record: a,
				})
			}
		}
		return out
	}
}
