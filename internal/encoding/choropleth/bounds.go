package choropleth

import (
	"iter"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultCenter возвращает центр карты по умолчанию (lon, lat)
func DefaultCenter() orb.Point {
	return orb.Point{2.4, 46.6}
}

// BoundsResult - охват объектов и центр карты
type BoundsResult struct {
	Bounds *orb.Bound `json:"bounds"`
	Center orb.Point  `json:"center"`
}

// ComputeBounds вычисляет охват полигональной геометрии объектов.
// Без полигонов возвращает nil-охват и центр по умолчанию.
func ComputeBounds(features []*geojson.Feature) BoundsResult {
	return ComputeBoundsWithFallback(features, DefaultCenter())
}

// ComputeBoundsWithFallback работает как ComputeBounds с заданным центром по умолчанию
func ComputeBoundsWithFallback(features []*geojson.Feature, fallback orb.Point) BoundsResult {
	var (
		bound orb.Bound
		found bool
	)

	for _, f := range features {
		if f == nil {
			continue
		}
		for ring := range Rings(f.Geometry) {
			for _, pt := range ring {
				if !found {
					bound = orb.Bound{Min: pt, Max: pt}
					found = true
					continue
				}
				bound = bound.Extend(pt)
			}
		}
	}

	if !found {
		return BoundsResult{Center: fallback}
	}
	return BoundsResult{Bounds: &bound, Center: bound.Center()}
}

// Rings перебирает кольца полигональной геометрии. Прочие типы геометрии не дают колец.
func Rings(g orb.Geometry) iter.Seq[orb.Ring] {
	return func(yield func(orb.Ring) bool) {
		switch geom := g.(type) {
		case orb.Polygon:
			for _, r := range geom {
				if !yield(r) {
					return
				}
			}
		case orb.MultiPolygon:
			for _, poly := range geom {
				for _, r := range poly {
					if !yield(r) {
						return
					}
				}
			}
		}
	}
}
