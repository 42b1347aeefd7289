package utils

import (
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusKm = 6371.0

// HaversineDistance вычисляет расстояние между двумя точками в километрах
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateGeometry проверяет, что все вершины геометрии - валидные lon/lat
func ValidateGeometry(g orb.Geometry) bool {
	if g == nil {
		return true
	}
	b := g.Bound()
	return ValidateCoordinates(b.Min.Lat(), b.Min.Lon()) && ValidateCoordinates(b.Max.Lat(), b.Max.Lon())
}

// DiagonalKm возвращает длину диагонали охвата в километрах
func DiagonalKm(b orb.Bound) float64 {
	return HaversineDistance(b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon())
}
