package domain

import "math"

const (
	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371.0
	// kmToMiles converts kilometers to statute miles.
	kmToMiles = 0.621371
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HaversineKm returns the great-circle distance between two coordinates
// in kilometers.
func HaversineKm(a, b Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return earthRadiusKm * 2 * math.Asin(math.Sqrt(h))
}

// TotalMiles sums the leg distances over an ordered coordinate sequence
// and converts to miles. Fewer than two points is zero miles: distance is
// a property of travel between scraps, not of any single scrap.
func TotalMiles(coords []Coordinate) float64 {
	if len(coords) < 2 {
		return 0
	}
	var km float64
	for i := 1; i < len(coords); i++ {
		km += HaversineKm(coords[i-1], coords[i])
	}
	return km * kmToMiles
}
