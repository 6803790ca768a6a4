// Package geo holds the great-circle math used by the nearby search.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by every distance in the service.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// DistanceKm returns the spherical law of cosines distance between a and b.
// The acos argument is clamped to [-1, 1] so identical points give 0, not NaN.
func DistanceKm(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLon := radians(b.Lon) - radians(a.Lon)

	cosAngle := math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLon) + math.Sin(lat1)*math.Sin(lat2)
	cosAngle = math.Max(-1, math.Min(1, cosAngle))

	return EarthRadiusKm * math.Acos(cosAngle)
}

// boxPadDeg keeps float error at the box edge from dropping points that are
// strictly inside the radius.
const boxPadDeg = 1e-9

// BoundingBox is an inclusive latitude/longitude window in degrees.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether p lies inside the box.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// BoundingBoxAround returns a box that contains every point closer than
// radiusKm to center. Boxes touching a pole or crossing the antimeridian
// widen to the full longitude range.
func BoundingBoxAround(center Point, radiusKm float64) BoundingBox {
	angular := radiusKm / EarthRadiusKm
	dLat := degrees(angular) + boxPadDeg

	box := BoundingBox{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
		MinLon: -180,
		MaxLon: 180,
	}

	if box.MinLat <= -90 || box.MaxLat >= 90 {
		return box
	}

	sinRatio := math.Sin(angular) / math.Cos(radians(center.Lat))
	if sinRatio >= 1 {
		return box
	}
	dLon := degrees(math.Asin(sinRatio)) + boxPadDeg

	minLon, maxLon := center.Lon-dLon, center.Lon+dLon
	if minLon < -180 || maxLon > 180 {
		return box
	}

	box.MinLon, box.MaxLon = minLon, maxLon
	return box
}
