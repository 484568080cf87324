package models

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0 // Earth's radius in kilometers

type Location struct {
	Lat float64 `json:"lat" parquet:"name=lat,type=DOUBLE"`
	Lon float64 `json:"lng" parquet:"name=lon,type=DOUBLE"`
}

// Valid reports whether the coordinates are inside the WGS84 range.
// The zero value (0, 0) is treated as unset.
func (l Location) Valid() bool {
	if l.Lat == 0 && l.Lon == 0 {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}

// DistanceKm returns the great-circle distance to other in kilometers.
func (l Location) DistanceKm(other Location) float64 {
	lat1 := degreesToRadians(l.Lat)
	lon1 := degreesToRadians(l.Lon)
	lat2 := degreesToRadians(other.Lat)
	lon2 := degreesToRadians(other.Lon)

	// Haversine formula
	dlat := lat2 - lat1
	dlon := lon2 - lon1
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func (l *Location) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		_, err := fmt.Sscanf(string(v), "POINT(%f %f)", &l.Lon, &l.Lat)
		return err
	case string:
		_, err := fmt.Sscanf(v, "POINT(%f %f)", &l.Lon, &l.Lat)
		return err
	default:
		return fmt.Errorf("unsupported type for Location: %T", value)
	}
}
