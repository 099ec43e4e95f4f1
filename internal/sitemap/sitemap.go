// Package sitemap places the plant's sensors on a map.
package sitemap

import (
	"encoding/json"
	"math/rand"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
)

// Spread is the standard deviation, in degrees, of a site around the origin.
const Spread = 0.01

// Origin is the plant location, Medellín.
var Origin = LatLon{Lat: 6.2442, Lon: -75.5812}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Site is one sensor marker.
type Site struct {
	Sensor string `json:"sensor"`
	LatLon
}

// Place scatters n sensors normally around origin. All latitudes are drawn
// first, then all longitudes.
func Place(n int, seed int64, origin LatLon) []Site {
	rng := rand.New(rand.NewSource(seed))
	sites := make([]Site, n)
	for i := range sites {
		sites[i].Sensor = data.SensorID(i + 1)
		sites[i].Lat = origin.Lat + rng.NormFloat64()*Spread
	}
	for i := range sites {
		sites[i].Lon = origin.Lon + rng.NormFloat64()*Spread
	}
	return sites
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string            `json:"type"`
	Geometry   geometry          `json:"geometry"`
	Properties map[string]string `json:"properties"`
}

type geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// GeoJSON encodes sites as a FeatureCollection of points.
func GeoJSON(sites []Site) ([]byte, error) {
	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, len(sites))}
	for i, s := range sites {
		fc.Features[i] = feature{
			Type: "Feature",
			// GeoJSON orders coordinates lon, lat.
			Geometry:   geometry{Type: "Point", Coordinates: [2]float64{s.Lon, s.Lat}},
			Properties: map[string]string{"sensor": s.Sensor},
		}
	}
	return json.Marshal(fc)
}
