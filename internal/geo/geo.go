package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.0

// Point is a labelled coordinate in decimal degrees.
type Point struct {
	ID  string  `json:"id"`
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Cluster groups nearby points under their mean position.
type Cluster struct {
	Lat     float64 `json:"latitude"`
	Lng     float64 `json:"longitude"`
	Members []Point `json:"members"`
}

// Size is the number of points in the cluster.
func (c Cluster) Size() int { return len(c.Members) }

// Valid reports whether lat/lng are within the WGS84 ranges.
func Valid(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180 &&
		!math.IsNaN(lat) && !math.IsNaN(lng)
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b Point) float64 {
	angle := s2.LatLngFromDegrees(a.Lat, a.Lng).Distance(s2.LatLngFromDegrees(b.Lat, b.Lng))
	return angle.Radians() * earthRadiusKm
}

// ClusterPoints greedily groups points: each unassigned point, in input order, seeds a
// cluster that absorbs every later unassigned point within radiusKm of the seed.
// Quadratic in len(points).
func ClusterPoints(points []Point, radiusKm float64) []Cluster {
	assigned := make([]bool, len(points))
	clusters := make([]Cluster, 0, len(points))

	for i, seed := range points {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		members := []Point{seed}
		for j := i + 1; j < len(points); j++ {
			if assigned[j] {
				continue
			}
			if Distance(seed, points[j]) <= radiusKm {
				assigned[j] = true
				members = append(members, points[j])
			}
		}
		clusters = append(clusters, newCluster(members))
	}
	return clusters
}

func newCluster(members []Point) Cluster {
	var lat, lng float64
	for _, p := range members {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(members))
	return Cluster{Lat: lat / n, Lng: lng / n, Members: members}
}
