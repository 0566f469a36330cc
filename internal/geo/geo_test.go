package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	paris := Point{Lat: 48.8566, Lng: 2.3522}
	london := Point{Lat: 51.5074, Lng: -0.1278}

	assert.InDelta(t, 343.5, Distance(paris, london), 1.0)
	assert.Equal(t, 0.0, Distance(paris, paris))
	assert.InDelta(t, Distance(paris, london), Distance(london, paris), 1e-9)
}

func TestClusterPoints(t *testing.T) {
	points := []Point{
		{ID: "a", Lat: 40.7128, Lng: -74.0060},
		{ID: "b", Lat: 40.7130, Lng: -74.0055},
		{ID: "c", Lat: 34.0522, Lng: -118.2437},
		{ID: "d", Lat: 40.7140, Lng: -74.0070},
	}

	clusters := ClusterPoints(points, 1)
	require.Len(t, clusters, 2)

	require.Equal(t, 3, clusters[0].Size())
	assert.Equal(t, "a", clusters[0].Members[0].ID)
	assert.Equal(t, "b", clusters[0].Members[1].ID)
	assert.Equal(t, "d", clusters[0].Members[2].ID)
	assert.InDelta(t, (40.7128+40.7130+40.7140)/3, clusters[0].Lat, 1e-9)

	require.Equal(t, 1, clusters[1].Size())
	assert.Equal(t, "c", clusters[1].Members[0].ID)
}

func TestClusterPoints_Empty(t *testing.T) {
	assert.Empty(t, ClusterPoints(nil, 5))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(0, 0))
	assert.False(t, Valid(91, 0))
	assert.False(t, Valid(0, -181))
}

func TestDistance_Antipodes(t *testing.T) {
	north := Point{Lat: 90, Lng: 0}
	south := Point{Lat: -90, Lng: 0}

	assert.InDelta(t, 20015.1, Distance(north, south), 0.1)
}
