package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	// 上海人民广场到虹桥机场约 13km
	d := haversineKm(31.2304, 121.4737, 31.1979, 121.3363)
	assert.InDelta(t, 13.5, d, 1.0)
	assert.InDelta(t, 0, haversineKm(10, 20, 10, 20), 1e-9)
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	minLat, maxLat, minLon, maxLon, limit := boundingBox(31.23, 121.47, 50)
	assert.True(t, limit)
	assert.Less(t, minLat, 31.23-0.4)
	assert.Greater(t, maxLat, 31.23+0.4)
	assert.Less(t, minLon, 121.47-0.5)
	assert.Greater(t, maxLon, 121.47+0.5)

	_, _, _, _, limit = boundingBox(89.99, 0, 50)
	assert.False(t, limit)
}
