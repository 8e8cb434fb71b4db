package event

import "math"

const (
	earthRadiusKm   = 6371.0
	defaultRadiusKm = 50.0
	// kmPerDegreeLat 纬度每度约 111km，用于 SQL 里先按矩形粗筛
	kmPerDegreeLat = 111.0
)

// haversineKm 两点球面距离
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	s := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Pow(math.Sin(dLon/2), 2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(s))
}

// boundingBox 覆盖半径 radiusKm 圆的经纬度矩形，靠近两极时经度不做限制
func boundingBox(lat, lon, radiusKm float64) (minLat, maxLat, minLon, maxLon float64, limitLon bool) {
	dLat := radiusKm / kmPerDegreeLat
	minLat, maxLat = lat-dLat, lat+dLat
	cos := math.Cos(lat * math.Pi / 180)
	if cos < 0.01 {
		return minLat, maxLat, 0, 0, false
	}
	dLon := radiusKm / (kmPerDegreeLat * cos)
	if dLon >= 180 {
		return minLat, maxLat, 0, 0, false
	}
	return minLat, maxLat, lon - dLon, lon + dLon, true
}
