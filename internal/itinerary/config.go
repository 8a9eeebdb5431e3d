package itinerary

import "github.com/campusshuttle/planner/internal/config"

// Config holds the §6 boundary constants the itinerary builder needs.
type Config struct {
	ShortWalkThresholdM float64
	WalkOnlyThresholdM  float64
	WalkSpeedKPH        float64
	ImminentBusMinutes  int
}

func FromAppConfig(c *config.Config) Config {
	return Config{
		ShortWalkThresholdM: c.ShortWalkThresholdM,
		WalkOnlyThresholdM:  c.WalkOnlyThresholdM,
		WalkSpeedKPH:        c.WalkSpeedKPH,
		ImminentBusMinutes:  10,
	}
}

func (c Config) walkMinutes(meters float64) float64 {
	return meters / (c.WalkSpeedKPH * 1000 / 60)
}
