package pathfind

import "github.com/campusshuttle/planner/internal/config"

// Config holds the calibration constants of the table. Every field has
// the table's default and is overridable via internal/config at
// process start — the pathfinder itself never reads the environment.
type Config struct {
	WalkSpeedKPH         float64
	BusSpeedHeuristicKPH float64
	MaxWalkOriginM       float64
	MaxWalkDestM         float64
	TransferWalkLimitM   float64
	SearchHorizonMin     int

	InitialWalkReluctance float64
	FinalWalkReluctance   float64
	WalkReluctanceFactor  float64
	TransferPenaltyMin    float64
	BusBoardPenaltyMin    float64
	SameRouteHopPenalty   float64
	TransferWalkPenalty   float64
	DirectToDestBonus     float64

	NearStopColocationM float64
	MaxExploredStates    int
}

// FromAppConfig copies the overlapping fields out of the process-wide
// config.Config, so pathfind.Config stays a self-contained value the
// search can be constructed with directly in tests.
func FromAppConfig(c *config.Config) Config {
	return Config{
		WalkSpeedKPH:          c.WalkSpeedKPH,
		BusSpeedHeuristicKPH:  c.BusSpeedHeuristicKPH,
		MaxWalkOriginM:        c.MaxWalkOriginM,
		MaxWalkDestM:          c.MaxWalkDestM,
		TransferWalkLimitM:    c.TransferWalkLimitM,
		SearchHorizonMin:      c.SearchHorizonMin,
		InitialWalkReluctance: c.InitialWalkReluctance,
		FinalWalkReluctance:   c.FinalWalkReluctance,
		WalkReluctanceFactor:  c.WalkReluctanceFactor,
		TransferPenaltyMin:    c.TransferPenaltyMin,
		BusBoardPenaltyMin:    c.BusBoardPenaltyMin,
		SameRouteHopPenalty:   c.SameRouteHopPenalty,
		TransferWalkPenalty:   c.TransferWalkPenalty,
		DirectToDestBonus:     c.DirectToDestBonus,
		NearStopColocationM:   c.NearStopColocationM,
		MaxExploredStates:     c.MaxExploredStates,
	}
}

func (c Config) walkMinutes(meters float64) float64 {
	return meters / (c.WalkSpeedKPH * 1000 / 60)
}
