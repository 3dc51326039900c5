package grid

// Events emitted on the bus during a cycle. They are delivered on the tick
// after emission by the dispatch system.

// CycleStarted is emitted when Regenerate resets the grid for a new cycle.
type CycleStarted struct {
	Cycle uint64
}

// TerrainGenerated is emitted once the tile table for a cycle is complete.
type TerrainGenerated struct {
	Cycle uint64
	Tiles int
	Grass int
	Water int
}

// PopulationCompleted carries the report of a finished cycle.
type PopulationCompleted struct {
	Report CycleReport
}

// CycleAbandoned is emitted when a cycle stops before entering the gate.
type CycleAbandoned struct {
	Cycle  uint64
	Reason string
}
