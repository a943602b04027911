package parameter

// Track geometry, world units
const (
	// LaneCount is the number of parallel lanes
	LaneCount = 3

	// LaneWidth is the distance between lane centers
	LaneWidth = 3.0

	// SpawnDistance is how far ahead of the player an entity appears
	SpawnDistance = 100.0

	// DespawnDistance is how far behind the player an entity is returned to its pool
	DespawnDistance = 10.0

	// FadeInDistance is the distance ahead at which an entity becomes fully opaque
	FadeInDistance = 80.0

	// FadeDistance is the distance behind the player where fade-out starts
	FadeDistance = 4.0

	// FadeBand is the distance over which a passed entity fades to zero
	FadeBand = 6.0

	// TrackSpeed is forward speed in world units per second, used for distance travelled
	TrackSpeed = 30.0
)

// Vehicle
const (
	// VehicleLaneChangeSpeed is the per-frame (60Hz) lerp factor toward the target lane
	VehicleLaneChangeSpeed = 0.1

	// VehicleStartLane is the lane the vehicle starts in
	VehicleStartLane = 1

	// VehicleFrameRate is the reference rate the lerp factor was tuned at
	VehicleFrameRate = 60.0
)
