package parameter

import "time"

// Spawn Arbitration
const (
	// SpawnMinLaneInterval is the minimum gap between two spawns in one lane
	SpawnMinLaneInterval = 1000 * time.Millisecond

	// SpawnBucket quantizes beat times for the collision history
	SpawnBucket = 100 * time.Millisecond

	// SpawnGuardWindow rejects a spawn whose beat time lands this close to another in the same lane
	SpawnGuardWindow = 300 * time.Millisecond

	// SpawnForceCubeAfter forces a cube once this many obstacle beats happened in a row
	SpawnForceCubeAfter = 3

	// SpawnCubeChance is the base probability that a beat spawns a cube
	SpawnCubeChance = 0.7

	// SpawnBonusCubeChance is the probability of an extra cube in another lane
	SpawnBonusCubeChance = 0.3

	// SpawnFastBonusBoost is added to the bonus chance during fast tempo
	SpawnFastBonusBoost = 0.3

	// SpawnMaxObstaclesFast caps obstacles per beat during fast tempo
	SpawnMaxObstaclesFast = 2
)

// Scoring
const (
	// ScoreCubeValue is the base score of a collected cube before multiplier
	ScoreCubeValue = 100

	// ScoreMultiplierThreshold is progress required to double the multiplier
	ScoreMultiplierThreshold = 5

	// ScoreMaxMultiplier caps multiplier doubling
	ScoreMaxMultiplier = 8

	// ScoreCollisionPenalty is deducted on obstacle collision, clamped at zero
	ScoreCollisionPenalty = 500

	// ScoreCloseCallBonus is awarded when an obstacle passes close in the player lane
	ScoreCloseCallBonus = 50
)

// Collision
const (
	CollisionCollectDistance   = 2.0
	CollisionObstacleDistance  = 2.0
	CollisionCloseCallDistance = 4.0
	CollisionPortalDistance    = 4.0

	// CollisionCooldown suspends obstacle collision checks after a hit
	CollisionCooldown = 2000 * time.Millisecond
)

// Entity Pools
const (
	PoolCubePrefill     = 30
	PoolCubeCap         = 60
	PoolObstaclePrefill = 20
	PoolObstacleCap     = 40
	PoolPortalPrefill   = 1
	PoolPortalCap       = 2
	PoolBurstPrefill    = 16
	PoolBurstCap        = 32

	// BurstLife is how long a particle burst stays active after a hit
	BurstLife = 400 * time.Millisecond
)
