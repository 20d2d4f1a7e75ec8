package monitoring

import (
	"slices"
	"sync"

	"github.com/roadwatch/ice-monitoring/pkg/types"
)

// DefaultMaxDetections bounds the detections snapshot to the most recent
// entries, matching the initial load convention.
const DefaultMaxDetections = 50

// ViewCache is the eventually consistent local replica of the two backend
// collections. It is never the source of truth: every record reflects the
// most recent event this client has seen for that id. Detections keep strict
// arrival order, newest first, and are never re-sorted by detection time.
type ViewCache struct {
	mu sync.RWMutex

	detections []types.Detection

	// revisions double as presence sets for the idempotent insert guard.
	// A zero stored revision skips the regression check, since reloads from
	// snapshot queries carry no commit revision.
	detectionRevisions map[string]int64

	sensors         map[string]types.Sensor
	sensorRevisions map[string]int64

	maxDetections int
}

func NewViewCache(maxDetections int) *ViewCache {
	if maxDetections <= 0 {
		maxDetections = DefaultMaxDetections
	}

	return &ViewCache{
		detections:         make([]types.Detection, 0, maxDetections),
		detectionRevisions: map[string]int64{},
		sensors:            map[string]types.Sensor{},
		sensorRevisions:    map[string]int64{},
		maxDetections:      maxDetections,
	}
}

// ApplyDetectionInsert prepends the detection. Applying a record id that is
// already present is a no-op, so redelivered inserts never duplicate entries.
func (c *ViewCache) ApplyDetectionInsert(detection types.Detection, revision int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.detectionRevisions[detection.ID]; exists {
		return false
	}

	c.detections = append([]types.Detection{detection}, c.detections...)
	c.detectionRevisions[detection.ID] = revision

	if len(c.detections) > c.maxDetections {
		for _, evicted := range c.detections[c.maxDetections:] {
			delete(c.detectionRevisions, evicted.ID)
		}
		c.detections = c.detections[:c.maxDetections]
	}

	return true
}

// ApplyDetectionUpdate replaces the stored record with the same id, keeping
// its position. Updates for unknown ids are dropped, as are updates whose
// revision does not advance past the stored one.
func (c *ViewCache) ApplyDetectionUpdate(detection types.Detection, revision int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, exists := c.detectionRevisions[detection.ID]
	if !exists {
		return false
	}

	if revision != 0 && stored != 0 && revision <= stored {
		return false
	}

	i := slices.IndexFunc(c.detections, func(d types.Detection) bool {
		return d.ID == detection.ID
	})
	if i < 0 {
		return false
	}

	c.detections[i] = detection
	c.detectionRevisions[detection.ID] = revision

	return true
}

func (c *ViewCache) ApplySensorInsert(sensor types.Sensor, revision int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.sensorRevisions[sensor.ID]; exists {
		return false
	}

	c.sensors[sensor.ID] = sensor
	c.sensorRevisions[sensor.ID] = revision

	return true
}

func (c *ViewCache) ApplySensorUpdate(sensor types.Sensor, revision int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, exists := c.sensorRevisions[sensor.ID]
	if !exists {
		return false
	}

	if revision != 0 && stored != 0 && revision <= stored {
		return false
	}

	c.sensors[sensor.ID] = sensor
	c.sensorRevisions[sensor.ID] = revision

	return true
}

// Detections returns a defensive copy in arrival order, newest first.
func (c *ViewCache) Detections() []types.Detection {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.detections)
}

// Sensors returns a defensive copy, ordered by sensor identifier for stable
// output.
func (c *ViewCache) Sensors() []types.Sensor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sensors := make([]types.Sensor, 0, len(c.sensors))
	for _, sensor := range c.sensors {
		sensors = append(sensors, sensor)
	}

	slices.SortFunc(sensors, func(a, b types.Sensor) int {
		if a.SensorID < b.SensorID {
			return -1
		}
		if a.SensorID > b.SensorID {
			return 1
		}
		return 0
	})

	return sensors
}

// Replace swaps the entire cached state for a freshly loaded snapshot. Used
// on startup, after resubscribe gap fills and after bulk clears.
func (c *ViewCache) Replace(sensors []types.Sensor, detections []types.Detection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sensors = make(map[string]types.Sensor, len(sensors))
	c.sensorRevisions = make(map[string]int64, len(sensors))
	for _, sensor := range sensors {
		c.sensors[sensor.ID] = sensor
		c.sensorRevisions[sensor.ID] = 0
	}

	if len(detections) > c.maxDetections {
		detections = detections[:c.maxDetections]
	}

	c.detections = slices.Clone(detections)
	c.detectionRevisions = make(map[string]int64, len(detections))
	for _, detection := range detections {
		c.detectionRevisions[detection.ID] = 0
	}
}
