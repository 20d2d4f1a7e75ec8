package monitoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/roadwatch/ice-monitoring/pkg/types"
)

func TestInsertIsIdempotent(t *testing.T) {
	is := is.New(t)
	cache := NewViewCache(50)

	detection := newDetection("d-1", time.Now())

	is.True(cache.ApplyDetectionInsert(detection, 1))
	is.Equal(false, cache.ApplyDetectionInsert(detection, 2))

	is.Equal(1, len(cache.Detections()))
}

func TestUpdateOnUnknownIDIsDropped(t *testing.T) {
	is := is.New(t)
	cache := NewViewCache(50)

	is.True(cache.ApplyDetectionInsert(newDetection("d-1", time.Now()), 1))
	is.Equal(false, cache.ApplyDetectionUpdate(newDetection("d-2", time.Now()), 2))

	snapshot := cache.Detections()
	is.Equal(1, len(snapshot))
	is.Equal("d-1", snapshot[0].ID)
}

func TestSnapshotPreservesArrivalOrderNewestFirst(t *testing.T) {
	is := is.New(t)
	cache := NewViewCache(50)

	now := time.Now()

	// detection timestamps deliberately run counter to arrival order
	cache.ApplyDetectionInsert(newDetection("a", now), 1)
	cache.ApplyDetectionInsert(newDetection("b", now.Add(-2*time.Hour)), 2)
	cache.ApplyDetectionInsert(newDetection("c", now.Add(-1*time.Hour)), 3)

	snapshot := cache.Detections()
	is.Equal(3, len(snapshot))
	is.Equal("c", snapshot[0].ID)
	is.Equal("b", snapshot[1].ID)
	is.Equal("a", snapshot[2].ID)
}

func TestDetectionsAreBounded(t *testing.T) {
	is := is.New(t)
	cache := NewViewCache(3)

	for i := 0; i < 5; i++ {
		cache.ApplyDetectionInsert(newDetection(fmt.Sprintf("d-%d", i), time.Now()), int64(i+1))
	}

	snapshot := cache.Detections()
	is.Equal(3, len(snapshot))
	is.Equal("d-4", snapshot[0].ID)

	// an evicted id may arrive again without being treated as a duplicate
	is.True(cache.ApplyDetectionInsert(newDetection("d-0", time.Now()), 6))
}

func TestSnapshotIsADefensiveCopy(t *testing.T) {
	is := is.New(t)
	cache := NewViewCache(50)

	cache.ApplyDetectionInsert(newDetection("d-1", time.Now()), 1)

	snapshot := cache.Detections()
	snapshot[0].ID = "mutated"

	is.Equal("d-1", cache.Detections()[0].ID)
}

func TestUpdateReplacesRecordInPlace(t *testing.T) {
	is := is.New(t)
	cache := NewViewCache(50)

	cache.ApplyDetectionInsert(newDetection("d-1", time.Now()), 1)
	cache.ApplyDetectionInsert(newDetection("d-2", time.Now()), 2)

	updated := newDetection("d-1", time.Now())
	updated.Status = types.DetectionResolved

	is.True(cache.ApplyDetectionUpdate(updated, 3))

	snapshot := cache.Detections()
	is.Equal(2, len(snapshot))
	is.Equal("d-2", snapshot[0].ID)
	is.Equal("d-1", snapshot[1].ID)
	is.Equal(types.DetectionResolved, snapshot[1].Status)
}

func TestStaleRevisionIsDropped(t *testing.T) {
	is := is.New(t)
	cache := NewViewCache(50)

	detection := newDetection("d-1", time.Now())
	detection.Status = types.DetectionActive
	cache.ApplyDetectionInsert(detection, 10)

	stale := newDetection("d-1", time.Now())
	stale.Status = types.DetectionResolved

	is.Equal(false, cache.ApplyDetectionUpdate(stale, 9))
	is.Equal(types.DetectionActive, cache.Detections()[0].Status)

	is.True(cache.ApplyDetectionUpdate(stale, 11))
	is.Equal(types.DetectionResolved, cache.Detections()[0].Status)
}

func TestSensorInsertAndUpdate(t *testing.T) {
	is := is.New(t)
	cache := NewViewCache(50)

	sensor := types.Sensor{ID: "s-1", SensorID: "ICE-0001", Status: types.SensorOnline}

	is.True(cache.ApplySensorInsert(sensor, 1))
	is.Equal(false, cache.ApplySensorInsert(sensor, 2))

	sensor.Status = types.SensorMaintenance
	is.True(cache.ApplySensorUpdate(sensor, 3))

	sensors := cache.Sensors()
	is.Equal(1, len(sensors))
	is.Equal(types.SensorMaintenance, sensors[0].Status)

	unknown := types.Sensor{ID: "s-2", SensorID: "ICE-0002", Status: types.SensorOnline}
	is.Equal(false, cache.ApplySensorUpdate(unknown, 4))
	is.Equal(1, len(cache.Sensors()))
}

func TestReplaceSwapsSnapshot(t *testing.T) {
	is := is.New(t)
	cache := NewViewCache(2)

	cache.ApplyDetectionInsert(newDetection("old", time.Now()), 1)

	cache.Replace(
		[]types.Sensor{{ID: "s-1", SensorID: "ICE-0001", Status: types.SensorOnline}},
		[]types.Detection{newDetection("n-1", time.Now()), newDetection("n-2", time.Now()), newDetection("n-3", time.Now())},
	)

	snapshot := cache.Detections()
	is.Equal(2, len(snapshot))
	is.Equal("n-1", snapshot[0].ID)
	is.Equal(1, len(cache.Sensors()))

	// reloaded records carry no revision, so the next update always applies
	updated := newDetection("n-1", time.Now())
	updated.Status = types.DetectionInvestigating
	is.True(cache.ApplyDetectionUpdate(updated, 1))
}

func newDetection(id string, detectedAt time.Time) types.Detection {
	return types.Detection{
		ID:         id,
		SensorID:   "ICE-0001",
		Severity:   types.SeverityMedium,
		Status:     types.DetectionActive,
		DetectedAt: detectedAt,
	}
}
