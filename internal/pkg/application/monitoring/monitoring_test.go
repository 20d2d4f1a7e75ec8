package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/roadwatch/ice-monitoring/internal/pkg/infrastructure/backend"
	"github.com/roadwatch/ice-monitoring/internal/pkg/infrastructure/feed"
	"github.com/roadwatch/ice-monitoring/pkg/types"
)

func TestStartLoadsSnapshotAndSubscribes(t *testing.T) {
	is, ctx, svc, _, feedClient := testSetup(t)

	err := svc.Start(ctx)
	is.NoErr(err)
	defer svc.Stop(ctx)

	is.Equal(4, len(feedClient.SubscribeCalls()))

	sensors := svc.Sensors(ctx)
	is.Equal(uint64(1), sensors.Count)
	is.Equal("ICE-0001", sensors.Data[0].SensorID)

	detections := svc.Detections(ctx)
	is.Equal(uint64(1), detections.Count)
	is.Equal("d-1", detections.Data[0].ID)
}

func TestStartTwiceFails(t *testing.T) {
	is, ctx, svc, _, _ := testSetup(t)

	is.NoErr(svc.Start(ctx))
	defer svc.Stop(ctx)

	err := svc.Start(ctx)
	is.True(err != nil)
}

func TestStopUnsubscribesAllTopics(t *testing.T) {
	is, ctx, svc, _, feedClient := testSetup(t)

	subs := []*feed.SubscriptionMock{}
	feedClient.SubscribeFunc = func(ctx context.Context, resource feed.Resource, event feed.EventKind, handler feed.ChangeHandler) (feed.Subscription, error) {
		sub := &feed.SubscriptionMock{
			ErrFunc:         func() <-chan error { return make(chan error) },
			UnsubscribeFunc: func(ctx context.Context) error { return nil },
		}
		subs = append(subs, sub)
		return sub, nil
	}

	is.NoErr(svc.Start(ctx))
	is.NoErr(svc.Stop(ctx))

	is.Equal(4, len(subs))
	for _, sub := range subs {
		is.Equal(1, len(sub.UnsubscribeCalls()))
	}

	// stopping an already stopped service is a no-op
	is.NoErr(svc.Stop(ctx))
}

func TestDetectionInsertEventNotifiesListeners(t *testing.T) {
	is, ctx, svc, _, feedClient := testSetup(t)

	var notified []types.Detection
	svc.OnDetection(func(ctx context.Context, detection types.Detection) {
		notified = append(notified, detection)
	})

	is.NoErr(svc.Start(ctx))
	defer svc.Stop(ctx)

	handler := handlerFor(is, feedClient, feed.Detections, feed.EventInsert)
	handler(ctx, changeRecord(is, feed.Detections, feed.EventInsert, 7, types.Detection{
		ID:       "d-2",
		SensorID: "ICE-0001",
		Severity: types.SeverityHigh,
		Status:   types.DetectionActive,
	}))

	detections := svc.Detections(ctx)
	is.Equal(uint64(2), detections.Count)
	is.Equal("d-2", detections.Data[0].ID)

	is.Equal(1, len(notified))
	is.Equal("d-2", notified[0].ID)

	// a redelivery applies nothing and notifies no one
	handler(ctx, changeRecord(is, feed.Detections, feed.EventInsert, 7, types.Detection{ID: "d-2"}))
	is.Equal(1, len(notified))
}

func TestDetectionUpdateEventDoesNotNotifyListeners(t *testing.T) {
	is, ctx, svc, _, feedClient := testSetup(t)

	var notified int
	svc.OnDetection(func(ctx context.Context, detection types.Detection) {
		notified++
	})

	is.NoErr(svc.Start(ctx))
	defer svc.Stop(ctx)

	handler := handlerFor(is, feedClient, feed.Detections, feed.EventUpdate)
	handler(ctx, changeRecord(is, feed.Detections, feed.EventUpdate, 8, types.Detection{
		ID:     "d-1",
		Status: types.DetectionResolved,
	}))

	is.Equal(0, notified)
	is.Equal(types.DetectionResolved, svc.Detections(ctx).Data[0].Status)
}

func TestSensorUpdateEventUpdatesCache(t *testing.T) {
	is, ctx, svc, _, feedClient := testSetup(t)

	is.NoErr(svc.Start(ctx))
	defer svc.Stop(ctx)

	handler := handlerFor(is, feedClient, feed.Sensors, feed.EventUpdate)
	handler(ctx, changeRecord(is, feed.Sensors, feed.EventUpdate, 9, types.Sensor{
		ID:       "s-1",
		SensorID: "ICE-0001",
		Status:   types.SensorMaintenance,
	}))

	sensors := svc.Sensors(ctx)
	is.Equal(types.SensorMaintenance, sensors.Data[0].Status)
}

func TestMalformedChangeRecordIsIgnored(t *testing.T) {
	is, ctx, svc, _, feedClient := testSetup(t)

	is.NoErr(svc.Start(ctx))
	defer svc.Stop(ctx)

	handler := handlerFor(is, feedClient, feed.Detections, feed.EventInsert)
	handler(ctx, feed.ChangeRecord{
		Resource: feed.Detections,
		Event:    feed.EventInsert,
		Revision: 5,
		Record:   json.RawMessage(`{"detectedAt":"not a timestamp"}`),
	})

	is.Equal(uint64(1), svc.Detections(ctx).Count)
}

func TestAddDetectionValidatesSeverity(t *testing.T) {
	is, ctx, svc, storage, _ := testSetup(t)

	_, err := svc.AddDetection(ctx, types.Detection{SensorID: "ICE-0001", Severity: "catastrophic"})
	is.True(errors.Is(err, ErrInvalidSeverity))
	is.Equal(0, len(storage.AddDetectionCalls()))

	added, err := svc.AddDetection(ctx, types.Detection{SensorID: "ICE-0001", Severity: types.SeverityLow})
	is.NoErr(err)
	is.True(added.ID != "")
}

func TestSetSensorStatusMapsMissingSensor(t *testing.T) {
	is, ctx, svc, storage, _ := testSetup(t)

	storage.SetSensorStatusFunc = func(ctx context.Context, sensorID string, status types.SensorStatus, lastPing *time.Time) (types.Sensor, error) {
		return types.Sensor{}, backend.ErrNoRows
	}

	_, err := svc.SetSensorStatus(ctx, "ICE-9999", types.SensorOnline, nil)
	is.True(errors.Is(err, ErrSensorNotFound))

	_, err = svc.SetSensorStatus(ctx, "ICE-0001", "sleeping", nil)
	is.True(errors.Is(err, ErrInvalidStatus))
}

func TestSetDetectionStatusMapsMissingDetection(t *testing.T) {
	is, ctx, svc, storage, _ := testSetup(t)

	storage.SetDetectionStatusFunc = func(ctx context.Context, detectionID string, status types.DetectionStatus) (types.Detection, error) {
		return types.Detection{}, backend.ErrNoRows
	}

	_, err := svc.SetDetectionStatus(ctx, "d-404", types.DetectionResolved)
	is.True(errors.Is(err, ErrDetectionNotFound))
}

func TestClearDetectionsReloadsSnapshot(t *testing.T) {
	is, ctx, svc, storage, _ := testSetup(t)

	is.NoErr(svc.Start(ctx))
	defer svc.Stop(ctx)

	storage.QueryDetectionsFunc = func(ctx context.Context, conditions ...backend.ConditionFunc) (types.Collection[types.Detection], error) {
		return types.Collection[types.Detection]{}, nil
	}

	is.NoErr(svc.ClearDetections(ctx))
	is.Equal(1, len(storage.DeleteAllDetectionsCalls()))
	is.Equal(uint64(0), svc.Detections(ctx).Count)
}

func testSetup(t *testing.T) (*is.I, context.Context, SensorMonitoring, *StorageMock, *feed.ClientMock) {
	is := is.New(t)
	ctx := context.Background()

	storage := &StorageMock{
		AddSensorFunc: func(ctx context.Context, sensor types.Sensor) (types.Sensor, error) {
			return sensor, nil
		},
		SetSensorStatusFunc: func(ctx context.Context, sensorID string, status types.SensorStatus, lastPing *time.Time) (types.Sensor, error) {
			return types.Sensor{SensorID: sensorID, Status: status, LastPing: lastPing}, nil
		},
		QuerySensorsFunc: func(ctx context.Context, conditions ...backend.ConditionFunc) (types.Collection[types.Sensor], error) {
			return types.Collection[types.Sensor]{
				Data:       []types.Sensor{{ID: "s-1", SensorID: "ICE-0001", Status: types.SensorOnline}},
				Count:      1,
				TotalCount: 1,
			}, nil
		},
		AddDetectionFunc: func(ctx context.Context, detection types.Detection) (types.Detection, error) {
			return detection, nil
		},
		SetDetectionStatusFunc: func(ctx context.Context, detectionID string, status types.DetectionStatus) (types.Detection, error) {
			return types.Detection{ID: detectionID, Status: status}, nil
		},
		QueryDetectionsFunc: func(ctx context.Context, conditions ...backend.ConditionFunc) (types.Collection[types.Detection], error) {
			return types.Collection[types.Detection]{
				Data:       []types.Detection{{ID: "d-1", SensorID: "ICE-0001", Severity: types.SeverityMedium, Status: types.DetectionActive}},
				Count:      1,
				TotalCount: 1,
			}, nil
		},
		DeleteAllSensorsFunc:    func(ctx context.Context) error { return nil },
		DeleteAllDetectionsFunc: func(ctx context.Context) error { return nil },
	}

	feedClient := &feed.ClientMock{
		SubscribeFunc: func(ctx context.Context, resource feed.Resource, event feed.EventKind, handler feed.ChangeHandler) (feed.Subscription, error) {
			return &feed.SubscriptionMock{
				ErrFunc:         func() <-chan error { return make(chan error) },
				UnsubscribeFunc: func(ctx context.Context) error { return nil },
			}, nil
		},
	}

	return is, ctx, New(storage, feedClient, 50), storage, feedClient
}

func handlerFor(is *is.I, feedClient *feed.ClientMock, resource feed.Resource, event feed.EventKind) feed.ChangeHandler {
	for _, call := range feedClient.SubscribeCalls() {
		if call.Resource == resource && call.Event == event {
			return call.Handler
		}
	}

	is.Fail() // no subscription matched
	return nil
}

func changeRecord[T any](is *is.I, resource feed.Resource, event feed.EventKind, revision int64, record T) feed.ChangeRecord {
	body, err := json.Marshal(record)
	is.NoErr(err)

	return feed.ChangeRecord{
		Resource: resource,
		Event:    event,
		Revision: revision,
		Record:   body,
	}
}
