package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/google/uuid"
	"github.com/roadwatch/ice-monitoring/internal/pkg/infrastructure/backend"
	"github.com/roadwatch/ice-monitoring/internal/pkg/infrastructure/feed"
	"github.com/roadwatch/ice-monitoring/pkg/types"
)

var ErrSensorNotFound = fmt.Errorf("sensor not found")
var ErrDetectionNotFound = fmt.Errorf("detection not found")
var ErrInvalidStatus = fmt.Errorf("invalid status")
var ErrInvalidSeverity = fmt.Errorf("invalid severity")

type DetectionFunc func(ctx context.Context, detection types.Detection)

type SensorMonitoring interface {
	Sensors(ctx context.Context) types.Collection[types.Sensor]
	Detections(ctx context.Context) types.Collection[types.Detection]

	AddSensor(ctx context.Context, sensor types.Sensor) (types.Sensor, error)
	SetSensorStatus(ctx context.Context, sensorID string, status types.SensorStatus, lastPing *time.Time) (types.Sensor, error)
	AddDetection(ctx context.Context, detection types.Detection) (types.Detection, error)
	SetDetectionStatus(ctx context.Context, detectionID string, status types.DetectionStatus) (types.Detection, error)

	ClearSensors(ctx context.Context) error
	ClearDetections(ctx context.Context) error

	OnDetection(fn DetectionFunc)

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

//go:generate moq -rm -out storage_mock.go . Storage
type Storage interface {
	AddSensor(ctx context.Context, sensor types.Sensor) (types.Sensor, error)
	SetSensorStatus(ctx context.Context, sensorID string, status types.SensorStatus, lastPing *time.Time) (types.Sensor, error)
	QuerySensors(ctx context.Context, conditions ...backend.ConditionFunc) (types.Collection[types.Sensor], error)
	AddDetection(ctx context.Context, detection types.Detection) (types.Detection, error)
	SetDetectionStatus(ctx context.Context, detectionID string, status types.DetectionStatus) (types.Detection, error)
	QueryDetections(ctx context.Context, conditions ...backend.ConditionFunc) (types.Collection[types.Detection], error)
	DeleteAllSensors(ctx context.Context) error
	DeleteAllDetections(ctx context.Context) error
}

type service struct {
	storage Storage
	feed    feed.Client
	cache   *ViewCache

	mu        sync.Mutex
	subs      []feed.Subscription
	listeners []DetectionFunc
	stop      context.CancelFunc
	started   bool
}

func New(storage Storage, feedClient feed.Client, maxDetections int) SensorMonitoring {
	return &service{
		storage: storage,
		feed:    feedClient,
		cache:   NewViewCache(maxDetections),
	}
}

func (s *service) Sensors(ctx context.Context) types.Collection[types.Sensor] {
	sensors := s.cache.Sensors()
	return types.Collection[types.Sensor]{
		Data:       sensors,
		Count:      uint64(len(sensors)),
		TotalCount: uint64(len(sensors)),
	}
}

func (s *service) Detections(ctx context.Context) types.Collection[types.Detection] {
	detections := s.cache.Detections()
	return types.Collection[types.Detection]{
		Data:       detections,
		Count:      uint64(len(detections)),
		TotalCount: uint64(len(detections)),
	}
}

func (s *service) AddSensor(ctx context.Context, sensor types.Sensor) (types.Sensor, error) {
	if sensor.Status == "" {
		sensor.Status = types.SensorOffline
	}
	if !sensor.Status.IsValid() {
		return types.Sensor{}, ErrInvalidStatus
	}

	return s.storage.AddSensor(ctx, sensor)
}

func (s *service) SetSensorStatus(ctx context.Context, sensorID string, status types.SensorStatus, lastPing *time.Time) (types.Sensor, error) {
	if !status.IsValid() {
		return types.Sensor{}, ErrInvalidStatus
	}

	sensor, err := s.storage.SetSensorStatus(ctx, sensorID, status, lastPing)
	if err != nil {
		if errors.Is(err, backend.ErrNoRows) {
			return types.Sensor{}, ErrSensorNotFound
		}
		return types.Sensor{}, err
	}

	return sensor, nil
}

func (s *service) AddDetection(ctx context.Context, detection types.Detection) (types.Detection, error) {
	if !detection.Severity.IsValid() {
		return types.Detection{}, ErrInvalidSeverity
	}
	if detection.Status != "" && !detection.Status.IsValid() {
		return types.Detection{}, ErrInvalidStatus
	}
	if detection.ID == "" {
		detection.ID = uuid.NewString()
	}

	return s.storage.AddDetection(ctx, detection)
}

func (s *service) SetDetectionStatus(ctx context.Context, detectionID string, status types.DetectionStatus) (types.Detection, error) {
	if !status.IsValid() {
		return types.Detection{}, ErrInvalidStatus
	}

	detection, err := s.storage.SetDetectionStatus(ctx, detectionID, status)
	if err != nil {
		if errors.Is(err, backend.ErrNoRows) {
			return types.Detection{}, ErrDetectionNotFound
		}
		return types.Detection{}, err
	}

	return detection, nil
}

// ClearSensors performs the bulk clear and reloads the snapshot, since bulk
// deletes bypass per record change notifications.
func (s *service) ClearSensors(ctx context.Context) error {
	err := s.storage.DeleteAllSensors(ctx)
	if err != nil {
		return err
	}

	return s.reload(ctx)
}

func (s *service) ClearDetections(ctx context.Context) error {
	err := s.storage.DeleteAllDetections(ctx)
	if err != nil {
		return err
	}

	return s.reload(ctx)
}

// OnDetection registers a listener invoked for every detection insert applied
// to the cache. Registration is not safe after Start.
func (s *service) OnDetection(fn DetectionFunc) {
	s.listeners = append(s.listeners, fn)
}

// Start loads the initial snapshot and subscribes to all four change feed
// topics. If a subscription drops, it is re-established with exponential
// backoff followed by a snapshot reload to fill the gap.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("already started")
	}

	err := s.reload(ctx)
	if err != nil {
		return fmt.Errorf("could not load initial snapshot: %w", err)
	}

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.stop = cancel

	err = s.subscribe(watchCtx)
	if err != nil {
		cancel()
		s.unsubscribeLocked(ctx)
		return err
	}

	s.started = true

	return nil
}

func (s *service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.stop()
	s.unsubscribeLocked(ctx)
	s.started = false

	return nil
}

func (s *service) reload(ctx context.Context) error {
	sensors, err := s.storage.QuerySensors(ctx)
	if err != nil {
		return err
	}

	detections, err := s.storage.QueryDetections(ctx, backend.WithLimit(s.cache.maxDetections))
	if err != nil {
		return err
	}

	s.cache.Replace(sensors.Data, detections.Data)

	return nil
}

func (s *service) subscribe(ctx context.Context) error {
	topics := []struct {
		resource feed.Resource
		event    feed.EventKind
		handler  feed.ChangeHandler
	}{
		{feed.Sensors, feed.EventInsert, s.handleSensorChange},
		{feed.Sensors, feed.EventUpdate, s.handleSensorChange},
		{feed.Detections, feed.EventInsert, s.handleDetectionChange},
		{feed.Detections, feed.EventUpdate, s.handleDetectionChange},
	}

	for _, topic := range topics {
		sub, err := s.feed.Subscribe(ctx, topic.resource, topic.event, topic.handler)
		if err != nil {
			return fmt.Errorf("could not subscribe to %s: %w", feed.Channel(topic.resource, topic.event), err)
		}

		s.subs = append(s.subs, sub)

		go s.watch(ctx, sub, topic.resource, topic.event, topic.handler)
	}

	return nil
}

func (s *service) watch(ctx context.Context, sub feed.Subscription, resource feed.Resource, event feed.EventKind, handler feed.ChangeHandler) {
	log := logging.GetFromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case _, lost := <-sub.Err():
			if !lost {
				return
			}
		}

		log.Warn("resubscribing to change feed", "channel", feed.Channel(resource, event))

		resubscribe := func() error {
			fresh, err := s.feed.Subscribe(ctx, resource, event, handler)
			if err != nil {
				return err
			}
			sub = fresh
			return nil
		}

		err := backoff.Retry(resubscribe, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
		if err != nil {
			return
		}

		// events may have been committed while no subscription existed, so
		// refetch the snapshot to fill the gap
		err = s.reload(ctx)
		if err != nil {
			log.Error("snapshot reload after resubscribe failed", "err", err.Error())
		}

		s.mu.Lock()
		s.subs = append(s.subs, sub)
		s.mu.Unlock()
	}
}

func (s *service) unsubscribeLocked(ctx context.Context) {
	for _, sub := range s.subs {
		sub.Unsubscribe(ctx)
	}
	s.subs = nil
}

func (s *service) handleSensorChange(ctx context.Context, change feed.ChangeRecord) {
	log := logging.GetFromContext(ctx)

	var sensor types.Sensor
	err := json.Unmarshal(change.Record, &sensor)
	if err != nil {
		log.Error("failed to unmarshal sensor change record", "err", err.Error())
		return
	}

	if change.Event == feed.EventInsert {
		s.cache.ApplySensorInsert(sensor, change.Revision)
		return
	}

	s.cache.ApplySensorUpdate(sensor, change.Revision)
}

func (s *service) handleDetectionChange(ctx context.Context, change feed.ChangeRecord) {
	log := logging.GetFromContext(ctx)

	var detection types.Detection
	err := json.Unmarshal(change.Record, &detection)
	if err != nil {
		log.Error("failed to unmarshal detection change record", "err", err.Error())
		return
	}

	if change.Event == feed.EventInsert {
		if s.cache.ApplyDetectionInsert(detection, change.Revision) {
			for _, fn := range s.listeners {
				fn(ctx, detection)
			}
		}
		return
	}

	s.cache.ApplyDetectionUpdate(detection, change.Revision)
}
