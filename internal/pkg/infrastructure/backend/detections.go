package backend

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/roadwatch/ice-monitoring/pkg/types"
)

func (s *Storage) AddDetection(ctx context.Context, detection types.Detection) (types.Detection, error) {
	if detection.ID == "" {
		detection.ID = uuid.NewString()
	}
	if detection.Status == "" {
		detection.Status = types.DetectionActive
	}
	if detection.DetectedAt.IsZero() {
		detection.DetectedAt = time.Now().UTC()
	}

	now := time.Now().UTC()
	detection.CreatedOn = now
	detection.ModifiedOn = now

	data, _ := json.Marshal(detection)

	args := pgx.NamedArgs{
		"id":          detection.ID,
		"sensor_id":   detection.SensorID,
		"severity":    string(detection.Severity),
		"status":      string(detection.Status),
		"data":        string(data),
		"lat":         detection.Location.Latitude,
		"lon":         detection.Location.Longitude,
		"detected_at": detection.DetectedAt,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO ice_detections (id, sensor_id, severity, status, data, location, detected_at)
		VALUES (@id, @sensor_id, @severity, @status, @data, point(@lon,@lat), @detected_at)
	`, args)
	if err != nil {
		return types.Detection{}, err
	}

	return detection, nil
}

func (s *Storage) SetDetectionStatus(ctx context.Context, detectionID string, status types.DetectionStatus) (types.Detection, error) {
	result, err := s.QueryDetections(ctx, WithID(detectionID))
	if err != nil {
		return types.Detection{}, err
	}
	if result.Count != 1 {
		return types.Detection{}, ErrNoRows
	}

	detection := result.Data[0]
	detection.Status = status
	detection.ModifiedOn = time.Now().UTC()

	data, _ := json.Marshal(detection)

	args := pgx.NamedArgs{
		"id":     detectionID,
		"status": string(status),
		"data":   string(data),
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE ice_detections
		SET status = @status, data = @data, modified_on = CURRENT_TIMESTAMP
		WHERE id = @id
	`, args)
	if err != nil {
		return types.Detection{}, err
	}
	if tag.RowsAffected() == 0 {
		return types.Detection{}, ErrNoRows
	}

	return detection, nil
}

func (s *Storage) QueryDetections(ctx context.Context, conditions ...ConditionFunc) (types.Collection[types.Detection], error) {
	condition := newCondition(conditions...)

	query := `
		SELECT data, count(*) OVER () AS total_count
		FROM ice_detections
		` + condition.Where() + `
		ORDER BY detected_at DESC
		` + condition.OffsetLimit()

	rows, err := s.pool.Query(ctx, query, condition.NamedArgs())
	if err != nil {
		return types.Collection[types.Detection]{}, err
	}
	defer rows.Close()

	detections := make([]types.Detection, 0)
	var totalCount uint64

	for rows.Next() {
		var data json.RawMessage

		err := rows.Scan(&data, &totalCount)
		if err != nil {
			return types.Collection[types.Detection]{}, err
		}

		var detection types.Detection
		err = json.Unmarshal(data, &detection)
		if err != nil {
			return types.Collection[types.Detection]{}, err
		}

		detections = append(detections, detection)
	}

	return types.Collection[types.Detection]{
		Data:       detections,
		Count:      uint64(len(detections)),
		Offset:     condition.Offset(),
		Limit:      condition.Limit(),
		TotalCount: totalCount,
	}, nil
}

// DeleteAllDetections clears the ice_detections resource. Bulk deletes bypass
// per row notifications, so callers are expected to reload their snapshots.
func (s *Storage) DeleteAllDetections(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM ice_detections")
	return err
}
