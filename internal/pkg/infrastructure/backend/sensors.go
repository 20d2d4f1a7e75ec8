package backend

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/roadwatch/ice-monitoring/pkg/types"
)

func (s *Storage) AddSensor(ctx context.Context, sensor types.Sensor) (types.Sensor, error) {
	if sensor.SensorID == "" {
		return types.Sensor{}, ErrNoID
	}

	if sensor.ID == "" {
		sensor.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	sensor.CreatedOn = now
	sensor.ModifiedOn = now

	data, _ := json.Marshal(sensor)

	args := pgx.NamedArgs{
		"id":        sensor.ID,
		"sensor_id": sensor.SensorID,
		"status":    string(sensor.Status),
		"data":      string(data),
		"lat":       sensor.Location.Latitude,
		"lon":       sensor.Location.Longitude,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO sensors (id, sensor_id, status, data, location)
		VALUES (@id, @sensor_id, @status, @data, point(@lon,@lat))
	`, args)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return types.Sensor{}, ErrAlreadyExist
		}
		return types.Sensor{}, err
	}

	return sensor, nil
}

// SetSensorStatus updates status and last ping on an existing sensor. The
// stored data document is rewritten so the notify trigger carries the
// complete record.
func (s *Storage) SetSensorStatus(ctx context.Context, sensorID string, status types.SensorStatus, lastPing *time.Time) (types.Sensor, error) {
	result, err := s.QuerySensors(ctx, WithSensorID(sensorID))
	if err != nil {
		return types.Sensor{}, err
	}
	if result.Count != 1 {
		return types.Sensor{}, ErrNoRows
	}

	sensor := result.Data[0]
	sensor.Status = status
	if lastPing != nil {
		sensor.LastPing = lastPing
	}
	sensor.ModifiedOn = time.Now().UTC()

	data, _ := json.Marshal(sensor)

	args := pgx.NamedArgs{
		"sensor_id": sensorID,
		"status":    string(status),
		"data":      string(data),
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE sensors
		SET status = @status, data = @data, modified_on = CURRENT_TIMESTAMP
		WHERE sensor_id = @sensor_id
	`, args)
	if err != nil {
		return types.Sensor{}, err
	}
	if tag.RowsAffected() == 0 {
		return types.Sensor{}, ErrNoRows
	}

	return sensor, nil
}

func (s *Storage) QuerySensors(ctx context.Context, conditions ...ConditionFunc) (types.Collection[types.Sensor], error) {
	condition := newCondition(conditions...)

	query := `
		SELECT data, count(*) OVER () AS total_count
		FROM sensors
		` + condition.Where() + `
		ORDER BY sensor_id ASC
		` + condition.OffsetLimit()

	rows, err := s.pool.Query(ctx, query, condition.NamedArgs())
	if err != nil {
		return types.Collection[types.Sensor]{}, err
	}
	defer rows.Close()

	sensors := make([]types.Sensor, 0)
	var totalCount uint64

	for rows.Next() {
		var data json.RawMessage

		err := rows.Scan(&data, &totalCount)
		if err != nil {
			return types.Collection[types.Sensor]{}, err
		}

		var sensor types.Sensor
		err = json.Unmarshal(data, &sensor)
		if err != nil {
			return types.Collection[types.Sensor]{}, err
		}

		sensors = append(sensors, sensor)
	}

	return types.Collection[types.Sensor]{
		Data:       sensors,
		Count:      uint64(len(sensors)),
		Offset:     condition.Offset(),
		Limit:      condition.Limit(),
		TotalCount: totalCount,
	}, nil
}

// DeleteAllSensors clears the sensors resource. Bulk deletes bypass per row
// notifications, so callers are expected to reload their snapshots.
func (s *Storage) DeleteAllSensors(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM sensors")
	return err
}
