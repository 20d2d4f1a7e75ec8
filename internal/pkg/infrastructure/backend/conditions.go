package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/roadwatch/ice-monitoring/pkg/types"
)

type ConditionFunc func(*Condition) *Condition

type Condition struct {
	ID       string
	SensorID string

	Severities        []types.Severity
	DetectionStatuses []types.DetectionStatus
	SensorStatuses    []types.SensorStatus

	DetectedAfter time.Time

	Bounds *types.Bounds

	offset *int
	limit  *int
}

func (c Condition) NamedArgs() pgx.NamedArgs {
	args := pgx.NamedArgs{}

	if c.ID != "" {
		args["id"] = c.ID
	}
	if c.SensorID != "" {
		args["sensor_id"] = c.SensorID
	}
	if len(c.Severities) > 0 {
		args["severities"] = c.Severities
	}
	if len(c.DetectionStatuses) > 0 {
		args["detection_statuses"] = c.DetectionStatuses
	}
	if len(c.SensorStatuses) > 0 {
		args["sensor_statuses"] = c.SensorStatuses
	}
	if !c.DetectedAfter.IsZero() {
		args["detected_after"] = c.DetectedAfter
	}
	if c.Bounds != nil {
		args["min_lon"] = c.Bounds.MinLon
		args["max_lon"] = c.Bounds.MaxLon
		args["min_lat"] = c.Bounds.MinLat
		args["max_lat"] = c.Bounds.MaxLat
	}
	if c.offset != nil {
		args["offset"] = *c.offset
	}
	if c.limit != nil {
		args["limit"] = *c.limit
	}

	return args
}

func (c Condition) Where() string {
	w := []string{}

	if c.ID != "" {
		w = append(w, "id = @id")
	}
	if c.SensorID != "" {
		w = append(w, "sensor_id = @sensor_id")
	}
	if len(c.Severities) > 0 {
		w = append(w, "severity = ANY(@severities)")
	}
	if len(c.DetectionStatuses) > 0 {
		w = append(w, "status = ANY(@detection_statuses)")
	}
	if len(c.SensorStatuses) > 0 {
		w = append(w, "status = ANY(@sensor_statuses)")
	}
	if !c.DetectedAfter.IsZero() {
		w = append(w, "detected_at > @detected_after")
	}
	if c.Bounds != nil {
		w = append(w, "location <@ box(point(@min_lon,@min_lat), point(@max_lon,@max_lat))")
	}

	if len(w) == 0 {
		return ""
	}

	return "WHERE " + strings.Join(w, " AND ")
}

func (c Condition) OffsetLimit() string {
	offsetLimit := ""

	if c.offset != nil {
		offsetLimit += "OFFSET @offset "
	}
	if c.limit != nil {
		offsetLimit += "LIMIT @limit "
	}

	return offsetLimit
}

func (c Condition) Offset() uint64 {
	if c.offset != nil {
		return uint64(*c.offset)
	}
	return 0
}

func (c Condition) Limit() uint64 {
	if c.limit != nil {
		return uint64(*c.limit)
	}
	return 0
}

func WithID(id string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.ID = id
		return c
	}
}

func WithSensorID(sensorID string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.SensorID = sensorID
		return c
	}
}

func WithSeverities(severities ...types.Severity) ConditionFunc {
	return func(c *Condition) *Condition {
		c.Severities = severities
		return c
	}
}

func WithDetectionStatuses(statuses ...types.DetectionStatus) ConditionFunc {
	return func(c *Condition) *Condition {
		c.DetectionStatuses = statuses
		return c
	}
}

func WithSensorStatuses(statuses ...types.SensorStatus) ConditionFunc {
	return func(c *Condition) *Condition {
		c.SensorStatuses = statuses
		return c
	}
}

func WithDetectedAfter(ts time.Time) ConditionFunc {
	return func(c *Condition) *Condition {
		c.DetectedAfter = ts
		return c
	}
}

func WithBounds(b types.Bounds) ConditionFunc {
	return func(c *Condition) *Condition {
		c.Bounds = &b
		return c
	}
}

func WithOffset(offset int) ConditionFunc {
	return func(c *Condition) *Condition {
		c.offset = &offset
		return c
	}
}

func WithLimit(limit int) ConditionFunc {
	return func(c *Condition) *Condition {
		c.limit = &limit
		return c
	}
}

func newCondition(conditions ...ConditionFunc) *Condition {
	c := &Condition{}
	for _, condition := range conditions {
		c = condition(c)
	}
	return c
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s", c.Where(), c.OffsetLimit())
}
