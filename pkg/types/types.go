package types

import (
	"time"
)

type SensorStatus string

const (
	SensorOnline      SensorStatus = "online"
	SensorOffline     SensorStatus = "offline"
	SensorMaintenance SensorStatus = "maintenance"
)

func (s SensorStatus) IsValid() bool {
	switch s {
	case SensorOnline, SensorOffline, SensorMaintenance:
		return true
	}
	return false
}

type Sensor struct {
	ID       string       `json:"id"`
	SensorID string       `json:"sensorID"`
	Name     string       `json:"name,omitzero"`
	Location Location     `json:"location"`
	Status   SensorStatus `json:"status"`
	LastPing *time.Time   `json:"lastPing,omitempty"`

	CreatedOn  time.Time `json:"createdOn,omitzero"`
	ModifiedOn time.Time `json:"modifiedOn,omitzero"`
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type DetectionStatus string

const (
	DetectionActive        DetectionStatus = "active"
	DetectionInvestigating DetectionStatus = "investigating"
	DetectionResolved      DetectionStatus = "resolved"
)

func (s DetectionStatus) IsValid() bool {
	switch s {
	case DetectionActive, DetectionInvestigating, DetectionResolved:
		return true
	}
	return false
}

type Detection struct {
	ID            string          `json:"id"`
	SensorID      string          `json:"sensorID"`
	Location      Location        `json:"location"`
	Severity      Severity        `json:"severity"`
	Temperature   *float64        `json:"temperature,omitempty"`
	Humidity      *float64        `json:"humidity,omitempty"`
	RoadCondition string          `json:"roadCondition,omitzero"`
	Notes         string          `json:"notes,omitzero"`
	Status        DetectionStatus `json:"status"`
	DetectedAt    time.Time       `json:"detectedAt"`

	CreatedOn  time.Time `json:"createdOn,omitzero"`
	ModifiedOn time.Time `json:"modifiedOn,omitzero"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Collection[T any] struct {
	Data       []T    `json:"data"`
	Count      uint64 `json:"count"`
	Offset     uint64 `json:"offset"`
	Limit      uint64 `json:"limit"`
	TotalCount uint64 `json:"totalCount"`
}

type Bounds struct {
	MinLon float64
	MaxLon float64
	MinLat float64
	MaxLat float64
}
