package alerts

import (
	"encoding/json"
	"time"

	"github.com/roadwatch/ice-monitoring/pkg/types"
)

type DetectionAlert struct {
	Detection types.Detection `json:"detection"`
	Timestamp time.Time       `json:"timestamp"`
}

func (a *DetectionAlert) ContentType() string {
	return "application/json"
}
func (a *DetectionAlert) TopicName() string {
	return "ice-monitoring.detectionAlert"
}
func (a *DetectionAlert) Body() []byte {
	b, _ := json.Marshal(a)
	return b
}
