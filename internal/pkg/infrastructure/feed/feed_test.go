package feed

import (
	"testing"

	"github.com/matryer/is"
)

func TestChannelNaming(t *testing.T) {
	is := is.New(t)

	is.Equal("sensors_insert", Channel(Sensors, EventInsert))
	is.Equal("sensors_update", Channel(Sensors, EventUpdate))
	is.Equal("ice_detections_insert", Channel(Detections, EventInsert))
	is.Equal("ice_detections_update", Channel(Detections, EventUpdate))
}

func TestDecodeChangeRecord(t *testing.T) {
	is := is.New(t)

	payload := []byte(`{"resource":"ice_detections","event":"insert","revision":42,"record":{"id":"d-1","sensorID":"ICE-0001"}}`)

	change, err := DecodeChangeRecord(payload)
	is.NoErr(err)

	is.Equal(Detections, change.Resource)
	is.Equal(EventInsert, change.Event)
	is.Equal(int64(42), change.Revision)
	is.True(len(change.Record) > 0)
}

func TestDecodeChangeRecordRejectsMalformedPayload(t *testing.T) {
	is := is.New(t)

	_, err := DecodeChangeRecord([]byte(`{"resource":`))
	is.True(err != nil)
}
