package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/matryer/is"
	"github.com/roadwatch/ice-monitoring/internal/pkg/application/monitoring"
	"github.com/roadwatch/ice-monitoring/internal/pkg/application/validation"
	"github.com/roadwatch/ice-monitoring/internal/pkg/infrastructure/backend"
	"github.com/roadwatch/ice-monitoring/internal/pkg/infrastructure/feed"
	"github.com/roadwatch/ice-monitoring/pkg/types"
)

func TestHealthEndpointReturnsNoContent(t *testing.T) {
	is, server, _, _ := testSetup(t)
	defer server.Close()

	resp, _ := testRequest(is, http.MethodGet, server.URL+"/health", nil)
	is.Equal(http.StatusNoContent, resp.StatusCode)
}

func TestGetSensorsReturnsSnapshot(t *testing.T) {
	is, server, _, _ := testSetup(t)
	defer server.Close()

	resp, body := testRequest(is, http.MethodGet, server.URL+"/api/v0/sensors", nil)
	is.Equal(http.StatusOK, resp.StatusCode)
	is.Equal("application/json", resp.Header.Get("Content-Type"))

	var sensors types.Collection[types.Sensor]
	is.NoErr(json.Unmarshal(body, &sensors))
	is.Equal(uint64(1), sensors.Count)
	is.Equal("ICE-0001", sensors.Data[0].SensorID)
}

func TestCreateSensor(t *testing.T) {
	is, server, _, _ := testSetup(t)
	defer server.Close()

	resp, body := testRequest(is, http.MethodPost, server.URL+"/api/v0/sensors",
		bytes.NewBufferString(`{"sensorID":"ICE-0002","name":"E6 bridge north"}`))
	is.Equal(http.StatusCreated, resp.StatusCode)

	var created types.Sensor
	is.NoErr(json.Unmarshal(body, &created))
	is.Equal("ICE-0002", created.SensorID)
	is.Equal(types.SensorOffline, created.Status)
}

func TestCreateSensorConflict(t *testing.T) {
	is, server, storage, _ := testSetup(t)
	defer server.Close()

	storage.AddSensorFunc = func(ctx context.Context, sensor types.Sensor) (types.Sensor, error) {
		return types.Sensor{}, backend.ErrAlreadyExist
	}

	resp, _ := testRequest(is, http.MethodPost, server.URL+"/api/v0/sensors",
		bytes.NewBufferString(`{"sensorID":"ICE-0001"}`))
	is.Equal(http.StatusConflict, resp.StatusCode)
}

func TestCreateSensorRejectsMalformedBody(t *testing.T) {
	is, server, _, _ := testSetup(t)
	defer server.Close()

	resp, _ := testRequest(is, http.MethodPost, server.URL+"/api/v0/sensors",
		bytes.NewBufferString(`{"sensorID":`))
	is.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestBackendFailureReturnsServerError(t *testing.T) {
	is, server, storage, _ := testSetup(t)
	defer server.Close()

	storage.AddDetectionFunc = func(ctx context.Context, detection types.Detection) (types.Detection, error) {
		return types.Detection{}, errors.New("connection refused")
	}

	resp, _ := testRequest(is, http.MethodPost, server.URL+"/api/v0/detections",
		bytes.NewBufferString(`{"sensorID":"ICE-0001","severity":"high"}`))
	is.Equal(http.StatusInternalServerError, resp.StatusCode)
}

func TestPatchUnknownSensorReturnsNotFound(t *testing.T) {
	is, server, storage, _ := testSetup(t)
	defer server.Close()

	storage.SetSensorStatusFunc = func(ctx context.Context, sensorID string, status types.SensorStatus, lastPing *time.Time) (types.Sensor, error) {
		return types.Sensor{}, backend.ErrNoRows
	}

	resp, _ := testRequest(is, http.MethodPatch, server.URL+"/api/v0/sensors/ICE-9999",
		bytes.NewBufferString(`{"status":"online"}`))
	is.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestPatchSensorRejectsUnknownStatus(t *testing.T) {
	is, server, _, _ := testSetup(t)
	defer server.Close()

	resp, _ := testRequest(is, http.MethodPatch, server.URL+"/api/v0/sensors/ICE-0001",
		bytes.NewBufferString(`{"status":"sleeping"}`))
	is.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestCreateDetectionRejectsUnknownSeverity(t *testing.T) {
	is, server, _, _ := testSetup(t)
	defer server.Close()

	resp, _ := testRequest(is, http.MethodPost, server.URL+"/api/v0/detections",
		bytes.NewBufferString(`{"sensorID":"ICE-0001","severity":"catastrophic"}`))
	is.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestPatchDetectionStatus(t *testing.T) {
	is, server, _, _ := testSetup(t)
	defer server.Close()

	resp, body := testRequest(is, http.MethodPatch, server.URL+"/api/v0/detections/d-1",
		bytes.NewBufferString(`{"status":"resolved"}`))
	is.Equal(http.StatusOK, resp.StatusCode)

	var detection types.Detection
	is.NoErr(json.Unmarshal(body, &detection))
	is.Equal(types.DetectionResolved, detection.Status)
}

func TestAdminClearDetections(t *testing.T) {
	is, server, storage, _ := testSetup(t)
	defer server.Close()

	resp, _ := testRequest(is, http.MethodDelete, server.URL+"/api/v0/admin/detections", nil)
	is.Equal(http.StatusNoContent, resp.StatusCode)
	is.Equal(1, len(storage.DeleteAllDetectionsCalls()))
}

func TestGetValidationReport(t *testing.T) {
	is, server, _, harness := testSetup(t)
	defer server.Close()

	harness.report = validation.Report{
		ResponseTime:   validation.Verdict{Status: validation.StatusPassed},
		Reliability:    validation.Verdict{Status: validation.StatusPassed},
		Resubscription: validation.Verdict{Status: validation.StatusPassed},
		Overall:        string(validation.StatusPassed),
	}

	resp, body := testRequest(is, http.MethodGet, server.URL+"/api/v0/validation", nil)
	is.Equal(http.StatusOK, resp.StatusCode)

	var report validation.Report
	is.NoErr(json.Unmarshal(body, &report))
	is.Equal(string(validation.StatusPassed), report.Overall)
}

func TestRunValidationIsAccepted(t *testing.T) {
	is, server, _, harness := testSetup(t)
	defer server.Close()

	resp, _ := testRequest(is, http.MethodPost, server.URL+"/api/v0/validation", nil)
	is.Equal(http.StatusAccepted, resp.StatusCode)

	<-harness.ran
}

func TestRunValidationConflictsWhileRunning(t *testing.T) {
	is, server, _, harness := testSetup(t)
	defer server.Close()

	harness.running = true

	resp, _ := testRequest(is, http.MethodPost, server.URL+"/api/v0/validation", nil)
	is.Equal(http.StatusConflict, resp.StatusCode)
}

func testSetup(t *testing.T) (*is.I, *httptest.Server, *monitoring.StorageMock, *harnessStub) {
	is := is.New(t)
	ctx := context.Background()

	storage := &monitoring.StorageMock{
		AddSensorFunc: func(ctx context.Context, sensor types.Sensor) (types.Sensor, error) {
			if sensor.ID == "" {
				sensor.ID = "s-created"
			}
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
			return types.Collection[types.Detection]{}, nil
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

	svc := monitoring.New(storage, feedClient, 50)
	is.NoErr(svc.Start(ctx))
	t.Cleanup(func() { svc.Stop(ctx) })

	harness := &harnessStub{ran: make(chan struct{})}

	r, err := RegisterHandlers(ctx, chi.NewRouter(), svc, harness)
	is.NoErr(err)

	return is, httptest.NewServer(r), storage, harness
}

func testRequest(is *is.I, method, url string, body io.Reader) (*http.Response, []byte) {
	req, err := http.NewRequest(method, url, body)
	is.NoErr(err)

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	is.NoErr(err)

	return resp, respBody
}

type harnessStub struct {
	report  validation.Report
	running bool
	ran     chan struct{}
}

func (h *harnessStub) Run(ctx context.Context) (validation.Report, error) {
	close(h.ran)
	return h.report, nil
}

func (h *harnessStub) Report() validation.Report {
	return h.report
}

func (h *harnessStub) Running() bool {
	return h.running
}
