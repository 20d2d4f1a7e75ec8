package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/roadwatch/ice-monitoring/pkg/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ice-monitoring-client")

// IceMonitoringClient lets sibling services read the cached snapshots and
// report detections over the service's REST API.
type IceMonitoringClient interface {
	Sensors(ctx context.Context) ([]types.Sensor, error)
	Detections(ctx context.Context) ([]types.Detection, error)
	ReportDetection(ctx context.Context, detection types.Detection) (types.Detection, error)
}

type icemonClient struct {
	url        string
	httpClient http.Client
}

func New(url string) IceMonitoringClient {
	return &icemonClient{
		url: url,
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *icemonClient) Sensors(ctx context.Context) ([]types.Sensor, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-sensors")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	var result types.Collection[types.Sensor]
	err = c.get(ctx, c.url+"/api/v0/sensors", &result)
	if err != nil {
		return nil, err
	}

	return result.Data, nil
}

func (c *icemonClient) Detections(ctx context.Context) ([]types.Detection, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-detections")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	var result types.Collection[types.Detection]
	err = c.get(ctx, c.url+"/api/v0/detections", &result)
	if err != nil {
		return nil, err
	}

	return result.Data, nil
}

func (c *icemonClient) ReportDetection(ctx context.Context, detection types.Detection) (types.Detection, error) {
	var err error
	ctx, span := tracer.Start(ctx, "report-detection")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body, err := json.Marshal(detection)
	if err != nil {
		return types.Detection{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/api/v0/detections", bytes.NewReader(body))
	if err != nil {
		err = fmt.Errorf("failed to create http request: %w", err)
		return types.Detection{}, err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to report detection: %w", err)
		return types.Detection{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		err = fmt.Errorf("request failed with status code %d", resp.StatusCode)
		return types.Detection{}, err
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read response body: %w", err)
		return types.Detection{}, err
	}

	var created types.Detection
	err = json.Unmarshal(respBody, &created)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal response body: %w", err)
		return types.Detection{}, err
	}

	return created, nil
}

func (c *icemonClient) get(ctx context.Context, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status code %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	err = json.Unmarshal(respBody, result)
	if err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return nil
}
