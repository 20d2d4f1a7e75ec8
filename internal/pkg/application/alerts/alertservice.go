package alerts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/roadwatch/ice-monitoring/pkg/types"
	"golang.org/x/sys/unix"
	yaml "gopkg.in/yaml.v2"
)

// AlertService fans high and critical detections out to downstream
// consumers: an AMQP topic for sibling services and cloudevents webhooks for
// external subscribers. Delivery failures are reported but never fatal.
type AlertService interface {
	HandleDetection(ctx context.Context, detection types.Detection) error
}

type alertSvc struct {
	messenger   messaging.MsgContext
	subscribers []SubscriberConfig
}

func New(messenger messaging.MsgContext, cfg *Config) AlertService {
	svc := &alertSvc{
		messenger: messenger,
	}

	if cfg != nil {
		svc.subscribers = cfg.Subscribers
	}

	return svc
}

func (svc *alertSvc) HandleDetection(ctx context.Context, detection types.Detection) error {
	if detection.Severity != types.SeverityHigh && detection.Severity != types.SeverityCritical {
		return nil
	}

	log := logging.GetFromContext(ctx)

	err := svc.messenger.PublishOnTopic(ctx, &DetectionAlert{
		Detection: detection,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Error("failed to publish detection alert", "detection_id", detection.ID, "err", err.Error())
	}

	webhookErr := svc.sendWebhooks(ctx, detection)
	if webhookErr != nil {
		err = errors.Join(err, webhookErr)
	}

	return err
}

func (svc *alertSvc) sendWebhooks(ctx context.Context, detection types.Detection) error {
	if len(svc.subscribers) == 0 {
		return nil
	}

	c, err := cloudevents.NewClientHTTP()
	if err != nil {
		return err
	}

	event := cloudevents.NewEvent()
	event.SetID(fmt.Sprintf("%s:%d", detection.ID, detection.DetectedAt.Unix()))
	event.SetTime(detection.DetectedAt)
	event.SetSource("github.com/roadwatch/ice-monitoring")
	event.SetType("roadwatch.iceDetection")

	err = event.SetData(cloudevents.ApplicationJSON, detection)
	if err != nil {
		return err
	}

	log := logging.GetFromContext(ctx)

	for _, s := range svc.subscribers {
		ctxWithTarget := cloudevents.ContextWithTarget(ctx, s.Endpoint)

		result := c.Send(ctxWithTarget, event)
		if cloudevents.IsUndelivered(result) || errors.Is(result, unix.ECONNREFUSED) {
			log.Error("failed to send detection alert", "endpoint", s.Endpoint, "err", result.Error())
			err = errors.Join(err, result)
		}
	}

	return err
}

type SubscriberConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type Config struct {
	Subscribers []SubscriberConfig `yaml:"subscribers"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
