package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/roadwatch/ice-monitoring/internal/pkg/application/monitoring"
	"github.com/roadwatch/ice-monitoring/internal/pkg/application/validation"
	"github.com/roadwatch/ice-monitoring/internal/pkg/infrastructure/backend"
	"github.com/roadwatch/ice-monitoring/pkg/types"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ice-monitoring/api")

func RegisterHandlers(ctx context.Context, router *chi.Mux, svc monitoring.SensorMonitoring, harness validation.Harness) (*chi.Mux, error) {

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	log := logging.GetFromContext(ctx)

	router.Route("/api/v0", func(r chi.Router) {
		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", getSensorsHandler(log, svc))
			r.Post("/", createSensorHandler(log, svc))
			r.Patch("/{sensorID}", patchSensorHandler(log, svc))
		})

		r.Route("/detections", func(r chi.Router) {
			r.Get("/", getDetectionsHandler(log, svc))
			r.Post("/", createDetectionHandler(log, svc))
			r.Patch("/{detectionID}", patchDetectionHandler(log, svc))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Delete("/sensors", clearHandler(log, svc.ClearSensors, "clear-sensors"))
			r.Delete("/detections", clearHandler(log, svc.ClearDetections, "clear-detections"))
		})

		r.Route("/validation", func(r chi.Router) {
			r.Get("/", getValidationReportHandler(log, harness))
			r.Post("/", runValidationHandler(log, harness))
		})
	})

	return router, nil
}

func getSensorsHandler(log *slog.Logger, svc monitoring.SensorMonitoring) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-sensors")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		writeJSON(w, http.StatusOK, svc.Sensors(ctx))
	}
}

func createSensorHandler(log *slog.Logger, svc monitoring.SensorMonitoring) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "create-sensor")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		var sensor types.Sensor
		err = decode(r.Body, &sensor)
		if err != nil {
			requestLogger.Error("unable to decode request body", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		created, err := svc.AddSensor(ctx, sensor)
		if err != nil {
			requestLogger.Error("unable to create sensor", "err", err.Error())
			w.WriteHeader(statusFromError(err))
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

func patchSensorHandler(log *slog.Logger, svc monitoring.SensorMonitoring) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "patch-sensor")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		sensorID := chi.URLParam(r, "sensorID")

		patch := struct {
			Status   types.SensorStatus `json:"status"`
			LastPing *time.Time         `json:"lastPing,omitempty"`
		}{}

		err = decode(r.Body, &patch)
		if err != nil {
			requestLogger.Error("unable to decode request body", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		sensor, err := svc.SetSensorStatus(ctx, sensorID, patch.Status, patch.LastPing)
		if err != nil {
			requestLogger.Error("unable to update sensor", "sensor_id", sensorID, "err", err.Error())
			w.WriteHeader(statusFromError(err))
			return
		}

		writeJSON(w, http.StatusOK, sensor)
	}
}

func getDetectionsHandler(log *slog.Logger, svc monitoring.SensorMonitoring) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-detections")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		writeJSON(w, http.StatusOK, svc.Detections(ctx))
	}
}

func createDetectionHandler(log *slog.Logger, svc monitoring.SensorMonitoring) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "create-detection")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		var detection types.Detection
		err = decode(r.Body, &detection)
		if err != nil {
			requestLogger.Error("unable to decode request body", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		created, err := svc.AddDetection(ctx, detection)
		if err != nil {
			requestLogger.Error("unable to create detection", "err", err.Error())
			w.WriteHeader(statusFromError(err))
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

func patchDetectionHandler(log *slog.Logger, svc monitoring.SensorMonitoring) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "patch-detection")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		detectionID := chi.URLParam(r, "detectionID")

		patch := struct {
			Status types.DetectionStatus `json:"status"`
		}{}

		err = decode(r.Body, &patch)
		if err != nil {
			requestLogger.Error("unable to decode request body", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		detection, err := svc.SetDetectionStatus(ctx, detectionID, patch.Status)
		if err != nil {
			requestLogger.Error("unable to update detection", "detection_id", detectionID, "err", err.Error())
			w.WriteHeader(statusFromError(err))
			return
		}

		writeJSON(w, http.StatusOK, detection)
	}
}

func clearHandler(log *slog.Logger, clear func(ctx context.Context) error, spanName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), spanName)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		err = clear(ctx)
		if err != nil {
			requestLogger.Error("bulk clear failed", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func getValidationReportHandler(log *slog.Logger, harness validation.Harness) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		_, span := tracer.Start(r.Context(), "get-validation-report")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		writeJSON(w, http.StatusOK, harness.Report())
	}
}

func runValidationHandler(log *slog.Logger, harness validation.Harness) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "run-validation")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		if harness.Running() {
			w.WriteHeader(http.StatusConflict)
			return
		}

		// the suite outlives the request
		go func(runCtx context.Context) {
			_, runErr := harness.Run(runCtx)
			if runErr != nil && !errors.Is(runErr, validation.ErrAlreadyRunning) {
				requestLogger.Error("validation suite run failed", "err", runErr.Error())
			}
		}(context.WithoutCancel(ctx))

		writeJSON(w, http.StatusAccepted, harness.Report())
	}
}

func decode(r io.Reader, v any) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(b)
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, backend.ErrAlreadyExist):
		return http.StatusConflict
	case errors.Is(err, monitoring.ErrSensorNotFound), errors.Is(err, monitoring.ErrDetectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, monitoring.ErrInvalidStatus), errors.Is(err, monitoring.ErrInvalidSeverity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
