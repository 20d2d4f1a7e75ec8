package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/roadwatch/ice-monitoring/internal/pkg/application/alerts"
	"github.com/roadwatch/ice-monitoring/internal/pkg/application/monitoring"
	"github.com/roadwatch/ice-monitoring/internal/pkg/application/validation"
	"github.com/roadwatch/ice-monitoring/internal/pkg/infrastructure/backend"
	"github.com/roadwatch/ice-monitoring/internal/pkg/infrastructure/feed"
	"github.com/roadwatch/ice-monitoring/internal/pkg/infrastructure/router"
	"github.com/roadwatch/ice-monitoring/internal/pkg/presentation/api"
	"github.com/roadwatch/ice-monitoring/pkg/types"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	k8shandlers "github.com/diwise/service-chassis/pkg/infrastructure/net/http/handlers"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/servicerunner"
	"gopkg.in/yaml.v2"
)

const serviceName string = "ice-monitoring"

type flagType int
type flagMap map[flagType]string

const (
	listenAddress flagType = iota
	servicePort
	controlPort
	enableTracing

	configurationFile

	dbHost
	dbUser
	dbPassword
	dbPort
	dbName
	dbSSLMode

	maxCachedDetections
	bootstrapSchema
)

var (
	webserver  = servicerunner.WithHTTPServeMux[appConfig]
	listen     = servicerunner.WithListenAddr[appConfig]
	port       = servicerunner.WithPort[appConfig]
	pprof      = servicerunner.WithPPROF[appConfig]
	liveness   = servicerunner.WithK8SLivenessProbe[appConfig]
	readiness  = servicerunner.WithK8SReadinessProbes[appConfig]
	tracing    = servicerunner.WithTracing[appConfig]
	muxinit    = servicerunner.OnMuxInit[appConfig]
	oninit     = servicerunner.OnInit[appConfig]
	onstarting = servicerunner.OnStarting[appConfig]
	onshutdown = servicerunner.OnShutdown[appConfig]
)

type appConfig struct {
	Validation validation.Config `yaml:"validation"`
	Alerts     alerts.Config     `yaml:"alerts"`
}

func defaultFlags() flagMap {
	return flagMap{
		listenAddress: "0.0.0.0",
		servicePort:   "8080",
		controlPort:   "8000",
		enableTracing: "true",

		configurationFile: "/opt/roadwatch/config/config.yaml",

		dbHost:     "",
		dbUser:     "",
		dbPassword: "",
		dbPort:     "5432",
		dbName:     "roadwatch",
		dbSSLMode:  "disable",

		maxCachedDetections: "50",
		bootstrapSchema:     "false",
	}
}

func main() {
	ctx, flags := parseExternalConfig(context.Background(), defaultFlags())

	serviceVersion := buildinfo.SourceVersion()
	ctx, logger, cleanup := o11y.Init(ctx, serviceName, serviceVersion, "json")
	defer cleanup()

	var cfg *appConfig

	if cfgFile, err := os.Open(flags[configurationFile]); err == nil {
		cfg, err = parseExternalConfigFile(ctx, cfgFile)
		exitIf(err, logger, "could not parse configuration file")
	} else {
		cfg = &appConfig{Validation: validation.DefaultConfig()}
	}

	runner, err := initialize(ctx, flags, cfg)
	exitIf(err, logger, "failed to initialize service runner")

	err = runner.Run(ctx)
	exitIf(err, logger, "failed to start service runner")
}

func initialize(ctx context.Context, flags flagMap, cfg *appConfig) (servicerunner.Runner[appConfig], error) {
	log := logging.GetFromContext(ctx)

	dbConfig := backend.NewConfig(flags[dbHost], flags[dbUser], flags[dbPassword], flags[dbPort], flags[dbName], flags[dbSSLMode])

	storage, err := backend.New(ctx, dbConfig)
	exitIf(err, log, "could not connect to backend database")

	messenger, err := messaging.Initialize(ctx, messaging.LoadConfiguration(ctx, serviceName, log))
	exitIf(err, log, "failed to init messenger")

	feedClient := feed.New(dbConfig.ConnStr())

	probes := map[string]k8shandlers.ServiceProber{
		"rabbitmq": func(context.Context) (string, error) { return "ok", nil },
		"postgres": func(context.Context) (string, error) { return "ok", nil },
	}

	var svc monitoring.SensorMonitoring
	var harness validation.Harness

	_, runner := servicerunner.New(ctx, *cfg,
		webserver("control", listen(flags[listenAddress]), port(flags[controlPort]),
			pprof(), liveness(func() error { return nil }), readiness(probes),
		),
		webserver("public", listen(flags[listenAddress]), port(flags[servicePort]), tracing(flags[enableTracing] == "true"),
			muxinit(func(ctx context.Context, identifier string, port string, appCfg *appConfig, handler *http.ServeMux) error {
				r, err := api.RegisterHandlers(ctx, router.New(serviceName), svc, harness)
				if err != nil {
					return err
				}
				handler.Handle("/", r)
				return nil
			}),
		),
		oninit(func(ctx context.Context, ac *appConfig) error {
			log.Debug("initializing servicerunner")

			maxDetections, _ := strconv.Atoi(flags[maxCachedDetections])

			svc = monitoring.New(storage, feedClient, maxDetections)

			alertSvc := alerts.New(messenger, &ac.Alerts)
			svc.OnDetection(func(ctx context.Context, detection types.Detection) {
				alertSvc.HandleDetection(ctx, detection)
			})

			harness = validation.New(storage, feedClient, ac.Validation)

			return nil
		}),
		onstarting(func(ctx context.Context, appCfg *appConfig) (err error) {
			log.Debug("starting servicerunner")

			if flags[bootstrapSchema] == "true" {
				err = storage.Initialize(ctx)
				if err != nil {
					return
				}
			}

			messenger.Start()

			err = svc.Start(ctx)
			if err != nil {
				return
			}

			return nil
		}),
		onshutdown(func(ctx context.Context, appCfg *appConfig) error {
			log.Debug("shutdown servicerunner")

			svc.Stop(ctx)
			messenger.Close()
			storage.Close()

			return nil
		}),
	)

	return runner, nil
}

func parseExternalConfigFile(_ context.Context, cfgFile io.ReadCloser) (*appConfig, error) {
	defer cfgFile.Close()

	b, err := io.ReadAll(cfgFile)
	if err != nil {
		return nil, err
	}

	// a file without a validation section keeps the default timings
	cfg := &appConfig{Validation: validation.DefaultConfig()}
	err = yaml.Unmarshal(b, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseExternalConfig(ctx context.Context, flags flagMap) (context.Context, flagMap) {
	// Allow environment variables to override certain defaults
	envOrDef := env.GetVariableOrDefault

	flags[listenAddress] = envOrDef(ctx, "LISTEN_ADDRESS", flags[listenAddress])
	flags[controlPort] = envOrDef(ctx, "CONTROL_PORT", flags[controlPort])
	flags[servicePort] = envOrDef(ctx, "SERVICE_PORT", flags[servicePort])

	flags[dbHost] = envOrDef(ctx, "POSTGRES_HOST", flags[dbHost])
	flags[dbPort] = envOrDef(ctx, "POSTGRES_PORT", flags[dbPort])
	flags[dbName] = envOrDef(ctx, "POSTGRES_DBNAME", flags[dbName])
	flags[dbUser] = envOrDef(ctx, "POSTGRES_USER", flags[dbUser])
	flags[dbPassword] = envOrDef(ctx, "POSTGRES_PASSWORD", flags[dbPassword])
	flags[dbSSLMode] = envOrDef(ctx, "POSTGRES_SSLMODE", flags[dbSSLMode])
	flags[enableTracing] = envOrDef(ctx, "ENABLE_TRACING", flags[enableTracing])
	flags[maxCachedDetections] = envOrDef(ctx, "MAX_CACHED_DETECTIONS", flags[maxCachedDetections])
	flags[bootstrapSchema] = envOrDef(ctx, "BOOTSTRAP_SCHEMA", flags[bootstrapSchema])

	apply := func(f flagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	// Allow command line arguments to override defaults and environment variables
	flag.Func("config", "service configuration file", apply(configurationFile))
	flag.Func("bootstrap-schema", "create tables and notify triggers on startup", apply(bootstrapSchema))
	flag.Parse()

	return ctx, flags
}

func exitIf(err error, logger *slog.Logger, msg string, args ...any) {
	if err != nil {
		logger.With(args...).Error(msg, "err", err.Error())
		time.Sleep(2 * time.Second)
		os.Exit(1)
	}
}
