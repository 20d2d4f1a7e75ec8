package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNoRows       = errors.New("no rows in result set")
	ErrTooManyRows  = errors.New("too many rows in result set")
	ErrStoreFailed  = errors.New("could not store data")
	ErrNoID         = errors.New("data contains no id")
	ErrAlreadyExist = errors.New("record already exists")
)

type Config struct {
	host     string
	user     string
	password string
	port     string
	dbname   string
	sslmode  string
}

func (c Config) ConnStr() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.user, c.password, c.host, c.port, c.dbname, c.sslmode)
}

func NewConfig(host, user, password, port, dbname, sslmode string) Config {
	return Config{
		host:     host,
		user:     user,
		password: password,
		port:     port,
		dbname:   dbname,
		sslmode:  sslmode,
	}
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		host:     env.GetVariableOrDefault(ctx, "POSTGRES_HOST", ""),
		user:     env.GetVariableOrDefault(ctx, "POSTGRES_USER", ""),
		password: env.GetVariableOrDefault(ctx, "POSTGRES_PASSWORD", ""),
		port:     env.GetVariableOrDefault(ctx, "POSTGRES_PORT", "5432"),
		dbname:   env.GetVariableOrDefault(ctx, "POSTGRES_DBNAME", "roadwatch"),
		sslmode:  env.GetVariableOrDefault(ctx, "POSTGRES_SSLMODE", "disable"),
	}
}

func NewPool(ctx context.Context, config Config) (*pgxpool.Pool, error) {
	p, err := pgxpool.New(ctx, config.ConnStr())
	if err != nil {
		return nil, err
	}

	err = p.Ping(ctx)
	if err != nil {
		return nil, err
	}

	return p, nil
}

type Storage struct {
	pool *pgxpool.Pool
}

func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func New(ctx context.Context, config Config) (*Storage, error) {
	pool, err := NewPool(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

// Initialize creates the two resource tables and the notify triggers the
// change feed listens on. Everything is idempotent, so running it against
// an already provisioned backend is a no-op.
func (s *Storage) Initialize(ctx context.Context) error {
	return s.createTables(ctx)
}

func (s *Storage) createTables(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sensors (
			id 			TEXT 	NOT NULL,
			sensor_id	TEXT 	NOT NULL,
			status		TEXT	NOT NULL,
			data 		JSONB	NOT NULL,
			location 	POINT 	NULL,
			created_on  timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			modified_on	timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT pkey_sensors PRIMARY KEY (id),
			CONSTRAINT uniq_sensors_sensor_id UNIQUE (sensor_id)
		);

		CREATE TABLE IF NOT EXISTS ice_detections (
			id 			TEXT 	NOT NULL,
			sensor_id	TEXT 	NOT NULL,
			severity	TEXT	NOT NULL,
			status		TEXT	NOT NULL,
			data 		JSONB	NOT NULL,
			location 	POINT 	NULL,
			detected_at timestamp with time zone NOT NULL,
			created_on  timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			modified_on	timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT pkey_ice_detections PRIMARY KEY (id)
		);

		CREATE INDEX IF NOT EXISTS idx_ice_detections_detected_at ON ice_detections (detected_at DESC);
	`)
	if err != nil {
		tx.Rollback(ctx)
		return err
	}

	_, err = tx.Exec(ctx, `
		CREATE OR REPLACE FUNCTION notify_change() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify(
				TG_TABLE_NAME || '_' || lower(TG_OP),
				json_build_object(
					'resource', TG_TABLE_NAME,
					'event', lower(TG_OP),
					'revision', txid_current(),
					'record', NEW.data
				)::text);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;

		DROP TRIGGER IF EXISTS sensors_notify ON sensors;
		CREATE TRIGGER sensors_notify
			AFTER INSERT OR UPDATE ON sensors
			FOR EACH ROW EXECUTE FUNCTION notify_change();

		DROP TRIGGER IF EXISTS ice_detections_notify ON ice_detections;
		CREATE TRIGGER ice_detections_notify
			AFTER INSERT OR UPDATE ON ice_detections
			FOR EACH ROW EXECUTE FUNCTION notify_change();
	`)
	if err != nil {
		tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}
