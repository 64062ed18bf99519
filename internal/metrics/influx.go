// Package metrics exports finished security sessions to InfluxDB.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"motion_security/internal/config"
	"motion_security/internal/logger"
	"motion_security/internal/models"
)

const (
	measurementSession = "security_session"
	unknownIdentity    = "unknown"

	defaultPingTimeout = 5 * time.Second
)

var (
	ErrDisabled         = errors.New("metrics: influxdb disabled")
	ErrConnectionFailed = errors.New("metrics: influxdb connection failed")
)

// Nop drops every session.
type Nop struct{}

func (Nop) SessionFinished(context.Context, models.SessionSummary) {}

// Influx writes one point per finished session through the batching,
// non-blocking write API.
type Influx struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	log      *logger.Logger
	done     chan struct{}
}

// Connect pings the server before returning. A disabled config yields
// ErrDisabled.
func Connect(ctx context.Context, cfg config.InfluxDBConfig, log *logger.Logger) (*Influx, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	log = logger.OrNop(log)

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	in := &Influx{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		log:      log,
		done:     make(chan struct{}),
	}
	go in.drainErrors()
	return in, nil
}

func (in *Influx) drainErrors() {
	errs := in.writeAPI.Errors()
	for {
		select {
		case <-in.done:
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			in.log.Warnw("influx_write_failed", "err", err)
		}
	}
}

func (in *Influx) SessionFinished(_ context.Context, s models.SessionSummary) {
	in.writeAPI.WritePoint(sessionPoint(s))
}

// Close flushes pending points and releases the client.
func (in *Influx) Close() {
	in.writeAPI.Flush()
	close(in.done)
	in.client.Close()
}

func sessionPoint(s models.SessionSummary) *write.Point {
	identity := s.Identity
	if identity == "" {
		identity = unknownIdentity
	}
	end := s.EndedAt
	if end.IsZero() {
		end = time.Now()
	}
	return write.NewPoint(
		measurementSession,
		map[string]string{
			"outcome":  s.Outcome,
			"identity": identity,
		},
		map[string]interface{}{
			"ordinal":    int64(s.Ordinal),
			"duration_s": end.Sub(s.StartedAt).Seconds(),
			"recognized": s.Identity != "",
		},
		end,
	)
}
