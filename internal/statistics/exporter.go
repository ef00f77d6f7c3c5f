// Package statistics exports bot, voice channel and message statistics to
// InfluxDB.
package statistics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/mednis/medsbot/internal/storage"
)

var ErrNotConfigured = errors.New("no statistics database configured")

// PointWriter is the write side of an InfluxDB bucket.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Exporter writes points to the configured database. It is a no-op until
// Connect succeeds.
type Exporter struct {
	mu     sync.RWMutex
	client    influxdb2.Client
	writer    PointWriter
	lastWrite time.Time

	Now func() time.Time
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Connect opens a client for cfg and checks the server answers. The
// previous client, if any, is closed once the new one is in place.
func (e *Exporter) Connect(ctx context.Context, cfg storage.StatisticsSettings) error {
	if !cfg.Configured() {
		return ErrNotConfigured
	}
	client := influxdb2.NewClientWithOptions(cfg.Address, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPRequestTimeout(10))
	ok, err := client.Ping(ctx)
	if err == nil && !ok {
		err = fmt.Errorf("server at %s did not answer the ping", cfg.Address)
	}
	if err != nil {
		client.Close()
		return fmt.Errorf("couldn't reach the statistics database: %w", err)
	}

	e.mu.Lock()
	old := e.client
	e.client = client
	e.writer = client.WriteAPIBlocking(cfg.Org, cfg.Bucket)
	e.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// SetWriter replaces the destination, mainly for tests.
func (e *Exporter) SetWriter(w PointWriter) {
	e.mu.Lock()
	e.writer = w
	e.mu.Unlock()
}

func (e *Exporter) Enabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.writer != nil
}

func (e *Exporter) Write(ctx context.Context, points ...*write.Point) error {
	e.mu.RLock()
	w := e.writer
	e.mu.RUnlock()
	if w == nil || len(points) == 0 {
		return nil
	}
	if err := w.WritePoint(ctx, points...); err != nil {
		return err
	}
	e.mu.Lock()
	e.lastWrite = e.now()
	e.mu.Unlock()
	return nil
}

// LastWrite is when points were last written, zero if never.
func (e *Exporter) LastWrite() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastWrite
}

// Event writes a single point. Failures are logged, never returned, so
// callers on hot paths don't need to care whether statistics are on.
func (e *Exporter) Event(ctx context.Context, measurement string, tags map[string]string, fields map[string]any) {
	p := influxdb2.NewPoint(measurement, tags, fields, e.now())
	if err := e.Write(ctx, p); err != nil {
		log.Error("Failed to write data point", "measurement", measurement, "err", err)
	}
}

func (e *Exporter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		e.client.Close()
		e.client = nil
	}
	e.writer = nil
}
