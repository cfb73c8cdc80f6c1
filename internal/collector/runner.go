package collector

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"soldexlogs/internal/decode"
	"soldexlogs/internal/metrics"
	"soldexlogs/internal/model"
	"soldexlogs/internal/registry"
	"soldexlogs/internal/storage"
	"soldexlogs/internal/stream"
)

// Conn is one open transport connection. ReadMessage blocks until a frame
// arrives, the deadline passes, or the connection is closed.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v interface{}) error
	SetReadDeadline(t time.Time) error
	Close() error
}

// Dialer opens a connection to the endpoint.
type Dialer func(ctx context.Context, url string) (Conn, error)

// Filter modes for the logs subscription.
const (
	FilterAll      = "all"
	FilterMentions = "mentions"
)

// RunConfig holds runtime settings for the collector.
type RunConfig struct {
	URL          string
	Filter       string
	Commitment   string
	BackoffBase  time.Duration
	BackoffMax   time.Duration
	HealthyAfter time.Duration
	AckTimeout   time.Duration
}

// Runner owns the subscription lifecycle: connect, subscribe, stream,
// reconnect with backoff. One Runner drives one logical stream; records
// reach the sink in arrival order.
type Runner struct {
	cfg      RunConfig
	dial     Dialer
	registry *registry.Registry
	sink     storage.Sink
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, dial Dialer, reg *registry.Registry, sink storage.Sink, m *metrics.Metrics, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	if cfg.Commitment == "" {
		cfg.Commitment = "processed"
	}
	if cfg.Filter == "" {
		cfg.Filter = FilterAll
	}
	if cfg.HealthyAfter <= 0 {
		cfg.HealthyAfter = 30 * time.Second
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = 10 * time.Second
	}
	return &Runner{
		cfg:      cfg,
		dial:     dial,
		registry: reg,
		sink:     sink,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Run executes the collection loop until ctx is cancelled. Session
// failures reconnect after a capped exponential backoff; the backoff
// resets once a session has streamed past the healthy threshold.
func (r *Runner) Run(ctx context.Context) error {
	if r.dial == nil {
		return fmt.Errorf("dialer is nil")
	}
	if r.registry == nil {
		return fmt.Errorf("registry is nil")
	}
	if r.sink == nil {
		return fmt.Errorf("sink is nil")
	}
	if r.cfg.URL == "" {
		return fmt.Errorf("endpoint url is required")
	}
	if r.cfg.Filter != FilterAll && r.cfg.Filter != FilterMentions {
		return fmt.Errorf("unknown filter mode: %s", r.cfg.Filter)
	}

	backoff := NewBackoff(r.cfg.BackoffBase, r.cfg.BackoffMax)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		started := r.now()
		err := r.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		r.metrics.Reconnects.Inc()
		if r.now().Sub(started) >= r.cfg.HealthyAfter {
			backoff.Reset()
		}

		delay := backoff.Next()
		r.logger.Warn("session ended",
			zap.Error(err),
			zap.Duration("session", r.now().Sub(started)),
			zap.Duration("backoff", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// session runs one connect-subscribe-stream cycle. Any returned error is
// session-fatal; per-message failures are handled inside handleFrame.
func (r *Runner) session(ctx context.Context) error {
	conn, err := r.dial(ctx, r.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial %s: %w", r.cfg.URL, err)
	}
	defer conn.Close()

	// Closing the connection is what unblocks a pending read on shutdown.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.WriteJSON(r.subscribeRequest()); err != nil {
		return fmt.Errorf("send subscribe: %w", err)
	}

	if err := conn.SetReadDeadline(r.now().Add(r.cfg.AckTimeout)); err != nil {
		return fmt.Errorf("set ack deadline: %w", err)
	}
	raw, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("await subscribe ack: %w", err)
	}
	ack, err := stream.ParseAck(raw)
	if err != nil {
		return err
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return fmt.Errorf("clear ack deadline: %w", err)
	}

	r.logger.Info("subscribed",
		zap.String("url", r.cfg.URL),
		zap.String("filter", r.cfg.Filter),
		zap.String("commitment", r.cfg.Commitment),
		zap.Uint64("subscription", ack.Subscription),
	)
	r.metrics.Connected.Set(1)
	defer r.metrics.Connected.Set(0)

	for {
		raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}
		r.handleFrame(raw)
	}
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

func (r *Runner) subscribeRequest() rpcRequest {
	var filter interface{} = "all"
	if r.cfg.Filter == FilterMentions {
		filter = map[string][]string{"mentions": r.registry.IDs()}
	}
	return rpcRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "logsSubscribe",
		Params: []interface{}{
			filter,
			map[string]string{"commitment": r.cfg.Commitment},
		},
	}
}

// handleFrame processes one inbound frame. Nothing in here is allowed to
// end the session: malformed frames, undecodable payloads, and sink
// failures are counted, logged, and dropped.
func (r *Runner) handleFrame(raw []byte) {
	notification, err := stream.Parse(raw)
	if errors.Is(err, stream.ErrNotNotification) {
		return
	}
	if err != nil {
		r.metrics.ParseFailures.Inc()
		r.logger.Warn("drop malformed frame", zap.Error(err))
		return
	}

	timestamp := r.now().UTC().Format(time.RFC3339Nano)
	for _, event := range notification.DataEvents() {
		name, ok := r.registry.Lookup(event.ProgramID)
		if !ok {
			continue
		}

		data, err := decode.Base64(event.Base64)
		if err != nil {
			r.metrics.DecodeFailures.Inc()
			r.logger.Warn("drop undecodable payload",
				zap.Error(err),
				zap.String("txid", event.Txid),
				zap.String("programid", event.ProgramID),
			)
			continue
		}

		record := model.DexRecord{
			HexSize:   len(data),
			Timestamp: timestamp,
			Txid:      event.Txid,
			ProgramID: event.ProgramID,
			DexName:   name,
			Base64:    event.Base64,
			Hex:       hex.EncodeToString(data),
		}

		if err := r.sink.Append(record); err != nil {
			r.metrics.SinkFailures.Inc()
			r.logger.Error("drop record, sink write failed",
				zap.Error(err),
				zap.String("txid", record.Txid),
				zap.String("dexname", record.DexName),
			)
			continue
		}

		r.metrics.RecordsWritten.Inc()
		r.logger.Info("captured",
			zap.String("dexname", record.DexName),
			zap.String("programid", record.ProgramID),
			zap.String("txid", record.Txid),
			zap.Int("hexsize", record.HexSize),
			zap.Uint64("slot", notification.Slot),
		)
	}
}
