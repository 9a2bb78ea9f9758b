// Package notify delivers push notifications through the Expo push
// gateway. Sends are queued and dispatched asynchronously so request
// handlers never block on the gateway.
package notify

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"encoding/json/v2"
)

// message is a single queued push notification.
type message struct {
	Token string
	Title string
	Body  string
}

// pushPayload is the Expo push API request body.
type pushPayload struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"`
}

// Options configures the dispatcher.
type Options struct {
	GatewayURL string        // Expo push endpoint
	QueueSize  int           // Bounds the dispatch queue (default: 256)
	Timeout    time.Duration // Per-request timeout (default: 10s)
	Logger     *slog.Logger
}

// Dispatcher queues push notifications and delivers them from a single
// background worker. Push never blocks; when the queue is full the
// notification is dropped and logged.
type Dispatcher struct {
	gatewayURL string
	client     *http.Client
	queue      chan message
	logger     *slog.Logger
	wg         sync.WaitGroup

	// Shutdown state - protected by shutdownMu
	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewDispatcher creates a new push dispatcher.
func NewDispatcher(opts Options) *Dispatcher {
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Dispatcher{
		gatewayURL: opts.GatewayURL,
		client:     &http.Client{Timeout: timeout},
		queue:      make(chan message, queueSize),
		logger:     opts.Logger,
	}
}

// Start begins the delivery loop.
// This should be called once at server startup in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	defer d.wg.Done()

	d.logger.Info("push dispatcher starting", "gateway", d.gatewayURL)

	for {
		select {
		case msg, ok := <-d.queue:
			if !ok {
				d.logger.Info("push dispatcher stopping, queue closed")
				return
			}
			d.deliver(ctx, msg)
		case <-ctx.Done():
			d.logger.Info("push dispatcher stopping")
			return
		}
	}
}

// Shutdown stops accepting new notifications, drains the queue, and
// waits for the worker to exit.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.logger.Info("push dispatcher shutdown initiated")

	// Mark as shutdown AND close channel atomically while holding lock.
	// This prevents race with Push() which holds read lock during send.
	d.shutdownMu.Lock()
	d.shutdown = true
	close(d.queue)
	d.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		for msg := range d.queue {
			d.deliver(ctx, msg)
		}
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("push queue drained")
	case <-ctx.Done():
		d.logger.Warn("push queue drain timeout, some notifications may be lost")
	}

	d.wg.Wait()
	return nil
}

// Push queues a notification for delivery. Implements the notification
// sender used by the action service. Never blocks.
func (d *Dispatcher) Push(token, title, body string) {
	if token == "" {
		return
	}

	// Hold read lock through the entire send operation.
	// This prevents race with Shutdown() which holds write lock when closing channel.
	d.shutdownMu.RLock()
	defer d.shutdownMu.RUnlock()

	if d.shutdown {
		// Silently drop after shutdown - expected during shutdown
		return
	}

	select {
	case d.queue <- message{Token: token, Title: title, Body: body}:
	default:
		d.logger.Error("push queue full, dropping notification", "title", title)
	}
}

// deliver posts one notification to the gateway. Failures are logged;
// push delivery is best-effort and never surfaces to the caller.
func (d *Dispatcher) deliver(ctx context.Context, msg message) {
	if msg.Token == "" {
		return
	}

	payload := pushPayload{
		To:    msg.Token,
		Title: msg.Title,
		Body:  msg.Body,
		Sound: "default",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("failed to encode push payload", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.gatewayURL, bytes.NewReader(data))
	if err != nil {
		d.logger.Error("failed to build push request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("push delivery failed", "error", err)
		return
	}
	defer resp.Body.Close() //nolint:errcheck // Nothing to do about close errors

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		d.logger.Warn("push gateway rejected notification",
			"status", resp.StatusCode,
			"response", string(body),
		)
		return
	}

	d.logger.Debug("push delivered", "title", msg.Title)
}

// QueueDepth returns the number of notifications waiting for delivery.
func (d *Dispatcher) QueueDepth() int {
	return len(d.queue)
}
