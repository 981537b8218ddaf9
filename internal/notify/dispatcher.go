// Package notify implements the asynchronous webhook notification
// dispatcher. After a withdrawal commits, the allocation engine hands the
// event to Notify, which enqueues it onto a bounded worker pool; workers
// fan out one signed HTTP POST per active subscription and record every
// attempt as a WebhookDelivery row.
//
// Delivery is best-effort: a full queue drops the event (logged),
// a failed POST is recorded and never retried by this component, and
// process shutdown loses queued-but-unstarted events. Failures never
// propagate back to the withdrawal caller and never reverse an allocation.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/domain"
	"github.com/cardvault/card-vault-backend/internal/repo"
)

// SignatureHeader carries the hex HMAC-SHA256 of the payload when the
// subscription has a signing secret.
const SignatureHeader = "X-Webhook-Signature"

// userAgent identifies outbound webhook calls.
const userAgent = "CardVault-Webhook/1.0"

// maxResponseRead caps how much of a callback response body is read.
const maxResponseRead = 4096

var (
	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Webhook delivery attempts by outcome.",
		},
		[]string{"outcome"},
	)

	eventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_events_dropped_total",
			Help: "Withdrawal events dropped because the dispatch queue was full.",
		},
	)
)

func init() {
	prometheus.MustRegister(deliveriesTotal, eventsDropped)
}

// event is one committed withdrawal to announce.
type event struct {
	APIKeyID      string
	TransactionID string
	CardID        string
	CardCode      string
}

// payload is the JSON body POSTed to callback URLs.
type payload struct {
	Event     string      `json:"event"`
	Data      payloadData `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type payloadData struct {
	TransactionID string `json:"transaction_id"`
	CardID        string `json:"card_id"`
	CardCode      string `json:"card_code"`
}

// Options tunes the dispatcher; zero values select the defaults noted on
// each field.
type Options struct {
	// Workers is the number of concurrent delivery workers (default 8).
	Workers int
	// QueueSize bounds pending events before drops begin (default 256).
	QueueSize int
	// Timeout is the per-POST client timeout (default 10s).
	Timeout time.Duration
	// EgressPerSecond paces outbound calls process-wide; <= 0 disables
	// pacing.
	EgressPerSecond float64
}

// Dispatcher owns the bounded queue and worker pool. Safe for concurrent
// use; create one per process and Close it on shutdown.
type Dispatcher struct {
	db      *gorm.DB
	client  *http.Client
	limiter *rate.Limiter

	queue chan event
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher starts opts.Workers goroutines draining the event queue.
func NewDispatcher(db *gorm.DB, opts Options) *Dispatcher {
	workers := opts.Workers
	if workers <= 0 {
		workers = 8
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	d := &Dispatcher{
		db:     db,
		client: &http.Client{Timeout: timeout},
		queue:  make(chan event, queueSize),
	}
	if opts.EgressPerSecond > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(opts.EgressPerSecond), workers)
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

// Notify enqueues a withdrawal event without blocking the caller. When the
// queue is full the event is dropped and logged; the withdrawal itself is
// already durable.
func (d *Dispatcher) Notify(apiKeyID, transactionID, cardID, cardCode string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	ev := event{
		APIKeyID:      apiKeyID,
		TransactionID: transactionID,
		CardID:        cardID,
		CardCode:      cardCode,
	}
	select {
	case d.queue <- ev:
	default:
		eventsDropped.Inc()
		log.Warn().
			Str("transaction_id", transactionID).
			Msg("webhook queue full, event dropped")
	}
}

// Close stops intake and waits for in-flight deliveries to finish.
// Queued-but-unstarted events are still processed; events arriving after
// Close are ignored.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.queue)
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.dispatch(ev)
	}
}

// dispatch fans one event out to every active subscription of the
// credential. Each subscription is handled independently so one slow or
// broken endpoint cannot starve the others.
func (d *Dispatcher) dispatch(ev event) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	subs, err := repo.ListActiveSubscriptions(ctx, d.db, ev.APIKeyID)
	if err != nil {
		log.Error().Err(err).
			Str("api_key_id", ev.APIKeyID).
			Msg("webhook subscription lookup failed")
		return
	}

	var wg sync.WaitGroup
	for i := range subs {
		sub := subs[i]
		if !subscribed(&sub, domain.EventCardWithdrawn) {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.deliver(ctx, &sub, ev)
		}()
	}
	wg.Wait()
}

// subscribed reports whether the subscription's event filter includes the
// event name. An empty filter matches nothing; creation defaults it to
// ["card.withdrawn"].
func subscribed(sub *domain.WebhookSubscription, eventName string) bool {
	for _, e := range repo.SubscriptionEvents(sub) {
		if e == eventName {
			return true
		}
	}
	return false
}

// deliver performs one signed POST and records the outcome.
func (d *Dispatcher) deliver(ctx context.Context, sub *domain.WebhookSubscription, ev event) {
	rec, err := repo.CreateDelivery(ctx, d.db, sub.ID, ev.TransactionID)
	if err != nil {
		log.Error().Err(err).
			Str("subscription_id", sub.ID).
			Msg("webhook delivery record create failed")
		return
	}

	body, err := json.Marshal(payload{
		Event: domain.EventCardWithdrawn,
		Data: payloadData{
			TransactionID: ev.TransactionID,
			CardID:        ev.CardID,
			CardCode:      ev.CardCode,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		_ = repo.MarkDeliveryFailed(ctx, d.db, rec.ID, nil, "")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.CallbackURL, bytes.NewReader(body))
	if err != nil {
		_ = repo.MarkDeliveryFailed(ctx, d.db, rec.ID, nil, "")
		deliveriesTotal.WithLabelValues("failed").Inc()
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if sub.SecretToken != nil {
		req.Header.Set(SignatureHeader, "sha256="+Sign(*sub.SecretToken, body))
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			_ = repo.MarkDeliveryFailed(ctx, d.db, rec.ID, nil, "")
			deliveriesTotal.WithLabelValues("failed").Inc()
			return
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		_ = repo.MarkDeliveryFailed(ctx, d.db, rec.ID, nil, "")
		deliveriesTotal.WithLabelValues("failed").Inc()
		log.Warn().Err(err).
			Str("callback_url", sub.CallbackURL).
			Str("delivery_id", rec.ID).
			Msg("webhook post failed")
		return
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseRead))
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		_ = repo.MarkDeliverySuccess(ctx, d.db, rec.ID, resp.StatusCode, string(respBody))
		deliveriesTotal.WithLabelValues("success").Inc()
		return
	}

	code := resp.StatusCode
	_ = repo.MarkDeliveryFailed(ctx, d.db, rec.ID, &code, string(respBody))
	deliveriesTotal.WithLabelValues("failed").Inc()
	log.Warn().
		Int("status", resp.StatusCode).
		Str("callback_url", sub.CallbackURL).
		Str("delivery_id", rec.ID).
		Msg("webhook rejected by endpoint")
}

// Sign computes the hex HMAC-SHA256 of body under secret; the header value
// is "sha256=" + Sign(...).
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
