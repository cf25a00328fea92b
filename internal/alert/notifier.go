package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/i474232898/eco-ops-dashboard/internal/logger"
	"github.com/i474232898/eco-ops-dashboard/internal/metrics"
)

// Notifier delivers error alerts. Notify is best-effort: it reports whether
// the alert was delivered and never panics into the caller.
type Notifier interface {
	Notify(ctx context.Context, err error, label string) bool
}

// FormConfig configures FormNotifier.
type FormConfig struct {
	Endpoint    string
	App         string
	Environment string
	Mock        bool
	Timeout     time.Duration
}

type payload struct {
	App         string `json:"app"`
	Error       string `json:"error"`
	Context     string `json:"context"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

// FormNotifier posts alerts as JSON to a form-collection endpoint.
type FormNotifier struct {
	client *resty.Client
	cfg    FormConfig
	log    *logger.Logger
	now    func() time.Time
}

func NewFormNotifier(cfg FormConfig, log *logger.Logger) *FormNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &FormNotifier{client: client, cfg: cfg, log: log, now: time.Now}
}

// Notify logs the error locally, then forwards it to the endpoint.
func (n *FormNotifier) Notify(ctx context.Context, err error, label string) (delivered bool) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Errorw("alert_notify_panic", "panic", r)
			delivered = false
		}
		if !n.cfg.Mock {
			metrics.RecordAlert(delivered)
		}
	}()

	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	n.log.Errorw("error_alert", "context", label, "error", msg)

	if n.cfg.Mock {
		n.log.Infow("serving mock data", "endpoint", "alert", "context", label)
		return true
	}
	if n.cfg.Endpoint == "" {
		n.log.Warnw("alert_endpoint_not_configured", "context", label)
		return false
	}

	body := payload{
		App:         n.cfg.App,
		Error:       msg,
		Context:     label,
		Timestamp:   n.now().UTC().Format(time.RFC3339),
		Environment: n.cfg.Environment,
	}

	resp, postErr := n.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(n.cfg.Endpoint)
	if postErr != nil {
		n.log.Warnw("alert_delivery_failed", "context", label, "error", postErr)
		return false
	}
	if !resp.IsSuccess() {
		n.log.Warnw("alert_delivery_failed", "context", label, "error", fmt.Sprintf("status %d", resp.StatusCode()))
		return false
	}

	n.log.Infow("alert_delivered", "context", label)
	return true
}
