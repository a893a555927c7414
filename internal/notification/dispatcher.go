package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/notification/repository"
	"task-scheduling-assistant/pkg/log"
)

// message is the body POSTed to peers. Receivers dedupe on ID.
type message struct {
	ID      string          `json:"id"`
	Kind    string          `json:"kind"`
	UserID  string          `json:"user_id"`
	Payload json.RawMessage `json:"payload"`
}

type implDispatcher struct {
	l      log.Logger
	repo   repository.Repository
	client *http.Client
	opt    Options
}

// NewDispatcher creates an at-least-once outbox dispatcher.
func NewDispatcher(l log.Logger, repo repository.Repository, opt Options) Dispatcher {
	opt = opt.withDefaults()
	return &implDispatcher{
		l:      l,
		repo:   repo,
		client: &http.Client{Timeout: opt.Timeout},
		opt:    opt,
	}
}

func (d *implDispatcher) Run(ctx context.Context) (Result, error) {
	var res Result
	if len(d.opt.BaseURLs) == 0 {
		return res, ErrNoTarget
	}

	due, err := d.repo.ListDue(ctx, d.opt.Clock(), d.opt.BatchSize)
	if err != nil {
		return res, err
	}

	for _, n := range due {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		err := d.deliver(ctx, n)
		if err == nil {
			if err := d.repo.MarkDelivered(ctx, n.ID, d.opt.Clock()); err != nil {
				d.l.Warnf(ctx, "notification.Run: mark delivered %s: %v", n.ID, err)
			}
			res.Delivered++
			continue
		}

		if d.settleFailure(ctx, n, err) {
			res.Dead++
		} else {
			res.Retried++
		}
	}

	if len(due) > 0 {
		d.l.Infof(ctx, "notification.Run: delivered=%d retried=%d dead=%d", res.Delivered, res.Retried, res.Dead)
	}
	return res, nil
}

// settleFailure schedules the next attempt or dead-letters the row. It reports whether the row died.
func (d *implDispatcher) settleFailure(ctx context.Context, n model.Notification, cause error) bool {
	now := d.opt.Clock()
	opt := repository.MarkRetryOptions{
		ID:            n.ID,
		Attempts:      n.Attempts + 1,
		NextAttemptAt: now.Add(d.backoff(n.Attempts)),
		LastError:     cause.Error(),
	}

	if opt.Attempts >= d.opt.MaxAttempts {
		d.l.Errorf(ctx, "notification.Run: %s %s for %s dead after %d attempts: %v", n.Kind, n.ID, n.UserID, opt.Attempts, cause)
		if err := d.repo.MarkDead(ctx, opt); err != nil {
			d.l.Warnf(ctx, "notification.Run: mark dead %s: %v", n.ID, err)
		}
		return true
	}

	d.l.Warnf(ctx, "notification.Run: %s %s attempt %d failed, next at %s: %v", n.Kind, n.ID, opt.Attempts, opt.NextAttemptAt.Format(time.RFC3339), cause)
	if err := d.repo.MarkRetry(ctx, opt); err != nil {
		d.l.Warnf(ctx, "notification.Run: mark retry %s: %v", n.ID, err)
	}
	return false
}

// backoff is BaseBackoff * 2^attempts, capped at MaxBackoff.
func (d *implDispatcher) backoff(attempts int) time.Duration {
	wait := d.opt.BaseBackoff
	for i := 0; i < attempts; i++ {
		wait *= 2
		if wait >= d.opt.MaxBackoff {
			return d.opt.MaxBackoff
		}
	}
	return wait
}

// deliver tries every base URL in order and stops at the first 2xx.
func (d *implDispatcher) deliver(ctx context.Context, n model.Notification) error {
	body, err := json.Marshal(message{ID: n.ID, Kind: n.Kind, UserID: n.UserID, Payload: n.Payload})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	var errs []error
	for _, base := range d.opt.BaseURLs {
		target := strings.TrimRight(base, "/") + d.opt.Path
		if err := d.post(ctx, target, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target, err))
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %w", ErrAllTargets, errors.Join(errs...))
}

func (d *implDispatcher) post(ctx context.Context, target string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}
	return nil
}
