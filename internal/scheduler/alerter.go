package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hamed0406/runnercheck/internal/domain"
	"github.com/hamed0406/runnercheck/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
}

// Alerter compares each scan against the last recorded state per endpoint
// and sends at most one DOWN and one RECOVERED notification per scan.
type Alerter struct {
	alertDB  repo.AlertStore
	notifier interface {
		Send(context.Context, string, string) error
	}
	cfg AlerterConfig
	now func() time.Time
}

func NewAlerter(
	alertDB repo.AlertStore,
	notifier interface {
		Send(context.Context, string, string) error
	},
	cfg AlerterConfig,
) *Alerter {
	return &Alerter{
		alertDB:  alertDB,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

type transition struct {
	key string
	o   domain.Outcome
	cat string
}

// Evaluate records the state of every outcome and notifies on transitions.
// A DOWN inside the cooldown is retried on later scans until it is sent or
// the endpoint recovers.
func (a *Alerter) Evaluate(ctx context.Context, rep *domain.ScanReport) error {
	now := a.now()
	var down, recovered []transition

	for _, c := range rep.Categories {
		for _, o := range c.Outcomes {
			key := repo.AlertKey(c.Category, o.Domain)
			rec, err := a.alertDB.Get(ctx, key)
			if err != nil {
				return fmt.Errorf("alert state %s: %w", key, err)
			}

			t := transition{key: key, o: o, cat: c.Category}
			switch {
			case !o.Success:
				// already announced as down
				if rec != nil && !rec.LastState {
					continue
				}
				// held back until cooled; LastState stays up so a later scan retries
				if rec != nil && rec.LastSentAt != nil && now.Sub(*rec.LastSentAt) < a.cfg.Cooldown {
					continue
				}
				down = append(down, t)
			case rec == nil:
				if err := a.alertDB.Set(ctx, key, true, time.Time{}); err != nil {
					return fmt.Errorf("alert state %s: %w", key, err)
				}
			case rec.LastState:
				// still up
			case a.cfg.AlertOnRecovery:
				recovered = append(recovered, t)
			default:
				// silent recovery keeps the last send time for the cooldown
				var sentAt time.Time
				if rec.LastSentAt != nil {
					sentAt = *rec.LastSentAt
				}
				if err := a.alertDB.Set(ctx, key, true, sentAt); err != nil {
					return fmt.Errorf("alert state %s: %w", key, err)
				}
			}
		}
	}

	if err := a.send(ctx, "🔴 Runner endpoints DOWN", rep, down, now); err != nil {
		return err
	}
	return a.send(ctx, "🟢 Runner endpoints RECOVERED", rep, recovered, now)
}

func (a *Alerter) send(ctx context.Context, title string, rep *domain.ScanReport, ts []transition, now time.Time) error {
	if len(ts) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s\nChecked: %s\n", rep.RunID, rep.StartedAt.Format(time.RFC3339))
	for _, t := range ts {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", t.cat, t.o.Domain, t.o.Message)
	}
	// Best-effort send; state is recorded either way so we don't resend every scan.
	sendErr := a.notifier.Send(ctx, title, b.String())
	for _, t := range ts {
		if err := a.alertDB.Set(ctx, t.key, t.o.Success, now); err != nil {
			return fmt.Errorf("alert state %s: %w", t.key, err)
		}
	}
	if sendErr != nil {
		return fmt.Errorf("notify %q: %w", title, sendErr)
	}
	return nil
}
