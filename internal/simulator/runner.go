package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/boutstats/internal/domain/analytics"
	"github.com/okian/boutstats/pkg/logger"
)

const percentageMultiplier = 100

// submission is one POST to a bout's event endpoint.
type submission struct {
	boutID string
	event  EventRequest
}

// serverEngine mirrors the engine settings reported by GET /stats.
type serverEngine struct {
	PercentPrecision json.Number `json:"percentPrecision"`
	ZeroLengthLeads  *bool       `json:"zeroLengthLeads"`
	BounceBackPolicy string      `json:"bounceBackPolicy"`
}

// Run executes a complete simulation. A non-nil Stats is returned whenever
// the run got as far as submitting events.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	log := logger.Get().Named("simulator")
	stats := &Stats{StartTime: time.Now()}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	log.Info(ctx, "starting bout simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("bouts", cfg.Bouts),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Any("seed", cfg.Seed),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := client.getJSON(ctx, "/healthz", nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	engine, err := localEngine(ctx, client)
	if err != nil {
		return nil, err
	}

	gen := NewGenerator(cfg.Seed, cfg.MaxScores)
	scenarios := make([]Scenario, cfg.Bouts)
	for i := range scenarios {
		scenarios[i] = gen.Scenario()
	}
	stats.BoutsGenerated = len(scenarios)

	for _, sc := range scenarios {
		status, body, err := client.postJSON(ctx, "/bouts", toBoutRequest(sc.Bout))
		if err != nil {
			return nil, fmt.Errorf("register bout %s: %w", sc.Bout.BoutID, err)
		}
		if status != http.StatusCreated {
			return nil, fmt.Errorf("%w: register bout %s: %d %s", ErrUnexpectedStatus, sc.Bout.BoutID, status, body)
		}
		stats.BoutsRegistered++
	}

	var subs []submission
	for _, sc := range scenarios {
		for _, e := range sc.Events {
			s := submission{boutID: sc.Bout.BoutID, event: toEventRequest(e)}
			subs = append(subs, s)
			if gen.Chance(cfg.DuplicateRate) {
				subs = append(subs, s)
			}
		}
	}
	Shuffle(gen, subs)
	submitEvents(ctx, client, cfg, subs, stats)

	for _, sc := range scenarios {
		var got AnalyticsResponse
		if err := client.getJSON(ctx, "/bouts/"+sc.Bout.BoutID+"/analytics", &got); err != nil {
			return stats, fmt.Errorf("fetch analytics %s: %w", sc.Bout.BoutID, err)
		}
		want, err := engine.Analyze(sc.Bout, sc.Events)
		if err != nil {
			return stats, fmt.Errorf("local analysis %s: %w", sc.Bout.BoutID, err)
		}

		stats.BoutsVerified++
		if problems := Verify(sc, want, got); len(problems) > 0 {
			stats.BoutsMismatched++
			log.Warn(ctx, "analytics mismatch",
				logger.String("bout_id", sc.Bout.BoutID),
				logger.Int("problems", len(problems)),
				logger.String("first", problems[0]),
			)
			if cfg.Verbose {
				for _, p := range problems {
					log.Debug(ctx, "mismatch detail", logger.String("bout_id", sc.Bout.BoutID), logger.String("problem", p))
				}
			}
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.BoutsMismatched > 0 {
		return stats, fmt.Errorf("%w: %d of %d bouts", ErrMismatch, stats.BoutsMismatched, stats.BoutsVerified)
	}
	if stats.EventsFailed > 0 {
		return stats, fmt.Errorf("%w: %d event submissions failed", ErrUnexpectedStatus, stats.EventsFailed)
	}
	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

// localEngine builds an engine configured like the server's.
func localEngine(ctx context.Context, client *HTTPClient) (*analytics.Engine, error) {
	var se serverEngine
	if err := client.getJSON(ctx, "/stats", &se); err != nil {
		return nil, fmt.Errorf("fetch server stats: %w", err)
	}

	var opts []analytics.Option
	if p, err := se.PercentPrecision.Int64(); err == nil {
		opts = append(opts, analytics.WithPrecision(int(p)))
	}
	if se.ZeroLengthLeads != nil {
		opts = append(opts, analytics.WithZeroLengthLeads(*se.ZeroLengthLeads))
	}
	if policy, ok := analytics.ParseBounceBackPolicy(se.BounceBackPolicy); ok {
		opts = append(opts, analytics.WithBounceBackPolicy(policy))
	}
	return analytics.New(opts...), nil
}

// submitEvents posts all submissions from cfg.Workers goroutines.
func submitEvents(ctx context.Context, client *HTTPClient, cfg Config, subs []submission, stats *Stats) {
	log := logger.Get().Named("simulator")
	log.Info(ctx, "submitting events", logger.Int("submissions", len(subs)), logger.Int("workers", cfg.Workers))

	var submitted, accepted, duplicate, failed atomic.Int64

	work := make(chan submission, cfg.Workers*2)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range work {
				submitted.Add(1)
				status, body, err := client.postJSON(ctx, "/bouts/"+s.boutID+"/events", s.event)
				switch {
				case err != nil:
					failed.Add(1)
					log.Debug(ctx, "event submission failed", logger.Error(err))
				case status == http.StatusAccepted:
					accepted.Add(1)
				case status == http.StatusOK:
					var ack AckResponse
					if decode(body, &ack) == nil && ack.Duplicate {
						duplicate.Add(1)
					} else {
						failed.Add(1)
					}
				default:
					failed.Add(1)
					log.Debug(ctx, "event rejected",
						logger.Int("status", status),
						logger.String("body", string(body)),
					)
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, s := range subs {
			select {
			case <-ctx.Done():
				return
			case work <- s:
			}
		}
	}()
	wg.Wait()

	stats.EventsSubmitted = int(submitted.Load())
	stats.EventsAccepted = int(accepted.Load())
	stats.EventsDuplicate = int(duplicate.Load())
	stats.EventsFailed = int(failed.Load())
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, eventsPerSecond float64
	if stats.EventsSubmitted > 0 {
		successRate = float64(stats.EventsAccepted+stats.EventsDuplicate) / float64(stats.EventsSubmitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("boutsGenerated", stats.BoutsGenerated),
		logger.Int("boutsRegistered", stats.BoutsRegistered),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsAccepted", stats.EventsAccepted),
		logger.Int("eventsDuplicate", stats.EventsDuplicate),
		logger.Int("eventsFailed", stats.EventsFailed),
		logger.Int("boutsVerified", stats.BoutsVerified),
		logger.Int("boutsMismatched", stats.BoutsMismatched),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("eventsPerSecond", eventsPerSecond),
	)
}
