package loop

import (
	"context"
	"errors"
	"time"

	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

var (
	// ErrDeepSleep reports an intentional shutdown: the wake alarm is armed
	// and the process should exit cleanly so the supervisor restarts it at
	// wake time.
	ErrDeepSleep = errors.New("deep sleep requested")

	// ErrResetRequested reports that persistent upload outages forced a
	// device reset.
	ErrResetRequested = errors.New("device reset requested")
)

// Options carry the tunables the loop reads each iteration.
type Options struct {
	Period           time.Duration
	ResetDelay       time.Duration
	MaxUploadOutages int
	SpoolDrainMax    int
}

func (o *Options) applyDefaults() {
	if o.Period <= 0 {
		o.Period = 60 * time.Second
	}
	if o.ResetDelay <= 0 {
		o.ResetDelay = 10 * time.Second
	}
	if o.MaxUploadOutages <= 0 {
		o.MaxUploadOutages = 3
	}
	if o.SpoolDrainMax <= 0 {
		o.SpoolDrainMax = 8
	}
}

// Loop is the node's top-level control flow: collect, upload, decide power
// mode, wait, repeat. It runs on one goroutine; the sample cycle is strictly
// sequential.
type Loop struct {
	collector *Collector
	uploader  *Uploader
	scheduler *Scheduler
	spool     ports.Spool
	power     ports.PowerController
	obs       ports.Observability
	opts      Options

	outages int
}

func New(c *Collector, u *Uploader, s *Scheduler, spool ports.Spool, power ports.PowerController, obs ports.Observability, opts Options) *Loop {
	opts.applyDefaults()
	return &Loop{
		collector: c,
		uploader:  u,
		scheduler: s,
		spool:     spool,
		power:     power,
		obs:       obs,
		opts:      opts,
	}
}

// Run drives iterations until the context is cancelled or the loop decides
// to stop itself: ErrDeepSleep after arming the wake alarm, ErrResetRequested
// after persistent upload outages, or a fatal configuration error such as a
// missing device ID.
func (l *Loop) Run(ctx context.Context) error {
	for {
		start := time.Now()

		err := l.iterate(ctx)
		l.obs.ObserveLatency("climate_loop_duration_seconds", time.Since(start).Seconds())

		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case errors.Is(err, ErrRetryExhausted):
			l.outages++
			l.obs.LogError("upload_outage", err,
				ports.Field{Key: "consecutive", Value: l.outages},
				ports.Field{Key: "limit", Value: l.opts.MaxUploadOutages})
			if l.outages >= l.opts.MaxUploadOutages {
				return l.reset(ctx)
			}
		case errors.Is(err, ports.ErrDeviceIDMissing):
			l.obs.LogCritical("device_id_missing", err)
			return err
		default:
			l.obs.LogError("loop_iteration_failed", err)
		}

		d, derr := l.scheduler.Decide(time.Since(start))
		if derr != nil {
			l.obs.LogError("power_decision_failed", derr)
		}

		if d.Mode == ModeDeepSleep {
			wakeAt := time.Now().Add(d.Wait)
			if aerr := l.power.ArmWake(wakeAt); aerr != nil {
				// Without a wake alarm a deep sleep would never end; stay
				// awake instead.
				l.obs.LogError("arm_wake_failed", aerr)
			} else {
				l.obs.IncCounter("climate_deep_sleeps_total", 1)
				l.obs.LogInfo("deep_sleep",
					ports.Field{Key: "wake_at", Value: wakeAt.Format(time.RFC3339)},
					ports.Field{Key: "battery_pct", Value: d.BatteryPct})
				return ErrDeepSleep
			}
		}

		if werr := sleepCtx(ctx, d.Wait); werr != nil {
			return werr
		}
	}
}

// iterate runs one collect-and-upload cycle. An upload failure spools the
// sample; a success drains a bounded slice of the backlog.
func (l *Loop) iterate(ctx context.Context) error {
	s, err := l.collector.Collect(ctx)
	if err != nil {
		return err
	}

	if err := l.uploader.Post(ctx, s); err != nil {
		l.obs.IncCounter("climate_upload_failures_total", 1)
		if l.spool != nil {
			serr := l.spool.Append(s)
			l.obs.RecordSpooled(s, serr)
		}
		return err
	}

	l.outages = 0
	l.obs.IncCounter("climate_samples_uploaded_total", 1)
	l.drainSpool(ctx)
	return nil
}

func (l *Loop) drainSpool(ctx context.Context) {
	if l.spool == nil || l.spool.Len() == 0 {
		return
	}
	n, err := l.spool.Drain(l.opts.SpoolDrainMax, func(s *domain.Sample) error {
		return l.uploader.Post(ctx, s)
	})
	if n > 0 {
		l.obs.LogInfo("spool_drained", ports.Field{Key: "replayed", Value: n})
		l.obs.IncCounter("climate_samples_uploaded_total", float64(n))
	}
	if err != nil {
		l.obs.LogError("spool_drain_stopped", err)
	}
}

// reset delays long enough for logs and metrics to flush, then asks the
// power controller to reboot the device.
func (l *Loop) reset(ctx context.Context) error {
	l.obs.LogCritical("resetting_after_persistent_outages", nil,
		ports.Field{Key: "outages", Value: l.outages})
	if err := sleepCtx(ctx, l.opts.ResetDelay); err != nil {
		return err
	}
	if err := l.power.Reset(); err != nil {
		l.obs.LogError("reset_failed", err)
	}
	return ErrResetRequested
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
