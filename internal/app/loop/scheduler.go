package loop

import (
	"errors"
	"fmt"
	"time"

	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// ErrNoBatterySensor means the power decision has no fuel gauge to consult.
// The node cannot know whether deep sleep is warranted, so callers fall back
// to staying awake and surface this as a configuration problem.
var ErrNoBatterySensor = errors.New("no battery sensor for power decision")

type Mode int

const (
	ModeActiveWait Mode = iota
	ModeDeepSleep
)

func (m Mode) String() string {
	if m == ModeDeepSleep {
		return "deep_sleep"
	}
	return "active_wait"
}

// Decision is the power choice for the remainder of one loop period.
type Decision struct {
	Mode       Mode
	Wait       time.Duration
	BatteryPct float64
}

// Scheduler picks between an active wait and a deep sleep based on a fresh
// battery reading each iteration.
type Scheduler struct {
	battery      ports.BatterySensor
	period       time.Duration
	thresholdPct float64
	obs          ports.Observability
}

func NewScheduler(battery ports.BatterySensor, period time.Duration, thresholdPct float64, obs ports.Observability) *Scheduler {
	if period <= 0 {
		period = 60 * time.Second
	}
	if thresholdPct <= 0 {
		thresholdPct = 25
	}
	return &Scheduler{battery: battery, period: period, thresholdPct: thresholdPct, obs: obs}
}

// Decide returns the mode for the time remaining in the loop period. Charge
// strictly above the threshold stays awake; at or below it the node deep
// sleeps until the wake alarm. Errors come with an active-wait decision so
// the caller can keep running degraded.
func (s *Scheduler) Decide(elapsed time.Duration) (Decision, error) {
	wait := s.period - elapsed
	if wait < 0 {
		wait = 0
	}
	d := Decision{Mode: ModeActiveWait, Wait: wait}

	if s.battery == nil {
		return d, ErrNoBatterySensor
	}

	pct, err := s.battery.Percent()
	if err != nil {
		return d, fmt.Errorf("battery percent: %w", err)
	}
	d.BatteryPct = pct
	s.obs.SetGauge("climate_battery_percent", pct)

	if pct > s.thresholdPct {
		return d, nil
	}
	d.Mode = ModeDeepSleep
	return d, nil
}
