package scene

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/san-kum/hoopsim/internal/physics"
)

// LoopConfig drives a scene at a fixed wall-clock cadence. Dt is simulation
// time per physics step and is independent of Hz.
type LoopConfig struct {
	Dt           float64
	Hz           float64 // ticks per second; <= 0 runs unthrottled
	StepsPerTick int     // physics steps per tick, at least 1
	Until        float64 // stop once SimTime reaches this; <= 0 runs until ctx ends
	Parallel     bool
	OnTick       func(*Scene)
}

// Loop calls Tick at the configured cadence until Until is reached or ctx is
// done. With Until set, a halted scene can never get there and Loop returns
// ErrHalted. Without it, a halted scene keeps ticking without advancing.
func (s *Scene) Loop(ctx context.Context, cfg LoopConfig) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", physics.ErrInvalidParameter, cfg.Dt)
	}
	steps := cfg.StepsPerTick
	if steps < 1 {
		steps = 1
	}

	limit := rate.Inf
	if cfg.Hz > 0 {
		limit = rate.Limit(cfg.Hz)
	}
	limiter := rate.NewLimiter(limit, 1)

	for {
		if cfg.Until > 0 && s.simTime+cfg.Dt/2 >= cfg.Until {
			return nil
		}
		if cfg.Until > 0 && !s.running {
			return ErrHalted
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		for i := 0; i < steps; i++ {
			if cfg.Until > 0 && s.simTime+cfg.Dt/2 >= cfg.Until {
				break
			}
			var err error
			if cfg.Parallel {
				err = s.TickParallel(ctx, cfg.Dt)
			} else {
				err = s.Tick(cfg.Dt)
			}
			if err != nil {
				return err
			}
		}
		if cfg.OnTick != nil {
			cfg.OnTick(s)
		}
	}
}
