package optim

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/autopark/internal/config"
	"github.com/san-kum/autopark/internal/metrics"
	"github.com/san-kum/autopark/internal/sim"
)

// SimObjective scores gains by the mean of metric over seeds simulated
// runs of base. A candidate is discarded unless every run parks.
func SimObjective(base *config.Config, seeds int, metric string) Evaluate {
	return func(ctx context.Context, params map[string]float64) (float64, bool, error) {
		cfg := *base
		for name, v := range params {
			switch name {
			case "Kp":
				cfg.Steering.Kp = v
			case "Kd":
				cfg.Steering.Kd = v
			default:
				return 0, false, fmt.Errorf("unknown gain %q", name)
			}
		}

		sets := make([]metrics.Set, seeds)
		outcomes := sim.Sweep(ctx, seeds, cfg.Sim.Seed, func(seed int64) (*sim.Runner, error) {
			c := cfg
			c.Sim.Seed = seed
			r, err := c.NewRunner(nil)
			if err != nil {
				return nil, err
			}
			set := metrics.Default()
			r.Maneuver.AddObserver(set)
			sets[seed-cfg.Sim.Seed] = set
			return r, nil
		})

		total := 0.0
		for i, o := range outcomes {
			if o.Err != nil || o.Result == nil || !o.Result.Parked {
				log.Debugf("[optim] %v seed %d rejected: %v", params, o.Seed, o.Err)
				return 0, false, nil
			}
			v, ok := sets[i].Values()[metric]
			if !ok {
				return 0, false, fmt.Errorf("unknown metric %q", metric)
			}
			total += v
		}
		score := total / float64(len(outcomes))
		log.Debugf("[optim] %v -> %s=%.4f", params, metric, score)
		return score, true, nil
	}
}
