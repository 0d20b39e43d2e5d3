package output

import "time"

type MetricsPort interface {
	ObserveTurn(intent string, duration time.Duration)
}
