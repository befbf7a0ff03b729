package record

import "time"

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLowThreshold sets the quality below which a record is flagged low.
// Zero or less keeps DefaultLowThreshold, as the export engine does.
func WithLowThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}
