package tracking

import "time"

// SetNowFunc pins the service clock for deterministic tests.
func (s *Service) SetNowFunc(f func() time.Time) { s.now = f }
