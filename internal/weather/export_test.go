package weather

import "time"

// SetNow overrides the clock used by FetchAndStore.
func SetNow(s *Service, now func() time.Time) {
	s.now = now
}
