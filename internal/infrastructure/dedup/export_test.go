package dedup

import "time"

// SetNowForTest troca o relógio do MemoryStore nos testes de expiração.
func SetNowForTest(s *MemoryStore, now func() time.Time) {
	s.now = now
}
