package cartsync

import (
	"strconv"
	"sync"
	"time"
)

// idSource hands out anonymous line ids of the form local-<unix-nanos>,
// strictly increasing even when the clock stalls or steps back.
type idSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

var anonymousIDs = &idSource{now: time.Now}

func (s *idSource) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.now().UnixNano()
	if n <= s.last {
		n = s.last + 1
	}
	s.last = n
	return "local-" + strconv.FormatInt(n, 10)
}
