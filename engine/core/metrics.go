package core

import (
	"sync"
	"time"
)

const AVG_COUNT uint8 = 30

/**
 * @brief Load statistics: a running total plus the average over the last
 * AVG_COUNT samples.
 */
type LoadMetrics struct {
	mu sync.Mutex

	avgCounter uint8
	samples    [AVG_COUNT]time.Duration
	filled     uint8

	Loads    uint64
	Failures uint64
	Total    time.Duration
}

func (m *LoadMetrics) Record(elapsed time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.Failures++
		return
	}
	m.Loads++
	m.Total += elapsed
	m.samples[m.avgCounter] = elapsed
	m.avgCounter = (m.avgCounter + 1) % AVG_COUNT
	if m.filled < AVG_COUNT {
		m.filled++
	}
}

// Average is the mean duration of the last successful loads, at most AVG_COUNT.
func (m *LoadMetrics) Average() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.filled == 0 {
		return 0
	}
	var sum time.Duration
	for i := uint8(0); i < m.filled; i++ {
		sum += m.samples[i]
	}
	return sum / time.Duration(m.filled)
}

func (m *LoadMetrics) Counts() (loads, failures uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Loads, m.Failures
}
