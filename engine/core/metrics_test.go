package core

import (
	"errors"
	"testing"
	"time"
)

func TestLoadMetrics(t *testing.T) {
	var m LoadMetrics
	if m.Average() != 0 {
		t.Errorf("empty average = %s", m.Average())
	}

	m.Record(10*time.Millisecond, nil)
	m.Record(30*time.Millisecond, nil)
	m.Record(time.Second, errors.New("failed"))

	if got := m.Average(); got != 20*time.Millisecond {
		t.Errorf("average = %s, want 20ms", got)
	}
	loads, failures := m.Counts()
	if loads != 2 || failures != 1 {
		t.Errorf("counts = %d/%d, want 2/1", loads, failures)
	}
}

func TestLoadMetricsAverageWindow(t *testing.T) {
	var m LoadMetrics
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Record(time.Hour, nil)
	}
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Record(time.Millisecond, nil)
	}
	if got := m.Average(); got != time.Millisecond {
		t.Errorf("average = %s, old samples were not replaced", got)
	}
	if m.Total != time.Duration(AVG_COUNT)*(time.Hour+time.Millisecond) {
		t.Errorf("total = %s", m.Total)
	}
}

func TestClock(t *testing.T) {
	c := NewClock()
	c.Update()
	if c.Elapsed() != 0 {
		t.Error("a clock that never started must not advance")
	}
	c.Start()
	time.Sleep(2 * time.Millisecond)
	c.Stop()
	elapsed := c.Elapsed()
	if elapsed < 2*time.Millisecond {
		t.Errorf("elapsed = %s, want at least 2ms", elapsed)
	}
	time.Sleep(time.Millisecond)
	c.Update()
	if c.Elapsed() != elapsed {
		t.Error("a stopped clock must not advance")
	}
}
