package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmptyStatistics(t *testing.T) {
	s := New()
	assert.Equal(t, int64(0), s.Count())
	assert.Equal(t, time.Duration(0), s.Min())
	assert.Equal(t, time.Duration(0), s.Max())
	assert.Equal(t, time.Duration(0), s.Avg())
}

func TestUpdateTracksMinMaxAvg(t *testing.T) {
	s := New()
	s.Update(10 * time.Millisecond)
	s.Update(30 * time.Millisecond)
	s.Update(20 * time.Millisecond)

	assert.Equal(t, int64(3), s.Count())
	assert.Equal(t, 10*time.Millisecond, s.Min())
	assert.Equal(t, 30*time.Millisecond, s.Max())
	assert.Equal(t, 20*time.Millisecond, s.Avg())
}

func TestMerge(t *testing.T) {
	a := New()
	a.Update(10 * time.Millisecond)
	a.Update(20 * time.Millisecond)

	b := New()
	b.Update(5 * time.Millisecond)
	b.Update(45 * time.Millisecond)

	a.Merge(b)

	snap := a.Snapshot()
	assert.Equal(t, int64(4), snap.Count)
	assert.Equal(t, 5*time.Millisecond, snap.Min)
	assert.Equal(t, 45*time.Millisecond, snap.Max)
	assert.Equal(t, 20*time.Millisecond, snap.Avg)
}

func TestMergeEmptyAndNil(t *testing.T) {
	a := New()
	a.Update(time.Millisecond)

	a.Merge(New())
	a.Merge(nil)

	assert.Equal(t, int64(1), a.Count())
	assert.Equal(t, time.Millisecond, a.Min())
}

func TestReset(t *testing.T) {
	s := New()
	s.Update(time.Second)
	s.Reset()

	assert.Equal(t, int64(0), s.Count())
	assert.Equal(t, time.Duration(0), s.Max())
}

func TestConcurrentUpdates(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= 1000; i++ {
				s.Update(time.Duration(i) * time.Microsecond)
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, int64(8000), snap.Count)
	assert.Equal(t, time.Microsecond, snap.Min)
	assert.Equal(t, 1000*time.Microsecond, snap.Max)
}
