package snowflake

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerator_Monotonic(t *testing.T) {
	gen, err := NewGenerator(1)
	require.NoError(t, err)

	// 同一生成器生成的ID必须严格递增
	prev := int64(0)
	for i := 0; i < 10000; i++ {
		id := gen.Generate()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestGenerator_Concurrent_Unique(t *testing.T) {
	gen, err := NewGenerator(2)
	require.NoError(t, err)

	const workers = 8
	const perWorker = 2000

	var mu sync.Mutex
	seen := make(map[int64]struct{}, workers*perWorker)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, gen.Generate())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				_, dup := seen[id]
				require.False(t, dup, "duplicate id %d", id)
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
}

func TestGenerator_ClockRegression_StillMonotonic(t *testing.T) {
	gen, err := NewGenerator(3)
	require.NoError(t, err)

	first := gen.Generate()

	// 模拟时钟回拨：上次分配的时间戳在墙钟之后
	gen.mux.Lock()
	gen.lastTimestamp = time.Now().UnixNano()/1e6 + 60_000
	gen.mux.Unlock()

	// 回拨期间ID既不归零也不重复，仍严格递增
	id1 := gen.Generate()
	id2 := gen.Generate()
	require.NotZero(t, id1)
	require.Greater(t, id1, first)
	require.Greater(t, id2, id1)
}

func TestNewGenerator_WorkerIDRange(t *testing.T) {
	_, err := NewGenerator(-1)
	require.Error(t, err)

	_, err = NewGenerator(maxWorkerID + 1)
	require.Error(t, err)
}

func TestDefaultGenerator(t *testing.T) {
	id1 := Generate()
	id2 := Generate()
	require.Greater(t, id2, id1)
}
