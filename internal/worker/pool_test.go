package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/snapstats/analyzer/internal/logic"
	"github.com/snapstats/analyzer/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// loaderFunc adapts a function to loader.Loader.
type loaderFunc func(ctx context.Context) ([]models.RawRecord, error)

func (f loaderFunc) Load(ctx context.Context) ([]models.RawRecord, error) { return f(ctx) }

func staticLog(games int) loaderFunc {
	return func(ctx context.Context) ([]models.RawRecord, error) {
		records := make([]models.RawRecord, games)
		for i := range records {
			records[i] = models.RawRecord{
				Locations: "sanctum,atlantis,wakanda",
				Cards:     "hulk",
				MyDeck:    "ongoing",
				Outcome:   models.OutcomeResolve,
				Cubes:     2,
			}
		}
		return records, nil
	}
}

func TestRun_PreservesJobOrder(t *testing.T) {
	jobs := []Job{
		{Source: "a.csv", Loader: staticLog(3)},
		{Source: "broken.csv", Loader: loaderFunc(func(ctx context.Context) ([]models.RawRecord, error) {
			return nil, errors.New("disk on fire")
		})},
		{Source: "empty.csv", Loader: staticLog(0)},
		{Source: "b.csv", Loader: staticLog(5)},
	}

	results := Run(context.Background(), PoolConfig{WorkerCount: 3, Logger: zap.NewNop()}, jobs)

	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}
	for i, res := range results {
		if res.Source != jobs[i].Source {
			t.Errorf("result %d is for %q, want %q", i, res.Source, jobs[i].Source)
		}
	}
	if results[0].Err != nil || results[0].Report.Games != 3 {
		t.Errorf("a.csv = %+v", results[0])
	}
	if results[1].Err == nil || results[1].Report != nil {
		t.Errorf("broken.csv should fail, got %+v", results[1])
	}
	if !errors.Is(results[2].Err, logic.ErrEmptyDataset) {
		t.Errorf("empty.csv error = %v, want ErrEmptyDataset", results[2].Err)
	}
	if results[3].Err != nil || results[3].Report.Games != 5 {
		t.Errorf("b.csv = %+v", results[3])
	}
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, PoolConfig{WorkerCount: 2, Logger: zap.NewNop()}, []Job{{Source: "a.csv", Loader: staticLog(1)}})
	if !errors.Is(results[0].Err, ErrPoolStopped) {
		t.Errorf("error = %v, want ErrPoolStopped", results[0].Err)
	}
}

func TestEnqueueFull(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	blocking := loaderFunc(func(ctx context.Context) ([]models.RawRecord, error) {
		once.Do(func() { close(started) })
		<-block
		return staticLog(1)(ctx)
	})

	p := NewPool(PoolConfig{WorkerCount: 1, QueueSize: 1, Logger: zap.NewNop()})
	p.Start(context.Background())

	if !p.Enqueue(Job{Source: "first", Loader: blocking}) {
		t.Fatal("Failed to enqueue first job")
	}
	<-started // worker is busy with the first job

	if !p.Enqueue(Job{Source: "second", Loader: blocking}) {
		t.Fatal("Failed to enqueue second job")
	}
	if p.Enqueue(Job{Source: "third", Loader: blocking}) {
		t.Error("Enqueue should have returned false when queue is full")
	}
	if p.QueueDepth() != 1 {
		t.Errorf("QueueDepth() = %d, want 1", p.QueueDepth())
	}

	close(block)
	p.Stop()

	var got []string
	for res := range p.Results() {
		got = append(got, res.Source)
	}
	if len(got) != 2 {
		t.Errorf("results = %v, want first and second", got)
	}
	if p.Enqueue(Job{Source: "late", Loader: blocking}) {
		t.Error("Enqueue after Stop should fail")
	}
}

func TestPool_ConcurrentEnqueue(t *testing.T) {
	p := NewPool(PoolConfig{WorkerCount: 4, QueueSize: 200, Logger: zap.NewNop()})
	p.Start(context.Background())

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if p.Enqueue(Job{Source: fmt.Sprintf("log-%d-%d", i, j), Loader: staticLog(1 + j%3)}) {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}
		}(i)
	}
	wg.Wait()
	p.Stop()

	n := 0
	for res := range p.Results() {
		if res.Err != nil {
			t.Errorf("%s: %v", res.Source, res.Err)
		}
		n++
	}
	if n != accepted {
		t.Errorf("got %d results for %d accepted jobs", n, accepted)
	}
}
