package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/kalakriti/pkg/queue"
	"github.com/stretchr/testify/require"
)

var (
	echoRuns atomic.Int32
	failRuns atomic.Int32
)

type echoJob struct {
	Val string `json:"val"`
}

func (echoJob) Name() string { return "test.echo" }

func (j *echoJob) Handle(context.Context) error {
	echoRuns.Add(1)
	return nil
}

type failJob struct{}

func (failJob) Name() string { return "test.fail" }

func (failJob) Handle(context.Context) error {
	failRuns.Add(1)
	return errors.New("always fails")
}

func init() {
	queue.Register("test.echo", func() queue.Job { return &echoJob{} })
	queue.Register("test.fail", func() queue.Job { return &failJob{} })
	queue.StartWorkers(context.Background(), 2)
}

func TestDispatchAndProcess(t *testing.T) {
	before := echoRuns.Load()
	require.NoError(t, queue.Dispatch(&echoJob{Val: "hello"}))

	require.Eventually(t, func() bool {
		return echoRuns.Load() > before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFailingJobIsRetried(t *testing.T) {
	queue.SetMaxRetry(2)
	defer queue.SetMaxRetry(3)

	before := failRuns.Load()
	require.NoError(t, queue.Dispatch(&failJob{}))

	// 2 attempts with 1s backoff between them.
	require.Eventually(t, func() bool {
		return failRuns.Load() >= before+2
	}, 5*time.Second, 50*time.Millisecond)
}

func TestDispatchConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queue.Dispatch(&echoJob{Val: "c"}) //nolint:errcheck
		}()
	}
	wg.Wait()
}
