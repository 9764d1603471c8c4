package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fm-dev-mx/real-estate-insights/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func makeBatch(ids ...string) []*models.Property {
	batch := make([]*models.Property, 0, len(ids))
	for _, id := range ids {
		batch = append(batch, &models.Property{ID: id})
	}
	return batch
}

func TestPushAndLen(t *testing.T) {
	q := NewPropertyQueue(2, testLogger())
	defer q.Close()

	require.NoError(t, q.Push(makeBatch("EB-001")))
	require.NoError(t, q.Push(makeBatch("EB-002", "EB-003")))
	assert.Equal(t, 2, q.Len())
}

func TestPushFullQueue(t *testing.T) {
	q := NewPropertyQueue(1, testLogger())
	defer q.Close()

	require.NoError(t, q.Push(makeBatch("EB-001")))
	err := q.Push(makeBatch("EB-002"))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestPushClosedQueue(t *testing.T) {
	q := NewPropertyQueue(1, testLogger())
	require.NoError(t, q.Close())

	err := q.Push(makeBatch("EB-001"))
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.True(t, q.IsClosed())
}

func TestCloseIsIdempotent(t *testing.T) {
	q := NewPropertyQueue(1, testLogger())
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
}

func TestSubscriberReceivesBatches(t *testing.T) {
	q := NewPropertyQueue(4, testLogger())
	defer q.Close()

	var mu sync.Mutex
	received := make([]string, 0)
	done := make(chan struct{})

	q.Subscribe(func(batch []*models.Property) error {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range batch {
			received = append(received, p.ID)
		}
		if len(received) == 3 {
			close(done)
		}
		return nil
	})
	q.Start()

	require.NoError(t, q.Push(makeBatch("EB-001", "EB-002")))
	require.NoError(t, q.Push(makeBatch("EB-003")))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for batches")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"EB-001", "EB-002", "EB-003"}, received)
}

func TestMultipleSubscribers(t *testing.T) {
	q := NewPropertyQueue(4, testLogger())
	defer q.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		q.Subscribe(func(batch []*models.Property) error {
			wg.Done()
			return nil
		})
	}
	q.Start()

	require.NoError(t, q.Push(makeBatch("EB-001")))

	waited := make(chan struct{})
	go func() {
		wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscribers")
	}
}
