package notify

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrJTY/bookit/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	svc := &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: mr.Addr(),
		}),
		from:     "noreply@bookit.com",
		fromName: "Bookit",
		smtpHost: "localhost",
		smtpPort: "1025",
	}
	t.Cleanup(func() { svc.Close() })

	return svc, mr
}

func TestSendQueuesJob(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	err := svc.Send(ctx, "user@example.com", "User", "booking_confirmed", "Hello", "Test body")
	require.NoError(t, err)

	raw, err := mr.Lpop(queueKey)
	require.NoError(t, err)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, "user@example.com", job.To)
	assert.Equal(t, "booking_confirmed", job.Type)
	assert.Equal(t, 0, job.Tries)
}

func TestSendBookingConfirmation(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	start := time.Now().Add(96 * time.Hour)
	err := svc.SendBookingConfirmation(ctx, "user@example.com", "User", "Tennis Court", start, start.Add(time.Hour))
	require.NoError(t, err)

	raw, err := mr.Lpop(queueKey)
	require.NoError(t, err)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Contains(t, job.Subject, "Tennis Court")
	assert.Contains(t, job.Body, "confirmed")
}

func TestSendBookingCancellation(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	err := svc.SendBookingCancellation(ctx, "user@example.com", "User", "Tennis Court", time.Now())
	require.NoError(t, err)

	raw, err := mr.Lpop(queueKey)
	require.NoError(t, err)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, "booking_cancelled", job.Type)
}

func TestQueueLength(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.Equal(t, int64(0), svc.QueueLength(ctx))

	require.NoError(t, svc.Send(ctx, "a@example.com", "A", "booking_confirmed", "s", "b"))
	require.NoError(t, svc.Send(ctx, "b@example.com", "B", "booking_cancelled", "s", "b"))

	assert.Equal(t, int64(2), svc.QueueLength(ctx))
}

func TestProcessNextRequeuesOnFailure(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	// No SMTP server listens on the test port, so delivery fails and the job
	// goes back on the queue with an incremented try counter.
	require.NoError(t, svc.Send(ctx, "user@example.com", "User", "booking_confirmed", "s", "b"))

	svc.processNext(ctx)

	raw, err := mr.Lpop(queueKey)
	require.NoError(t, err)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, 1, job.Tries)
}
