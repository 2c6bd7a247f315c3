package media

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helmetkiosk/internal/logger"
)

type fakeDevice struct {
	closed atomic.Bool
}

func (d *fakeDevice) Close() error {
	d.closed.Store(true)
	return nil
}

type fakeOpener struct {
	mu      sync.Mutex
	opened  []*fakeDevice
	failErr error
}

func (o *fakeOpener) Open(_ context.Context, _ string) (*fakeDevice, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failErr != nil {
		return nil, o.failErr
	}
	d := &fakeDevice{}
	o.opened = append(o.opened, d)
	return d, nil
}

func (o *fakeOpener) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.opened)
}

func newTestSource(o *fakeOpener) *Source[*fakeDevice] {
	return NewSource[*fakeDevice]("0", o.Open, logger.NewDiscard())
}

func TestSource_StartStop(t *testing.T) {
	opener := &fakeOpener{}
	src := newTestSource(opener)

	require.NoError(t, src.Start(context.Background()))
	assert.True(t, src.Active())

	session, ok := src.Session()
	require.True(t, ok)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "0", session.Device)

	src.Stop()
	assert.False(t, src.Active())
	assert.True(t, opener.opened[0].closed.Load())

	_, ok = src.Session()
	assert.False(t, ok)
}

func TestSource_StartTwiceAcquiresOnce(t *testing.T) {
	opener := &fakeOpener{}
	src := newTestSource(opener)

	require.NoError(t, src.Start(context.Background()))
	first, _ := src.Session()
	require.NoError(t, src.Start(context.Background()))
	second, _ := src.Session()

	assert.Equal(t, 1, opener.count())
	assert.Equal(t, first.ID, second.ID)
}

func TestSource_ConcurrentStartsAcquireOnce(t *testing.T) {
	opener := &fakeOpener{}
	src := newTestSource(opener)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = src.Start(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, opener.count())
}

func TestSource_StopWhenInactiveIsNoop(t *testing.T) {
	src := newTestSource(&fakeOpener{})

	src.Stop()
	src.Stop()

	assert.False(t, src.Active())
}

func TestSource_StartFailureIsCameraUnavailable(t *testing.T) {
	opener := &fakeOpener{failErr: errors.New("permission denied")}
	src := newTestSource(opener)

	err := src.Start(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCameraUnavailable)
	assert.Contains(t, err.Error(), "permission denied")
	assert.False(t, src.Active())
}

func TestSource_SequencesKeepAtMostOneSession(t *testing.T) {
	opener := &fakeOpener{}
	src := newTestSource(opener)
	ctx := context.Background()

	ops := []string{"start", "start", "stop", "stop", "start", "stop", "start", "start"}
	for _, op := range ops {
		if op == "start" {
			require.NoError(t, src.Start(ctx))
		} else {
			src.Stop()
		}

		open := 0
		for _, d := range opener.opened {
			if !d.closed.Load() {
				open++
			}
		}
		assert.LessOrEqual(t, open, 1, "after %s", op)
		assert.Equal(t, open == 1, src.Active(), "after %s", op)
	}
	assert.Equal(t, 3, opener.count())
}

func TestSource_With(t *testing.T) {
	src := newTestSource(&fakeOpener{})

	err := src.With(func(*fakeDevice) error { return nil })
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, src.Start(context.Background()))
	called := false
	require.NoError(t, src.With(func(d *fakeDevice) error {
		called = d != nil
		return nil
	}))
	assert.True(t, called)
}
