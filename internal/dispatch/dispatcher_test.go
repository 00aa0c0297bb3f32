package dispatch

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpphospital/mch-appointments/internal/appointment"
	"github.com/kpphospital/mch-appointments/internal/observability/metrics"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

type fakeForwarder struct {
	mu    sync.Mutex
	calls []appointment.Request
	err   error
	delay time.Duration
}

func (f *fakeForwarder) Forward(ctx context.Context, req appointment.Request) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.err
}

func (f *fakeForwarder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testRequest() appointment.Request {
	return appointment.Request{
		FirstName:       "สมหญิง",
		LastName:        "ใจดี",
		Phone:           "0812345678",
		NationalID:      "1234567890123",
		AppointmentDate: "2026-10-21",
		AppointmentTime: "10:00",
		Service:         string(appointment.ServiceAntenatal),
	}
}

func newDispatcher(notifier, storage Forwarder) (*Dispatcher, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "debug")
	return New(notifier, storage, metrics.NewSubmissionMetrics(prometheus.NewRegistry()), logger), &buf
}

func TestSubmit_BothSucceed(t *testing.T) {
	notifier, storage := &fakeForwarder{}, &fakeForwarder{}
	d, _ := newDispatcher(notifier, storage)

	id, err := d.Submit(context.Background(), testRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, 1, storage.count())
	assert.Equal(t, testRequest(), notifier.calls[0], "each forwarder gets the full request")
	assert.Equal(t, testRequest(), storage.calls[0])
}

func TestSubmit_EitherFailureIsOpaque(t *testing.T) {
	tests := []struct {
		name       string
		notifyErr  error
		storageErr error
	}{
		{"notification fails", errors.New("line 401"), nil},
		{"storage fails", nil, errors.New("sheet locked")},
		{"both fail", errors.New("line 401"), errors.New("sheet locked")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeForwarder{err: tt.notifyErr}
			storage := &fakeForwarder{err: tt.storageErr}
			d, _ := newDispatcher(notifier, storage)

			_, err := d.Submit(context.Background(), testRequest())
			require.ErrorIs(t, err, ErrSubmissionFailed)
			if tt.notifyErr != nil {
				assert.NotErrorIs(t, err, tt.notifyErr)
			}
			assert.Equal(t, 1, notifier.count(), "notifier called exactly once")
			assert.Equal(t, 1, storage.count(), "storage called exactly once")
		})
	}
}

func TestSubmit_WaitsForSlowSibling(t *testing.T) {
	notifier := &fakeForwarder{err: errors.New("fast failure")}
	storage := &fakeForwarder{delay: 30 * time.Millisecond}
	d, _ := newDispatcher(notifier, storage)

	_, err := d.Submit(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, 1, storage.count(), "storage must settle before Submit returns")
}

type barrierForwarder struct {
	arrived *atomic.Int32
	release chan struct{}
}

func (b barrierForwarder) Forward(ctx context.Context, req appointment.Request) error {
	if b.arrived.Add(1) == 2 {
		close(b.release)
	}
	select {
	case <-b.release:
		return nil
	case <-time.After(time.Second):
		return errors.New("calls were not in flight together")
	}
}

func TestSubmit_CallsAreConcurrent(t *testing.T) {
	arrived := &atomic.Int32{}
	release := make(chan struct{})
	fw := barrierForwarder{arrived: arrived, release: release}
	d, _ := newDispatcher(fw, fw)

	_, err := d.Submit(context.Background(), testRequest())
	assert.NoError(t, err)
}

func TestSubmit_LogsBothReasons(t *testing.T) {
	notifier := &fakeForwarder{err: errors.New("line says unauthorized")}
	storage := &fakeForwarder{err: errors.New("apps script says quota")}
	d, logs := newDispatcher(notifier, storage)

	_, err := d.Submit(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, logs.String(), "line says unauthorized")
	assert.Contains(t, logs.String(), "apps script says quota")
	assert.NotContains(t, err.Error(), "unauthorized")
}

func TestSubmit_FlagsPartialSuccess(t *testing.T) {
	notifier := &fakeForwarder{err: errors.New("line down")}
	storage := &fakeForwarder{}
	d, logs := newDispatcher(notifier, storage)

	_, err := d.Submit(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, logs.String(), "partial success")
}

// Nothing deduplicates submissions, so a retry after a storage failure
// notifies staff a second time.
func TestSubmit_ResubmissionDuplicatesDelivery(t *testing.T) {
	notifier := &fakeForwarder{}
	storage := &fakeForwarder{err: errors.New("sheet unavailable")}
	d, _ := newDispatcher(notifier, storage)

	firstID, err := d.Submit(context.Background(), testRequest())
	require.Error(t, err)

	storage.mu.Lock()
	storage.err = nil
	storage.mu.Unlock()

	secondID, err := d.Submit(context.Background(), testRequest())
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)
	assert.Equal(t, 2, notifier.count())
	assert.Equal(t, 2, storage.count())
}
