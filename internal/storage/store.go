// Package storage forwards registrations to the clinic's spreadsheet.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kpphospital/mch-appointments/internal/appointment"
	"github.com/kpphospital/mch-appointments/internal/upstream"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// ErrNotSuccess is returned when the spreadsheet answered 2xx but did not
// confirm the append.
var ErrNotSuccess = errors.New("storage: upstream did not report success")

// Store appends one registration and returns the upstream's JSON reply.
type Store interface {
	Append(ctx context.Context, req appointment.Request) (json.RawMessage, error)
}

// Forwarder is the storage side of a submission. Storage is append-only.
type Forwarder struct {
	store  Store
	logger *logging.Logger
}

// NewForwarder wraps a store.
func NewForwarder(store Store, logger *logging.Logger) *Forwarder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Forwarder{store: store, logger: logger}
}

// Forward appends req and discards the upstream reply.
func (f *Forwarder) Forward(ctx context.Context, req appointment.Request) error {
	_, err := f.Save(ctx, req)
	return err
}

// Save appends req and returns the upstream reply on success.
func (f *Forwarder) Save(ctx context.Context, req appointment.Request) (json.RawMessage, error) {
	if f == nil || f.store == nil {
		return nil, errors.New("storage: no store configured")
	}
	data, err := f.store.Append(ctx, req)
	if err != nil {
		f.logger.Error("storage: append failed", "error", err, "transport", upstream.IsTransport(err))
		return nil, fmt.Errorf("storage: append: %w", err)
	}
	return data, nil
}
