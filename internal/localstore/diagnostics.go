package localstore

import (
	"context"
	"strconv"
	"time"
)

const (
	transportNamespace = "transport"

	keyLastConnected = "last_connected_at"
	keyLastError     = "last_connect_error"
	keyLastErrorAt   = "last_connect_error_at"
)

// Diagnostics records the transport's connection history.
type Diagnostics struct {
	store *SQLiteStore
}

// NewDiagnostics wraps store.
func NewDiagnostics(store *SQLiteStore) *Diagnostics {
	return &Diagnostics{store: store}
}

// Snapshot is the last known connection history.
type Snapshot struct {
	LastConnected time.Time
	LastError     string
	LastErrorAt   time.Time
}

// RecordConnected stores the time of a successful connect.
func (d *Diagnostics) RecordConnected(ctx context.Context, at time.Time) error {
	return d.store.Set(ctx, transportNamespace, keyLastConnected, formatMillis(at))
}

// RecordConnectError stores the last connect failure.
func (d *Diagnostics) RecordConnectError(ctx context.Context, at time.Time, cause error) error {
	if err := d.store.Set(ctx, transportNamespace, keyLastError, cause.Error()); err != nil {
		return err
	}
	return d.store.Set(ctx, transportNamespace, keyLastErrorAt, formatMillis(at))
}

// Load reads the stored history.
func (d *Diagnostics) Load(ctx context.Context) (Snapshot, error) {
	entries, err := d.store.List(ctx, transportNamespace)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		LastConnected: parseMillis(entries[keyLastConnected]),
		LastError:     entries[keyLastError],
		LastErrorAt:   parseMillis(entries[keyLastErrorAt]),
	}, nil
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseMillis(raw string) time.Time {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
