package observability

import "testing"

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("not-a-level"); err == nil {
		t.Fatal("expected an error for an invalid log level")
	}
}

func TestNewValidLevelAndWith(t *testing.T) {
	log, err := New("debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	scoped := log.With("request_id", "abc-123")
	scoped.Infow("started")
	scoped.Warnw("degraded", "analyzer", "xmit")
	scoped.Errorw("failed", "error", "boom")
	if err := log.Sync(); err != nil {
		t.Logf("sync returned %v (stdout sync errors are expected on some platforms)", err)
	}
}

func TestNopDoesNotPanic(t *testing.T) {
	var nilLogger *Logger
	nilLogger.Infow("should be a no-op")
	nilLogger.Warnw("should be a no-op")
	nilLogger.Errorw("should be a no-op")
	if nilLogger.With("k", "v") == nil {
		t.Fatal("With on a nil Logger should return a usable Nop logger")
	}

	nop := Nop()
	nop.Infow("discarded")
}
