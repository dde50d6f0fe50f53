package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendscan/internal/amqp"
	"spendscan/internal/core"
	"spendscan/internal/services"
	"spendscan/internal/storage/memory"
)

type stubStore struct {
	err    error
	stored []*amqp.ReceiptScanMessage
}

func (s *stubStore) StoreScan(_ context.Context, msg *amqp.ReceiptScanMessage) (core.StoredDraft, error) {
	if s.err != nil {
		return core.StoredDraft{}, s.err
	}
	s.stored = append(s.stored, msg)
	return core.StoredDraft{ID: msg.ScanID}, nil
}

func (s *stubStore) ListDrafts(context.Context) ([]core.StoredDraft, error) {
	return nil, s.err
}

// sliceConsumer hands each message to the handler once, then blocks until ctx is done.
type sliceConsumer struct {
	msgs    []*amqp.ReceiptScanMessage
	results []error
}

func (c *sliceConsumer) ConsumeReceiptScans(ctx context.Context, handler amqp.ScanHandler) error {
	for _, m := range c.msgs {
		c.results = append(c.results, handler(ctx, m))
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleScan(t *testing.T) {
	store := &stubStore{}
	w := NewScanWorker(store)

	msg := amqp.NewReceiptScanMessage("SHOP\nTotal 1.00", nil)
	if err := w.HandleScan(context.Background(), msg); err != nil {
		t.Fatalf("HandleScan: %v", err)
	}
	if len(store.stored) != 1 || store.stored[0].ScanID != msg.ScanID {
		t.Fatalf("expected message to be stored, got %v", store.stored)
	}
	if processed, failed := w.Counts(); processed != 1 || failed != 0 {
		t.Errorf("unexpected counts processed=%d failed=%d", processed, failed)
	}
}

func TestHandleScanErrors(t *testing.T) {
	w := NewScanWorker(&stubStore{err: errors.New("database is locked")})

	if err := w.HandleScan(context.Background(), &amqp.ReceiptScanMessage{}); err == nil {
		t.Error("expected error for message without id")
	}
	if err := w.HandleScan(context.Background(), amqp.NewReceiptScanMessage("x", nil)); err == nil {
		t.Error("expected store error to be returned so the message is requeued")
	}
	if _, failed := w.Counts(); failed != 2 {
		t.Errorf("expected 2 failures, got %d", failed)
	}
}

func TestRunStoresDrafts(t *testing.T) {
	store := memory.New()
	clock := func() time.Time { return time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC) }
	svc := services.NewExpenseService(store, nil, services.WithClock(clock))
	w := NewScanWorker(svc)

	consumer := &sliceConsumer{msgs: []*amqp.ReceiptScanMessage{
		amqp.NewReceiptScanMessage("FRESH MARKET\nApples 3.20\nTotal 3.20", nil),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, consumer) }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if processed, _ := w.Counts(); processed == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run should return nil on cancellation, got %v", err)
	}

	drafts, err := store.ListDrafts(context.Background())
	if err != nil || len(drafts) != 1 {
		t.Fatalf("expected one draft, got %d (err=%v)", len(drafts), err)
	}
	d := drafts[0].Draft
	if d.StoreName != "FRESH MARKET" || !d.Amount.Equal(decimal.RequireFromString("3.20")) {
		t.Errorf("unexpected draft %+v", d)
	}
	if d.Date.String() != "2025-05-02" {
		t.Errorf("expected clock date, got %s", d.Date)
	}
}

func TestStartupCheck(t *testing.T) {
	if err := NewScanWorker(&stubStore{}).StartupCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := NewScanWorker(&stubStore{err: errors.New("boom")}).StartupCheck(context.Background()); err == nil {
		t.Error("expected list error")
	}
}
