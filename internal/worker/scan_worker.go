package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"spendscan/internal/amqp"
	"spendscan/internal/core"
)

// ScanStore parses a queued scan and keeps the resulting draft for review.
type ScanStore interface {
	StoreScan(ctx context.Context, msg *amqp.ReceiptScanMessage) (core.StoredDraft, error)
	ListDrafts(ctx context.Context) ([]core.StoredDraft, error)
}

// ScanConsumer delivers queued scans to a handler until ctx is done.
type ScanConsumer interface {
	ConsumeReceiptScans(ctx context.Context, handler amqp.ScanHandler) error
}

// ScanWorker turns queued receipt scans into drafts
type ScanWorker struct {
	store     ScanStore
	processed atomic.Int64
	failed    atomic.Int64
}

func NewScanWorker(store ScanStore) *ScanWorker {
	return &ScanWorker{store: store}
}

// HandleScan processes a single receipt scan message from AMQP. A returned
// error makes the consumer requeue the message.
func (w *ScanWorker) HandleScan(ctx context.Context, msg *amqp.ReceiptScanMessage) error {
	if msg == nil || msg.ScanID == "" {
		w.failed.Add(1)
		return errors.New("scan message without id")
	}

	slog.InfoContext(ctx, "Processing receipt scan",
		"scan_id", msg.ScanID,
		"text_length", len(msg.Text),
		"submitted_at", msg.SubmittedAt)

	draft, err := w.store.StoreScan(ctx, msg)
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("store scan %s: %w", msg.ScanID, err)
	}
	w.processed.Add(1)

	slog.InfoContext(ctx, "Stored receipt draft",
		"scan_id", msg.ScanID,
		"store", draft.Draft.StoreName,
		"amount", draft.Draft.Amount.StringFixed(2),
		"category", draft.Draft.Category)
	return nil
}

// StartupCheck logs the drafts still waiting for review, so an operator can
// spot scans that were processed while nobody was looking.
func (w *ScanWorker) StartupCheck(ctx context.Context) error {
	drafts, err := w.store.ListDrafts(ctx)
	if err != nil {
		return fmt.Errorf("list drafts for startup check: %w", err)
	}
	if len(drafts) == 0 {
		slog.InfoContext(ctx, "No pending drafts found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Drafts waiting for review",
		"count", len(drafts),
		"oldest", drafts[0].CreatedAt)
	return nil
}

// Run consumes scans until ctx is cancelled.
func (w *ScanWorker) Run(ctx context.Context, consumer ScanConsumer) error {
	if err := w.StartupCheck(ctx); err != nil {
		slog.WarnContext(ctx, "Startup check failed", "error", err)
	}
	err := consumer.ConsumeReceiptScans(ctx, w.HandleScan)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Counts returns how many scans were stored and how many failed.
func (w *ScanWorker) Counts() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}
