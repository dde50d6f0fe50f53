package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spendscan/internal/sheets"
)

// ReportProcessorConfig holds configuration for the report processor
type ReportProcessorConfig struct {
	// Interval is how often the summary is republished (default: 15m)
	Interval time.Duration

	// Timeout bounds a single publish (default: 30s)
	Timeout time.Duration
}

// DefaultReportProcessorConfig returns sensible defaults
func DefaultReportProcessorConfig() ReportProcessorConfig {
	return ReportProcessorConfig{
		Interval: 15 * time.Minute,
		Timeout:  30 * time.Second,
	}
}

// ReportStats summarises the processor's publishing history.
type ReportStats struct {
	Runs        int
	Failures    int
	LastSuccess time.Time
	LastError   string
}

// ReportProcessor periodically publishes the budget table and the category
// breakdown to a spreadsheet.
type ReportProcessor struct {
	service *ExpenseService
	writer  sheets.SummaryWriter
	config  ReportProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	stats   ReportStats
}

func NewReportProcessor(service *ExpenseService, writer sheets.SummaryWriter, config ReportProcessorConfig) *ReportProcessor {
	return &ReportProcessor{
		service: service,
		writer:  writer,
		config:  config,
	}
}

// Start begins the publishing loop. Returns an error if already running.
func (p *ReportProcessor) Start(ctx context.Context) error {
	if p.config.Interval <= 0 {
		return fmt.Errorf("report interval must be positive, got %s", p.config.Interval)
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("report processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Report processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *ReportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Report processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Report processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *ReportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ReportProcessor) Stats() ReportStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *ReportProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Publish immediately on startup
	p.publishLogged(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.publishLogged(ctx)
		}
	}
}

func (p *ReportProcessor) publishLogged(ctx context.Context) {
	if err := p.Publish(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to publish report", "error", err)
	}
}

// Publish writes the current budget table and category breakdown once.
func (p *ReportProcessor) Publish(ctx context.Context) error {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	err := p.publish(ctx)

	p.mu.Lock()
	p.stats.Runs++
	if err != nil {
		p.stats.Failures++
		p.stats.LastError = err.Error()
	} else {
		p.stats.LastSuccess = p.service.now()
		p.stats.LastError = ""
	}
	p.mu.Unlock()
	return err
}

func (p *ReportProcessor) publish(ctx context.Context) error {
	overview, err := p.service.Budgets(ctx)
	if err != nil {
		return err
	}
	dash, err := p.service.Dashboard(ctx)
	if err != nil {
		return err
	}

	if err := p.writer.WriteBudgets(ctx, overview.Budgets); err != nil {
		return fmt.Errorf("write budgets: %w", err)
	}
	if err := p.writer.WriteCategories(ctx, dash.Categories); err != nil {
		return fmt.Errorf("write categories: %w", err)
	}

	slog.InfoContext(ctx, "Published report",
		"budgets", len(overview.Budgets),
		"categories", len(dash.Categories))
	return nil
}
