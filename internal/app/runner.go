package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/wirecard-go/internal/config"
	"github.com/Adda-Baaj/wirecard-go/internal/journal"
	"github.com/Adda-Baaj/wirecard-go/internal/logger"
	"github.com/Adda-Baaj/wirecard-go/pkg/httpclient"
	"github.com/Adda-Baaj/wirecard-go/pkg/publishers"
	"github.com/Adda-Baaj/wirecard-go/pkg/wirecard"
)

// ErrUnknownOperation is returned for command names the runner does not map.
var ErrUnknownOperation = errors.New("unknown operation")

// Command is one CLI invocation.
type Command struct {
	Operation string
	ID        string
	Payload   json.RawMessage
}

// Runner executes commands against the API and records their outcome in the
// journal and on the configured publishers.
type Runner struct {
	client *wirecard.Client
	store  journal.Store
	fanout *publishers.Fanout
	log    logger.Logger
}

// NewRunner wires a runner from already-built parts. store and fanout may be nil.
func NewRunner(client *wirecard.Client, store journal.Store, fanout *publishers.Fanout, log logger.Logger) *Runner {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if store == nil {
		store, _ = journal.NewStore("none", "", journal.Options{})
	}
	return &Runner{client: client, store: store, fanout: fanout, log: log}
}

// Build constructs the client, journal and publishers described by cfg.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := wirecard.ParseEnvironment(cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	client, err := wirecard.New(env, cfg.Key, cfg.Token,
		wirecard.WithHTTPClient(httpclient.NewRestyClient(cfg.HTTPTimeout)),
		wirecard.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}
	log.InfoObj("wirecard client initialized", "client_config", map[string]any{
		"environment":     env.String(),
		"base_url":        client.BaseURL(),
		"timeout_seconds": int(cfg.HTTPTimeout.Seconds()),
	})

	store, err := journal.NewStore(cfg.JournalType, cfg.JournalPath, journal.Options{
		EntryTTL:        cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.InfoObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"entry_ttl_seconds":        int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return NewRunner(client, store, fanout, log), nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Run executes cmd and returns what should be printed for it.
func (r *Runner) Run(ctx context.Context, cmd Command) (string, error) {
	if r == nil || r.client == nil {
		return "", fmt.Errorf("runner is not initialized")
	}

	op, ok := operations[strings.ToLower(strings.TrimSpace(cmd.Operation))]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownOperation, cmd.Operation)
	}
	if op.needsID && strings.TrimSpace(cmd.ID) == "" {
		return "", fmt.Errorf("operation %s requires an id", cmd.Operation)
	}
	if op.needsPayload && len(cmd.Payload) == 0 {
		return "", fmt.Errorf("operation %s requires a JSON payload", cmd.Operation)
	}

	var payload json.RawMessage
	if op.needsPayload {
		payload = cmd.Payload
	}
	res, callErr := op.call(ctx, r.client, cmd.ID, payload)
	r.record(ctx, op.name, res, callErr)
	if callErr != nil {
		return "", callErr
	}
	return res.output, nil
}

// record journals and publishes an outcome. Neither failure fails the call.
func (r *Runner) record(ctx context.Context, opName string, res outcome, callErr error) {
	entry := journal.Entry{
		Operation:   opName,
		ResourceID:  res.resourceID,
		Environment: r.client.Environment().String(),
		Outcome:     journal.OutcomeOK,
		StatusCode:  res.statusCode,
	}
	if callErr != nil {
		entry.Outcome = journal.OutcomeError
		entry.Message = callErr.Error()
		if status, ok := wirecard.StatusCode(callErr); ok {
			entry.StatusCode = status
		}
	}

	saved, err := r.store.Record(entry)
	if err != nil {
		r.log.WarnObj("journal record failed", "journal_error", map[string]any{
			"operation": opName,
			"error":     err.Error(),
		})
	}

	if r.fanout.Size() == 0 {
		return
	}
	evt := publishers.NewEvent(opName, entry.Environment, entry.Outcome)
	evt.ResourceID = entry.ResourceID
	evt.StatusCode = entry.StatusCode
	evt.Message = entry.Message
	evt.JournalID = saved.ID
	if _, err := r.fanout.Publish(ctx, evt); err != nil {
		r.log.WarnObj("outcome publish failed", "publish_error", map[string]any{
			"operation": opName,
			"error":     err.Error(),
		})
	}
}

// History returns up to limit recent journal entries, newest first.
func (r *Runner) History(limit int) ([]journal.Entry, error) {
	if r == nil || r.store == nil {
		return nil, nil
	}
	return r.store.Recent(limit)
}

// Close releases the journal and publisher resources.
func (r *Runner) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
	}
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
