package main

import (
	"context"
	"time"
)

// startBackgroundJobs runs the periodic maintenance loops until ctx ends.
func (app *application) startBackgroundJobs(ctx context.Context) {
	if app.aggregates != nil && app.config.background.reconcileInterval > 0 {
		go app.every(ctx, app.config.background.reconcileInterval, app.reconcileAggregates)
	}
	if app.config.background.pushTokenMaxAge > 0 {
		go app.every(ctx, 24*time.Hour, app.pruneStalePushTokens)
	}
}

// every runs job once immediately and then on each tick.
func (app *application) every(ctx context.Context, interval time.Duration, job func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	job(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

func (app *application) reconcileAggregates(ctx context.Context) {
	fixed, err := app.aggregates.Reconcile(ctx)
	if err != nil {
		app.logger.Errorf("Error reconciling business aggregates: %v", err)
		return
	}
	if fixed > 0 && app.metrics != nil {
		app.metrics.AggregatesFixed.Add(float64(fixed))
	}
	app.logger.Infof("Reconciled %d business aggregates at %s", fixed, time.Now().Format(time.RFC1123))
}

func (app *application) pruneStalePushTokens(ctx context.Context) {
	n, err := app.store.PushTokens.PruneStale(ctx, app.config.background.pushTokenMaxAge)
	if err != nil {
		app.logger.Errorf("Error pruning stale push tokens: %v", err)
		return
	}
	app.logger.Infof("Pruned %d stale push tokens at %s", n, time.Now().Format(time.RFC1123))
}
