/*
Package metrics defines Ferry's Prometheus instruments.

Ferry runs are one-shot processes, so there is no endpoint to scrape.
Instruments accumulate into a private registry during the run and are
pushed to a Pushgateway at the end when `metrics_gateway` is configured;
otherwise the package is inert.

Instruments:

	ferry_images_built_total          builds that produced a new artifact
	ferry_build_cache_hits_total      builds satisfied by the workbench
	ferry_build_duration_seconds      per-image build time
	ferry_changes_planned_total       planned changes by operator
	ferry_changes_applied_total       applied changes by operator
	ferry_health_probes_total         health probes by status
	ferry_reconcile_duration_seconds  full reconcile time
	ferry_runs_total                  runs by kind and outcome

# Usage

	metrics.ImagesBuilt.Inc()
	metrics.ChangesApplied.WithLabelValues("add").Inc()

	if cfg.MetricsGateway != "" {
		if err := metrics.Push(cfg.MetricsGateway, "build"); err != nil {
			logger.Warn().Err(err).Msg("failed to push metrics")
		}
	}

A failed push is logged, never fatal: observability must not break deploys.
*/
package metrics
