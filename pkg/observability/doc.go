/*
Package observability turns runtime lifecycle hooks into Prometheus metrics
and structured log lines.

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	rt, _ := arbor.New(host, arbor.WithLifecycleHooks(domain.MergeHooks(
		metrics.Hooks(),
		observability.LogHooks(logger),
	)))
*/
package observability
