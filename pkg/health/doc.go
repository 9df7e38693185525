/*
Package health implements the post-start health gate.

After the applier adds a container whose image declares a health check, the
deployment must not proceed until that container reports healthy: later
changes may depend on it, and a broken image should fail the run where it
happened. The gate polls the engine's health probe under an exponentially
growing timeout.

# Gate Behavior

	timeout ← Base (5s)
	loop:
	    run probe bounded by timeout
	    success  ⇒ done
	    timeout  ⇒ timeout ← timeout × 2
	    failure  ⇒ keep timeout
	    sleep timeout, retry

Probe failures never escape the gate. The loop runs until the container is
healthy, the context is cancelled, or the optional Cap on total elapsed
time is exceeded (disabled by default: supervision outside Ferry decides
when a persistently unhealthy container is killed).

# Usage

	gate := health.NewGate(health.Config{Base: 5 * time.Second})
	err := gate.Wait(ctx, func(ctx context.Context, timeout time.Duration) (command.Status, error) {
		return engine.RunHealthcheck(ctx, "web-0", timeout)
	})

# See Also

  - pkg/applier for when the gate runs
  - pkg/engine for the probe implementation
*/
package health
