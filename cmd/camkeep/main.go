// camkeep keeps a camera footage archive within its disk budget.
//
// Footage lives in per-day folders (<root>/.../YYYY/MM/DD). Each run protects
// the newest footage up to a recent budget, removes older clips in which the
// detection pipeline found none of the target objects, and evicts whole days,
// oldest first, once the remaining footage exceeds a historical budget.
//
// Usage:
//
//	# Run once with the budgets from the config file
//	camkeep run --config /etc/camkeep/camkeep.yaml
//
//	# See what a run would do without deleting anything
//	camkeep run --dry-run -o json
//
//	# Preview tiers and pending analysis
//	camkeep scan
//
//	# Run on a schedule and serve metrics and health endpoints
//	camkeep serve
//
//	# Show recorded runs
//	camkeep history --limit 10
package main

func main() {
	Execute()
}
