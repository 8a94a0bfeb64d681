package retention

import (
	"camkeep-hq/camkeep/pkg/config"
)

// Budget is the configuration of one run. It is not modified by the engine.
type Budget struct {
	// RecentBudgetGB protects the newest footage unconditionally.
	RecentBudgetGB float64

	// HistoricalBudgetGB caps older footage that contains target objects.
	HistoricalBudgetGB float64

	// TargetObjects is the set of labels that justify keeping a historical
	// file.
	TargetObjects []string

	// DryRun logs every decision without deleting anything.
	DryRun bool

	// FreeSpaceBufferGB and DiskCapacityGB are only used to report the
	// expected free space.
	FreeSpaceBufferGB float64
	DiskCapacityGB    float64

	// KeepUnanalyzed keeps historical files the detection pipeline has not
	// analyzed yet instead of treating them as having no detections.
	KeepUnanalyzed bool
}

// BudgetFromConfig builds a Budget from the retention section.
func BudgetFromConfig(cfg *config.RetentionConfig) Budget {
	targets := make([]string, len(cfg.TargetObjects))
	copy(targets, cfg.TargetObjects)

	return Budget{
		RecentBudgetGB:     cfg.RecentBudgetGB,
		HistoricalBudgetGB: cfg.HistoricalBudgetGB,
		TargetObjects:      targets,
		DryRun:             cfg.DryRun,
		FreeSpaceBufferGB:  cfg.FreeSpaceBufferGB,
		DiskCapacityGB:     cfg.DiskCapacityGB,
		KeepUnanalyzed:     cfg.UnanalyzedPolicy == config.UnanalyzedKeep,
	}
}
