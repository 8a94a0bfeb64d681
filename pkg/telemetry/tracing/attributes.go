package tracing

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span names.
const (
	SpanRun   = "retention.run"
	SpanPhase = "retention.phase"
)

// Attribute keys recorded on retention spans.
const (
	AttrRunID          = attribute.Key("camkeep.run.id")
	AttrDryRun         = attribute.Key("camkeep.run.dry_run")
	AttrPhase          = attribute.Key("camkeep.phase")
	AttrFolders        = attribute.Key("camkeep.folders")
	AttrBoundary       = attribute.Key("camkeep.boundary")
	AttrFilesRemoved   = attribute.Key("camkeep.files_removed")
	AttrFoldersRemoved = attribute.Key("camkeep.folders_removed")
	AttrFailures       = attribute.Key("camkeep.failures")
	AttrRecentGB       = attribute.Key("camkeep.recent_gb")
	AttrHistoricalGB   = attribute.Key("camkeep.historical_gb")
)
