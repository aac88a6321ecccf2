package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldConfig   = "config"
	FieldEstimate = "estimate"
	FieldOverscan = "overscan"
	FieldJobs     = "jobs"
	FieldWidth    = "width"

	// List fields.
	FieldItems           = "items"
	FieldScrollOffset    = "scroll_offset"
	FieldContainerHeight = "container_height"
	FieldStart           = "start"
	FieldEnd             = "end"
	FieldPass            = "pass"
	FieldUpdates         = "updates"
	FieldTotalHeight     = "total_height"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesErrored    = "files_errored"
	FieldUnconverged     = "unconverged"
	FieldHitRate         = "hit_rate"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
