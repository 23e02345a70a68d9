package constants

var (
	VERSION = "0.1.0"

	// Set at build time by the magefile.
	BUILD_TIME  = ""
	COMMIT_HASH = ""

	// Names the config file when --config is not given.
	EVENTFMT_CONFIG = "EVENTFMT_CONFIG"

	// The event field selecting the formatter definition.
	DATA_TYPE_FIELD = "data_type"
)
