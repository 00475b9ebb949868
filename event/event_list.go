package event

// Toolkit events
const (
	CONFIG_LOADING = "config-loading"
	CONFIG_LOADED  = "config-loaded"
	CONFIG_ERROR   = "config-error"

	SECTION_MAP_LOADED = "section-map-loaded"
	SECTION_MAP_ERROR  = "section-map-error"

	ADDR_SPLIT    = "addr-split"
	ADDR_RESOLVED = "addr-resolved"
	ADDR_ERROR    = "addr-error"
)

// Instance events
const (
	CONN_OPENING = "conn-opening"
	CONN_OPENED  = "conn-opened"
	CONN_CLOSED  = "conn-closed"
	QUERY_RUN    = "query-run"

	MYSQL_EXEC       = "mysql-exec"
	MYSQL_EXEC_ERROR = "mysql-exec-error"
)
