package cli

var (
	PrintIncidents = printIncidents
	GetIndexConfig = getIndexConfig
)
