package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig     = goerr.New("invalid configuration")
	ErrDuplicateCategory = goerr.New("duplicate category")
	ErrDuplicateIncident = goerr.New("duplicate seed incident")
	ErrInvalidIncident   = goerr.New("invalid seed incident")
)

// Context keys for error values
const (
	ConfigPathKey    = "config_path"
	CategoryKey      = "category"
	IncidentIDKey    = "incident_id"
	IncidentIndexKey = "incident_index"
)
