package types

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// IncidentID identifies an incident in the INC-YYYY-NNN format
type IncidentID string

var incidentIDPattern = regexp.MustCompile(`^INC-(\d{4})-(\d{3,})$`)

// NewIncidentID formats a year and sequence number as an IncidentID. The
// sequence is zero-padded to three digits and widens beyond 999.
func NewIncidentID(year int, seq int64) IncidentID {
	return IncidentID(fmt.Sprintf("INC-%04d-%03d", year, seq))
}

// Validate checks that the ID follows the INC-YYYY-NNN format
func (id IncidentID) Validate() error {
	if id == "" {
		return goerr.New("incident ID cannot be empty")
	}
	if !incidentIDPattern.MatchString(string(id)) {
		return goerr.New("incident ID must match INC-YYYY-NNN", goerr.V("id", id))
	}
	return nil
}

// Parts splits the ID into its year and sequence number
func (id IncidentID) Parts() (year int, seq int64, err error) {
	m := incidentIDPattern.FindStringSubmatch(string(id))
	if m == nil {
		return 0, 0, goerr.New("incident ID must match INC-YYYY-NNN", goerr.V("id", id))
	}
	year, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, goerr.Wrap(err, "invalid incident ID year", goerr.V("id", id))
	}
	seq, err = strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, 0, goerr.Wrap(err, "invalid incident ID sequence", goerr.V("id", id))
	}
	return year, seq, nil
}

// String returns the string representation of IncidentID
func (id IncidentID) String() string {
	return string(id)
}
