package memory

import (
	"github.com/secmon-lab/cyberportal/pkg/domain/interfaces"
)

// Memory keeps incidents in process memory. Data is lost on restart.
type Memory struct {
	incident *incidentRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		incident: newIncidentRepository(),
	}
}

func (m *Memory) Incident() interfaces.IncidentRepository {
	return m.incident
}

func (m *Memory) Close() error {
	return nil
}
