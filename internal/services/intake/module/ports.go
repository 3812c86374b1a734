package module

import (
	"devquest/internal/services/intake/domain"
	pdom "devquest/internal/services/progress/domain"
)

// Ports lists what intake consumes and exposes
// Processor must be injected with modkit.WithPorts
type Ports struct {
	Processor pdom.ProcessorPort
	Ingest    domain.IngestPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
