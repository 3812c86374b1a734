package module

import "devquest/internal/services/progress/domain"

// Ports exposes the processor to the intake module and the read side to anyone
type Ports struct {
	Processor domain.ProcessorPort
	Reader    domain.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
