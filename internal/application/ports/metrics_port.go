package ports

// Metrics registra el resultado de cada operación del núcleo.
// outcome es "ok" o el código de error de dominio.
type Metrics interface {
	ObserveTransfer(action, outcome string)
	ObserveCash(operation, outcome string)
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) ObserveTransfer(string, string) {}
func (NopMetrics) ObserveCash(string, string)     {}
