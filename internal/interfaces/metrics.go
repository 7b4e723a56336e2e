package interfaces

import "time"

// LedgerMetrics receives observations from the ledger service.
type LedgerMetrics interface {
	ObserveOperation(operation, result string, elapsed time.Duration)
	EventPublishFailed()
}
