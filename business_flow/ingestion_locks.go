package businessflow

import "sync"

// Serializes the read-compare-insert of snapshots between the scheduler and the admin endpoints
var (
	priceIngestionMutex sync.Mutex
)

func lockPriceIngestion() {
	priceIngestionMutex.Lock()
}

func unlockPriceIngestion() {
	priceIngestionMutex.Unlock()
}
