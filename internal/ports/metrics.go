package ports

import (
	"time"

	"mdoc/internal/domain"
)

// Metrics records application events for monitoring
type Metrics interface {
	CatalogBuilt(documents int, duration time.Duration, err error)
	HistoryLookup(kind string, status domain.LookupStatus)
}
