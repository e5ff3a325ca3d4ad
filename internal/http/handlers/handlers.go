// Handler wiring.
package handlers

// Handlers groups the HTTP endpoints for records, the feed, and
// notifications. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	recordSvc  RecordService
	feedReader FeedReader
	quotaSvc   QuotaService
	ledgerSvc  LedgerService
	notifSvc   NotificationService
}

// New constructs and returns a Handlers instance bound to the given
// services. feedReader is typically the same RecordService implementation;
// it is a separate parameter so tests can stub feed assembly independently.
func New(recordSvc RecordService, feedReader FeedReader, quotaSvc QuotaService, ledgerSvc LedgerService, notifSvc NotificationService) *Handlers {
	return &Handlers{
		recordSvc:  recordSvc,
		feedReader: feedReader,
		quotaSvc:   quotaSvc,
		ledgerSvc:  ledgerSvc,
		notifSvc:   notifSvc,
	}
}
