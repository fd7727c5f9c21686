package mongodb

const (
	CollectionBills     = "bills"
	CollectionReceipts  = "receipts"
	CollectionOutbox    = "outbox"
	CollectionAuditLogs = "audit_logs"
)
