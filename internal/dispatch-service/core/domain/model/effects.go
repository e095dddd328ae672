package model

import "github.com/google/uuid"

// Event topics published by the lifecycle managers. The strings are part of
// the output contract; downstream consumers route on them.
const (
	TopicSearchRequestCreate   = "dbs-search-request-create"
	TopicCustomerCancel        = "dbs-searchrequest-customer-cancel"
	TopicWalletRefundCustomer  = "dbs-wallet-refund-customer"
	TopicDriverStatusBan       = "dbs-driver-status-ban"
	TopicDriverStatusWarning   = "dbs-driver-status-warning"
	TopicDriverStatusOffline   = "dbs-driver-status-offline"
	TopicDriverMiss            = "dbs-searchrequest-driver-miss"
	TopicBookingOldDriver      = "dbs-booking-old-driver"
	TopicBookingNewDriver      = "dbs-booking-new-driver"
	TopicBookingCustomerCancel = "dbs-booking-customer-cancel"
	TopicBookingDriverCancel   = "dbs-booking-driver-cancel"
)

// CreditEffect is a pending wallet credit produced by a transition. It is a
// value, not an action: the repository applies it inside the same
// transaction as the state write that produced it.
type CreditEffect struct {
	UserID uuid.UUID
	Amount int64
	Type   TypeWalletTransaction
}

// NotifyEffect is a pending fan-out produced by an operation. Executed
// best-effort after the storage commit, in the order produced.
type NotifyEffect struct {
	Topic      string
	Recipients []uuid.UUID
	Payload    any
}
