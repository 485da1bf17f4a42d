package enums

// PurchaseOrderStatus labels a purchase order's position in its lifecycle.
// The column is free text by design: receiving accepts a caller-supplied
// status and nothing ties the label to actual line-item completion.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderStatusOrdered   PurchaseOrderStatus = "ordered"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusClosed    PurchaseOrderStatus = "closed"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// String implements fmt.Stringer.
func (p PurchaseOrderStatus) String() string {
	return string(p)
}
