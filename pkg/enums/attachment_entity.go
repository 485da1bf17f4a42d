package enums

import "fmt"

// AttachmentEntity names the record kind an attachment hangs off.
type AttachmentEntity string

const (
	AttachmentEntityPart          AttachmentEntity = "part"
	AttachmentEntitySupplier      AttachmentEntity = "supplier"
	AttachmentEntityPurchaseOrder AttachmentEntity = "purchase_order"
)

var validAttachmentEntities = []AttachmentEntity{
	AttachmentEntityPart,
	AttachmentEntitySupplier,
	AttachmentEntityPurchaseOrder,
}

// IsValid reports whether the value is a known AttachmentEntity.
func (a AttachmentEntity) IsValid() bool {
	for _, candidate := range validAttachmentEntities {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAttachmentEntity converts raw input into an AttachmentEntity.
func ParseAttachmentEntity(value string) (AttachmentEntity, error) {
	for _, candidate := range validAttachmentEntities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attachment entity %q", value)
}
