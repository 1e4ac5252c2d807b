package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPending PaymentStatus = "pending"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPaid || s == PaymentStatusPartial || s == PaymentStatusPending
}

type Bill struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	BillNumber string `gorm:"type:varchar(64);uniqueIndex;not null" json:"bill_number"`
	FarmerID   int64  `gorm:"index;not null" json:"farmer_id"`

	TotalAmount    string `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	DiscountAmount string `gorm:"type:decimal(18,2);not null;default:'0.00'" json:"discount_amount"`
	FinalAmount    string `gorm:"type:decimal(18,2);not null" json:"final_amount"`

	PaymentStatus PaymentStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"payment_status"`
	DueDate       *time.Time    `json:"due_date,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Farmer    *Farmer    `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
	BillItems []BillItem `gorm:"foreignKey:BillID" json:"bill_items,omitempty"`
}

type BillItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	BillID    int64 `gorm:"index;not null" json:"bill_id"`
	ProductID int64 `gorm:"not null" json:"product_id"`

	Quantity   int32  `gorm:"not null" json:"quantity"`
	UnitPrice  string `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	TotalPrice string `gorm:"type:decimal(18,2);not null" json:"total_price"`

	CreatedAt time.Time `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

type Payment struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	BillID   *int64 `gorm:"index" json:"bill_id,omitempty"` // nil for general payments
	FarmerID int64  `gorm:"index;not null" json:"farmer_id"`

	AmountPaid    string    `gorm:"type:decimal(18,2);not null" json:"amount_paid"`
	PaymentMethod string    `gorm:"type:varchar(32);not null;default:'cash'" json:"payment_method"`
	PaymentDate   time.Time `gorm:"not null" json:"payment_date"`
	Notes         *string   `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Farmer *Farmer `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
	Bill   *Bill   `gorm:"foreignKey:BillID" json:"bill,omitempty"`
}
