package models

import "time"

// CustomerAccount is the running credit ledger head for one farmer.
// CurrentBalance is positive when the farmer owes the shop and may go
// negative on overpayment.
type CustomerAccount struct {
	ID       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	FarmerID int64 `gorm:"uniqueIndex;not null" json:"farmer_id"`

	TotalCreditLimit string `gorm:"type:decimal(18,2);not null;default:'0.00'" json:"total_credit_limit"`
	CurrentBalance   string `gorm:"type:decimal(18,2);not null;default:'0.00'" json:"current_balance"`
	InterestRate     string `gorm:"type:decimal(5,2);not null;default:'2.00'" json:"interest_rate"` // % per month

	LastPaymentDate *time.Time `json:"last_payment_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Farmer *Farmer `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
}

// InterestCharge is an append-only audit record of one accrual.
type InterestCharge struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FarmerID int64  `gorm:"index;not null" json:"farmer_id"`
	BillID   *int64 `json:"bill_id,omitempty"`

	PrincipalAmount string    `gorm:"type:decimal(18,2);not null" json:"principal_amount"`
	InterestAmount  string    `gorm:"type:decimal(18,2);not null" json:"interest_amount"`
	InterestRate    string    `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	ChargeDate      time.Time `gorm:"not null" json:"charge_date"`

	CreatedAt time.Time `json:"created_at"`
}
