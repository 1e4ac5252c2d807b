package models

import "time"

type ProductType string

const (
	ProductTypeInsecticide ProductType = "insecticide"
	ProductTypePesticide   ProductType = "pesticide"
	ProductTypeFertilizer  ProductType = "fertilizer"
)

func (t ProductType) IsValid() bool {
	return t == ProductTypeInsecticide || t == ProductTypePesticide || t == ProductTypeFertilizer
}

type Product struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string      `gorm:"type:varchar(128);not null" json:"name"`
	Type         ProductType `gorm:"type:varchar(32);not null" json:"type"`
	Brand        *string     `gorm:"type:varchar(128)" json:"brand,omitempty"`
	Description  *string     `gorm:"type:text" json:"description,omitempty"`
	PricePerUnit string      `gorm:"type:decimal(18,2);not null" json:"price_per_unit"`
	Unit         string      `gorm:"type:varchar(32);not null" json:"unit"`

	StockQuantity int32 `gorm:"not null;default:0" json:"stock_quantity"`
	ReorderLevel  int32 `gorm:"not null;default:0" json:"reorder_level"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Farmer struct {
	ID           int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string  `gorm:"type:varchar(128);not null" json:"name"`
	Phone        *string `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Address      *string `gorm:"type:text" json:"address,omitempty"`
	Village      *string `gorm:"type:varchar(128)" json:"village,omitempty"`
	District     *string `gorm:"type:varchar(128)" json:"district,omitempty"`
	State        *string `gorm:"type:varchar(128)" json:"state,omitempty"`
	Pincode      *string `gorm:"type:varchar(16)" json:"pincode,omitempty"`
	AadharNumber *string `gorm:"type:varchar(16)" json:"aadhar_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Account *CustomerAccount `gorm:"foreignKey:FarmerID" json:"account,omitempty"`
}
