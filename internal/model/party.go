package model

// Supplier is the counterparty of purchases.
type Supplier struct {
	BaseModel
	SoftDelete
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Contact string `gorm:"type:varchar(32)" json:"contact"`
	Email   string `gorm:"type:varchar(255)" json:"email"`
	Address string `gorm:"type:text" json:"address"`
}

// Customer is a client record; sales reference clients by name only.
type Customer struct {
	BaseModel
	SoftDelete
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Contact string `gorm:"type:varchar(32)" json:"contact"`
	Email   string `gorm:"type:varchar(255)" json:"email"`
	Address string `gorm:"type:text" json:"address"`
}
