package model

import "github.com/google/uuid"

// StockLedger holds the running stock totals of one product.
// ClosingStock is always OpeningStock + Inward - Outward; the mutators below
// recompute it rather than adjusting it independently.
type StockLedger struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"product_id"`
	OpeningStock int       `gorm:"not null;default:0" json:"openingStock"`
	Inward       int       `gorm:"not null;default:0" json:"inward"`
	Outward      int       `gorm:"not null;default:0" json:"outward"`
	ClosingStock int       `gorm:"not null;default:0" json:"closingStock"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (StockLedger) TableName() string {
	return "stock_ledgers"
}

func (s *StockLedger) recompute() {
	s.ClosingStock = s.OpeningStock + s.Inward - s.Outward
}

// Receive books qty units in (purchases).
func (s *StockLedger) Receive(qty int) {
	s.Inward += qty
	s.recompute()
}

// Issue books qty units out (sales). Sufficiency is the caller's job.
func (s *StockLedger) Issue(qty int) {
	s.Outward += qty
	s.recompute()
}

func (s *StockLedger) ReverseReceive(qty int) {
	s.Inward -= qty
	s.recompute()
}

// ReverseIssue floors Outward at zero.
func (s *StockLedger) ReverseIssue(qty int) {
	s.Outward -= qty
	if s.Outward < 0 {
		s.Outward = 0
	}
	s.recompute()
}

// SetClosing re-derives OpeningStock so that ClosingStock equals closing,
// keeping the movement counters intact (manual stock correction).
func (s *StockLedger) SetClosing(closing int) {
	s.OpeningStock = closing - s.Inward + s.Outward
	s.recompute()
}

// Recompute rederives ClosingStock from the counters.
func (s *StockLedger) Recompute() {
	s.recompute()
}

// Consistent reports whether the closing balance matches the counters.
func (s *StockLedger) Consistent() bool {
	return s.ClosingStock == s.OpeningStock+s.Inward-s.Outward
}
