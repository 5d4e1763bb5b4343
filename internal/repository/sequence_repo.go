package repository

import (
	"time"

	"go-inventory-ledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SequenceRepository interface {
	// Seed inserts the stream row with value unless it already exists.
	Seed(tx *gorm.DB, stream string, value int64) error
	Exists(tx *gorm.DB, stream string) (bool, error)
	// Increment bumps the counter in place and returns the new value.
	Increment(tx *gorm.DB, stream string) (int64, error)
	// Raise lifts the counter to value when it is currently lower.
	Raise(tx *gorm.DB, stream string, value int64) error
	// LatestCode returns column of the most recently created row of table, or "" if the table is empty.
	LatestCode(tx *gorm.DB, table, column string) (string, error)
}

type sequenceRepo struct {
	db *gorm.DB
}

func NewSequenceRepo(db *gorm.DB) SequenceRepository {
	return &sequenceRepo{db}
}

func (r *sequenceRepo) Seed(tx *gorm.DB, stream string, value int64) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Sequence{Stream: stream, Value: value}).Error
}

func (r *sequenceRepo) Exists(tx *gorm.DB, stream string) (bool, error) {
	var count int64
	err := tx.Model(&model.Sequence{}).Where("stream = ?", stream).Count(&count).Error
	return count > 0, err
}

func (r *sequenceRepo) Increment(tx *gorm.DB, stream string) (int64, error) {
	res := tx.Model(&model.Sequence{}).
		Where("stream = ?", stream).
		Updates(map[string]interface{}{
			"value":      gorm.Expr("value + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var seq model.Sequence
	if err := tx.First(&seq, "stream = ?", stream).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

func (r *sequenceRepo) Raise(tx *gorm.DB, stream string, value int64) error {
	return tx.Model(&model.Sequence{}).
		Where("stream = ? AND value < ?", stream, value).
		Updates(map[string]interface{}{
			"value":      value,
			"updated_at": time.Now(),
		}).Error
}

func (r *sequenceRepo) LatestCode(tx *gorm.DB, table, column string) (string, error) {
	var codes []string
	err := tx.Table(table).
		Order("created_at DESC").
		Limit(1).
		Pluck(column, &codes).Error
	if err != nil || len(codes) == 0 {
		return "", err
	}
	return codes[0], nil
}
