package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/hookup/internal/clock"
	hookupdomain "github.com/smallbiznis/hookup/internal/hookup/domain"
	"gorm.io/gorm"
)

// repo stores hookups through gorm. Name and endpoint uniqueness is enforced
// by the table's unique indexes, never by a read before the write.
type repo struct {
	db    *gorm.DB
	clock clock.Clock
}

func New(db *gorm.DB, clk clock.Clock) hookupdomain.Repository {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &repo{db: db, clock: clk}
}

func (r *repo) Add(ctx context.Context, h *hookupdomain.Hookup) (*hookupdomain.Hookup, error) {
	now := r.clock.Now()
	record := Record{
		ID:              hookupdomain.NewID().String(),
		Name:            h.Name,
		ConsumptionType: string(h.Consumption.Type()),
		ConsumptionUnit: string(h.Consumption.Unit()),
		Endpoint:        h.Endpoint,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if conflict := conflictFromError(err, h); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insert hookup: %w", err)
	}

	return toDomain(&record)
}

func (r *repo) FindByID(ctx context.Context, id hookupdomain.ID) (*hookupdomain.Hookup, error) {
	if !id.IsAssigned() {
		return nil, hookupdomain.ErrInvalidID
	}

	record, err := findRecord(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return toDomain(record)
}

func (r *repo) FindAll(ctx context.Context) ([]hookupdomain.Hookup, error) {
	var records []Record
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list hookups: %w", err)
	}

	items := make([]hookupdomain.Hookup, 0, len(records))
	for i := range records {
		item, err := toDomain(&records[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, h *hookupdomain.Hookup) (*hookupdomain.Hookup, error) {
	if !h.ID.IsAssigned() {
		return nil, hookupdomain.ErrInvalidID
	}

	var updated *Record
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := findRecord(ctx, tx, h.ID)
		if err != nil {
			return err
		}
		if record == nil {
			return hookupdomain.ErrNotFound
		}

		record.Name = h.Name
		record.Endpoint = h.Endpoint
		record.UpdatedAt = r.clock.Now()

		res := tx.Model(&Record{}).
			Where("id = ?", record.ID).
			Updates(map[string]any{
				"name":       record.Name,
				"endpoint":   record.Endpoint,
				"updated_at": record.UpdatedAt,
			})
		if res.Error != nil {
			if conflict := conflictFromError(res.Error, h); conflict != nil {
				return conflict
			}
			return fmt.Errorf("update hookup: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return hookupdomain.ErrNotFound
		}

		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toDomain(updated)
}

func (r *repo) Remove(ctx context.Context, h *hookupdomain.Hookup) error {
	if !h.ID.IsAssigned() {
		return hookupdomain.ErrInvalidID
	}

	res := r.db.WithContext(ctx).Where("id = ?", h.ID.String()).Delete(&Record{})
	if res.Error != nil {
		return fmt.Errorf("delete hookup: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return hookupdomain.ErrNotFound
	}
	return nil
}

func findRecord(ctx context.Context, db *gorm.DB, id hookupdomain.ID) (*Record, error) {
	var record Record
	err := db.WithContext(ctx).Where("id = ?", id.String()).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find hookup: %w", err)
	}
	return &record, nil
}
