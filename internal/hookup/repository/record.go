package repository

import (
	"fmt"
	"time"

	hookupdomain "github.com/smallbiznis/hookup/internal/hookup/domain"
)

const (
	tableName           = "smart_furniture_hookups"
	nameUniqueIndex     = "ux_smart_furniture_hookups_name"
	endpointUniqueIndex = "ux_smart_furniture_hookups_endpoint"
)

// Record is the stored shape of a hookup.
type Record struct {
	ID              string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Name            string    `gorm:"column:name;type:varchar(255);not null;uniqueIndex:ux_smart_furniture_hookups_name"`
	ConsumptionType string    `gorm:"column:consumption_type;type:varchar(32);not null"`
	ConsumptionUnit string    `gorm:"column:consumption_unit;type:varchar(16);not null"`
	Endpoint        string    `gorm:"column:endpoint;type:varchar(255);not null;uniqueIndex:ux_smart_furniture_hookups_endpoint"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null"`
}

// TableName sets the database table name.
func (Record) TableName() string { return tableName }

func toDomain(r *Record) (*hookupdomain.Hookup, error) {
	id, err := hookupdomain.ParseID(r.ID)
	if err != nil {
		return nil, fmt.Errorf("stored hookup id %q: %w", r.ID, err)
	}
	consumption, err := hookupdomain.RestoreConsumption(r.ConsumptionType, r.ConsumptionUnit)
	if err != nil {
		return nil, fmt.Errorf("stored hookup %s consumption: %w", r.ID, err)
	}
	return &hookupdomain.Hookup{
		ID:          id,
		Name:        r.Name,
		Consumption: consumption,
		Endpoint:    r.Endpoint,
	}, nil
}
