package domain

import "strings"

// ConsumptionType is the metered resource a hookup reports on.
type ConsumptionType string

const (
	ConsumptionTypeGas         ConsumptionType = "GAS"
	ConsumptionTypeWater       ConsumptionType = "WATER"
	ConsumptionTypeElectricity ConsumptionType = "ELECTRICITY"
)

// ConsumptionUnit is the display unit a consumption type is measured in.
type ConsumptionUnit string

const (
	ConsumptionUnitCubicMeter   ConsumptionUnit = "m³"
	ConsumptionUnitLiter        ConsumptionUnit = "L"
	ConsumptionUnitKilowattHour ConsumptionUnit = "kWh"
)

// ParseConsumptionType parses value case-insensitively.
func ParseConsumptionType(value string) (ConsumptionType, error) {
	switch ConsumptionType(strings.ToUpper(value)) {
	case ConsumptionTypeGas:
		return ConsumptionTypeGas, nil
	case ConsumptionTypeWater:
		return ConsumptionTypeWater, nil
	case ConsumptionTypeElectricity:
		return ConsumptionTypeElectricity, nil
	default:
		return "", ErrInvalidConsumptionType
	}
}

// ParseConsumptionUnit matches value against the unit display values, ignoring case.
func ParseConsumptionUnit(value string) (ConsumptionUnit, error) {
	switch {
	case strings.EqualFold(value, string(ConsumptionUnitCubicMeter)):
		return ConsumptionUnitCubicMeter, nil
	case strings.EqualFold(value, string(ConsumptionUnitLiter)):
		return ConsumptionUnitLiter, nil
	case strings.EqualFold(value, string(ConsumptionUnitKilowattHour)):
		return ConsumptionUnitKilowattHour, nil
	default:
		return "", ErrInvalidConsumptionUnit
	}
}

// UnitFor returns the fixed unit for t.
func UnitFor(t ConsumptionType) (ConsumptionUnit, error) {
	switch t {
	case ConsumptionTypeWater:
		return ConsumptionUnitLiter, nil
	case ConsumptionTypeGas:
		return ConsumptionUnitCubicMeter, nil
	case ConsumptionTypeElectricity:
		return ConsumptionUnitKilowattHour, nil
	default:
		return "", ErrInvalidConsumptionType
	}
}

// Consumption pairs a type with its derived unit. The zero value is invalid;
// build one with ConsumptionFor or RestoreConsumption.
type Consumption struct {
	typ  ConsumptionType
	unit ConsumptionUnit
}

// ConsumptionFor derives the consumption for t.
func ConsumptionFor(t ConsumptionType) (Consumption, error) {
	unit, err := UnitFor(t)
	if err != nil {
		return Consumption{}, err
	}
	return Consumption{typ: t, unit: unit}, nil
}

// RestoreConsumption rebuilds a stored pair and rejects any pair outside the
// fixed type to unit mapping.
func RestoreConsumption(rawType, rawUnit string) (Consumption, error) {
	t, err := ParseConsumptionType(rawType)
	if err != nil {
		return Consumption{}, err
	}
	unit, err := ParseConsumptionUnit(rawUnit)
	if err != nil {
		return Consumption{}, err
	}
	c, err := ConsumptionFor(t)
	if err != nil {
		return Consumption{}, err
	}
	if c.unit != unit {
		return Consumption{}, ErrInvalidConsumptionUnit
	}
	return c, nil
}

func (c Consumption) Type() ConsumptionType { return c.typ }

func (c Consumption) Unit() ConsumptionUnit { return c.unit }
