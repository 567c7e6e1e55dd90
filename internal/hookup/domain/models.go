package domain

// Hookup is a registered smart furniture device tracked for a single utility metric.
type Hookup struct {
	ID          ID
	Name        string
	Consumption Consumption
	Endpoint    string
}

// NewHookup builds an unpersisted hookup with its consumption derived from
// consumptionType. Uniqueness is checked by the repository on Add.
func NewHookup(name string, consumptionType ConsumptionType, endpoint string) (*Hookup, error) {
	consumption, err := ConsumptionFor(consumptionType)
	if err != nil {
		return nil, err
	}
	return &Hookup{
		Name:        name,
		Consumption: consumption,
		Endpoint:    endpoint,
	}, nil
}

// ConflictsWith reports which unique field of h is already used by other.
// A hookup never conflicts with itself.
func (h *Hookup) ConflictsWith(other *Hookup) error {
	if h.ID.IsAssigned() && h.ID == other.ID {
		return nil
	}
	if other.Name == h.Name {
		return NameConflict(h.Name)
	}
	if other.Endpoint == h.Endpoint {
		return EndpointConflict(h.Endpoint)
	}
	return nil
}
