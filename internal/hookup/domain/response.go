package domain

import "strings"

// Response is the external representation of a hookup.
type Response struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	ConsumptionUnit string `json:"consumptionUnit"`
	Endpoint        string `json:"endpoint"`
}

func NewResponse(h *Hookup) Response {
	return Response{
		ID:              h.ID.String(),
		Name:            h.Name,
		Type:            strings.ToLower(string(h.Consumption.Type())),
		ConsumptionUnit: string(h.Consumption.Unit()),
		Endpoint:        h.Endpoint,
	}
}

func NewResponses(items []Hookup) []Response {
	resp := make([]Response, 0, len(items))
	for i := range items {
		resp = append(resp, NewResponse(&items[i]))
	}
	return resp
}
