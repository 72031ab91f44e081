package models

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type StatesResponse struct {
	States []string `json:"states"`
}

type RoutesResponse struct {
	State  string   `json:"state,omitempty"`
	Routes []string `json:"routes"`
	Count  int      `json:"count"`
}

type BusTypesResponse struct {
	BusTypes []string `json:"bus_types"`
}
