package dto

type SetAvailabilityRequest struct {
	Date        string `json:"date"`
	IsAvailable bool   `json:"is_available"`
	Note        string `json:"note"`
}

type DayAvailability struct {
	Date        string  `json:"date"`
	IsAvailable bool    `json:"is_available"`
	Note        *string `json:"note,omitempty"`
	Explicit    bool    `json:"explicit"`
}
