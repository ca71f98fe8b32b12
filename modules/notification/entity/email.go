package entity

import "time"

// ContractEmail invites a musician to review and sign a contract.
type ContractEmail struct {
	To           string
	MusicianName string
	Subject      string
	Dates        []EmailDate
	TotalFee     int64
	ResponseURL  string
}

type EmailDate struct {
	Date      time.Time
	Venue     string
	StartTime string
	EndTime   string
	Fee       int64
}

// ContractResponse tells staff how a musician answered.
type ContractResponse struct {
	To           string
	MusicianName string
	Contract     string
	Action       string
	Comments     string
}
