package entity

// ContractStatus is shared by single-event contract links and monthly
// contract musicians.
type ContractStatus string

const (
	ContractStatusPending   ContractStatus = "pending"
	ContractStatusSent      ContractStatus = "sent"
	ContractStatusSigned    ContractStatus = "signed"
	ContractStatusRejected  ContractStatus = "rejected"
	ContractStatusCancelled ContractStatus = "cancelled"
)

var transitions = map[ContractStatus][]ContractStatus{
	ContractStatusPending: {ContractStatusSent, ContractStatusSigned, ContractStatusRejected, ContractStatusCancelled},
	ContractStatusSent:    {ContractStatusSigned, ContractStatusRejected, ContractStatusCancelled},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to ContractStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusSigned || s == ContractStatusRejected || s == ContractStatusCancelled
}

// Respondable reports whether a musician may still sign or reject.
func (s ContractStatus) Respondable() bool {
	return s == ContractStatusPending || s == ContractStatusSent
}

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusPending, ContractStatusSent, ContractStatusSigned, ContractStatusRejected, ContractStatusCancelled:
		return true
	}
	return false
}

type DateStatus string

const (
	DateStatusPending   DateStatus = "pending"
	DateStatusIncluded  DateStatus = "included"
	DateStatusSent      DateStatus = "sent"
	DateStatusSigned    DateStatus = "signed"
	DateStatusRejected  DateStatus = "rejected"
	DateStatusCancelled DateStatus = "cancelled"
)

var dateRank = map[DateStatus]int{
	DateStatusPending:  0,
	DateStatusIncluded: 1,
	DateStatusSent:     2,
	DateStatusSigned:   3,
}

// AggregateStatus folds per-date statuses into one display status. The least
// progressed date wins; a single rejected date makes the whole rejected.
// Cancelled dates are ignored unless every date is cancelled.
func AggregateStatus(statuses []DateStatus) DateStatus {
	if len(statuses) == 0 {
		return DateStatusPending
	}

	result := DateStatusSigned
	active := 0
	for _, s := range statuses {
		if s == DateStatusRejected {
			return DateStatusRejected
		}
		rank, ok := dateRank[s]
		if !ok {
			continue
		}
		active++
		if rank < dateRank[result] {
			result = s
		}
	}

	if active == 0 {
		return DateStatusCancelled
	}
	return result
}

// DateStatusFor maps a contract status onto its dates.
func DateStatusFor(s ContractStatus) DateStatus {
	switch s {
	case ContractStatusSent:
		return DateStatusSent
	case ContractStatusSigned:
		return DateStatusSigned
	case ContractStatusRejected:
		return DateStatusRejected
	case ContractStatusCancelled:
		return DateStatusCancelled
	default:
		return DateStatusPending
	}
}
