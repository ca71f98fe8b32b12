package dto

import "github.com/google/uuid"

type GenerateInvoicesRequest struct {
	PlannerID uuid.UUID `json:"planner_id"`
}

type MarkPaidRequest struct {
	Notes string `json:"notes"`
}
