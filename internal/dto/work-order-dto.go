package dto

import "github.com/aarondl/null/v8"

type WorkOrderStepDTO struct {
	Sequence      int     `json:"sequence" validate:"required,min=1"`
	ProcedureCode *string `json:"procedureCode" validate:"omitempty,max=100"`
	StartedAt     *string `json:"startedAt" validate:"omitempty,iso_date"`
	EndedAt       *string `json:"endedAt" validate:"omitempty,iso_date"`
	Passed        *bool   `json:"passed"`
	Notes         *string `json:"notes"`
}

type CreateWorkOrderDTO struct {
	AssetID string             `json:"assetId" validate:"required"`
	WoType  string             `json:"woType" validate:"required,wo_type"`
	TechID  *string            `json:"techId"`
	Notes   *string            `json:"notes"`
	Steps   []WorkOrderStepDTO `json:"steps" validate:"omitempty,dive"`
}

// UpdateWorkOrderDTO: a sent closedAt of null or "" closes the order now.
type UpdateWorkOrderDTO struct {
	TechID   null.String `json:"techId"`
	Notes    null.String `json:"notes"`
	ClosedAt null.String `json:"closedAt" validate:"omitempty,iso_date"`
}

type UpdateWorkOrderStepDTO struct {
	Sequence      null.Int    `json:"sequence" validate:"omitempty,min=1"`
	ProcedureCode null.String `json:"procedureCode" validate:"omitempty,max=100"`
	StartedAt     null.String `json:"startedAt" validate:"omitempty,iso_date"`
	EndedAt       null.String `json:"endedAt" validate:"omitempty,iso_date"`
	Passed        null.Bool   `json:"passed"`
	Notes         null.String `json:"notes"`
}
