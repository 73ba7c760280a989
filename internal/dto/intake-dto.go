package dto

import "github.com/shopspring/decimal"

type IntakeLineDTO struct {
	Description *string             `json:"description" validate:"omitempty,max=500"`
	Quantity    *int                `json:"quantity" validate:"omitempty,min=1"`
	WeightKg    decimal.NullDecimal `json:"weightKg" validate:"omitempty,gte=0"`
	AssetID     *string             `json:"assetId"`
}

type CreateIntakeOrderDTO struct {
	ClientID       string              `json:"clientId" validate:"required"`
	OrderNumber    string              `json:"orderNumber" validate:"required,max=100"`
	ReceivedDate   string              `json:"receivedDate" validate:"required,iso_date"`
	PackingListNum *string             `json:"packingListNum" validate:"omitempty,max=100"`
	TotalWeightKg  decimal.NullDecimal `json:"totalWeightKg" validate:"omitempty,gte=0"`
	Notes          *string             `json:"notes"`
	Lines          []IntakeLineDTO     `json:"lines" validate:"required,min=1,dive"`
}
