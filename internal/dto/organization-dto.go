package dto

import "github.com/aarondl/null/v8"

type CreateOrganizationDTO struct {
	Type     string  `json:"type" validate:"required,org_type"`
	Name     string  `json:"name" validate:"required,max=255"`
	R2Scope  *string `json:"r2Scope" validate:"omitempty,max=255"`
	RiskTier *string `json:"riskTier" validate:"omitempty,risk_tier"`
	Active   *bool   `json:"active"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	Address  *string `json:"address" validate:"omitempty,max=255"`
	City     *string `json:"city" validate:"omitempty,max=100"`
	State    *string `json:"state" validate:"omitempty,max=100"`
	ZipCode  *string `json:"zipCode" validate:"omitempty,max=20"`
	Country  *string `json:"country" validate:"omitempty,max=100"`
}

type UpdateOrganizationDTO struct {
	Type     null.String `json:"type" validate:"omitempty,org_type"`
	Name     null.String `json:"name" validate:"omitempty,max=255"`
	R2Scope  null.String `json:"r2Scope" validate:"omitempty,max=255"`
	RiskTier null.String `json:"riskTier" validate:"omitempty,risk_tier"`
	Active   null.Bool   `json:"active"`
	Email    null.String `json:"email" validate:"omitempty,email"`
	Phone    null.String `json:"phone" validate:"omitempty,max=50"`
	Address  null.String `json:"address" validate:"omitempty,max=255"`
	City     null.String `json:"city" validate:"omitempty,max=100"`
	State    null.String `json:"state" validate:"omitempty,max=100"`
	ZipCode  null.String `json:"zipCode" validate:"omitempty,max=20"`
	Country  null.String `json:"country" validate:"omitempty,max=100"`
}

type CreateLocationDTO struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}
