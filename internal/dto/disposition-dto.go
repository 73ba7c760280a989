package dto

import (
	"github.com/shopspring/decimal"

	"itad-system/internal/entities"
)

type SanitizeAssetDTO struct {
	Method            string  `json:"method" validate:"required,sanitize_method"`
	ToolName          *string `json:"toolName" validate:"omitempty,max=255"`
	ToolVersion       *string `json:"toolVersion" validate:"omitempty,max=100"`
	CertificateNumber *string `json:"certificateNumber" validate:"omitempty,max=255"`
	Notes             *string `json:"notes"`
}

type SanitizeResultDTO struct {
	Success            bool                         `json:"success"`
	SanitizationResult *entities.SanitizationResult `json:"sanitizationResult"`
	CertificateNumber  string                       `json:"certificateNumber"`
}

type DisposeAssetDTO struct {
	CustomerID string              `json:"customerId" validate:"required"`
	SalePrice  decimal.NullDecimal `json:"salePrice" validate:"omitempty,gte=0"`
	Notes      *string             `json:"notes"`
}

type DisposeResultDTO struct {
	Success    bool   `json:"success"`
	SalesOrder string `json:"salesOrder"`
}
