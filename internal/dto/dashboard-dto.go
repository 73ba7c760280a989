package dto

import "itad-system/internal/entities"

type DashboardSummaryDTO struct {
	User            *entities.UserAccount `json:"user"`
	TotalAssets     uint64                `json:"totalAssets"`
	InProcessAssets uint64                `json:"inProcessAssets"`
	ReadyForSale    uint64                `json:"readyForSale"`
	OpenWorkOrders  uint64                `json:"openWorkOrders"`
	RecentAssets    []entities.Asset      `json:"recentAssets"`
}

// ExportFile is a rendered spreadsheet ready to stream.
type ExportFile struct {
	FileName string
	Content  []byte
}
