package entities

import "time"

type WorkOrderType string

const (
	WorkOrderTest     WorkOrderType = "TEST"
	WorkOrderRepair   WorkOrderType = "REPAIR"
	WorkOrderSanitize WorkOrderType = "SANITIZE"
	WorkOrderTeardown WorkOrderType = "TEARDOWN"
)

var WorkOrderTypes = []WorkOrderType{WorkOrderTest, WorkOrderRepair, WorkOrderSanitize, WorkOrderTeardown}

type WorkOrder struct {
	ID       string        `json:"id" db:"id"`
	AssetID  string        `json:"assetId" db:"asset_id"`
	WoType   WorkOrderType `json:"woType" db:"wo_type"`
	TechID   *string       `json:"techId" db:"tech_id"`
	Notes    *string       `json:"notes" db:"notes"`
	OpenedAt time.Time     `json:"openedAt" db:"opened_at"`
	ClosedAt *time.Time    `json:"closedAt" db:"closed_at"`

	Asset     *Asset          `json:"asset,omitempty" db:"-"`
	Tech      *UserAccount    `json:"tech,omitempty" db:"-"`
	Steps     []WorkOrderStep `json:"steps" db:"-"`
	StepCount int             `json:"stepCount" db:"-"`
}

func (w *WorkOrder) IsOpen() bool { return w.ClosedAt == nil }

// WorkOrderStep.Sequence is caller-supplied; duplicates and gaps are stored as given.
type WorkOrderStep struct {
	ID            string     `json:"id" db:"id"`
	WorkOrderID   string     `json:"workOrderId" db:"work_order_id"`
	Sequence      int        `json:"sequence" db:"sequence"`
	ProcedureCode *string    `json:"procedureCode" db:"procedure_code"`
	StartedAt     *time.Time `json:"startedAt" db:"started_at"`
	EndedAt       *time.Time `json:"endedAt" db:"ended_at"`
	Passed        *bool      `json:"passed" db:"passed"`
	Notes         *string    `json:"notes" db:"notes"`
}
