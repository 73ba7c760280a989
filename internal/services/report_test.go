package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"itad-system/internal/dto"
	"itad-system/internal/entities"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/types"
	"itad-system/pkg/utils"
)

func readSheet(t *testing.T, file *dto.ExportFile) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(reportSheetName)
	require.NoError(t, err)
	return rows
}

func TestExportReport_AssetsMatchList(t *testing.T) {
	env := newTestEnv(t)
	for _, tag := range []string{"A", "B", "C", "D"} {
		env.createAsset(t, tag)
	}
	env.reports.now = func() time.Time { return time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC) }
	filter := types.Filter{Filter: map[string]interface{}{"clientId": env.client.ID}, Page: 1, Limit: 2, WithPagination: true}

	file, err := env.reports.ExportReport(env.ctx(), "", filter)
	require.NoError(t, err)
	assert.Equal(t, "assets-export-2024-04-09.xlsx", file.FileName)

	_, total, err := env.assets.ListAssets(env.ctx(), filter)
	require.NoError(t, err)

	rows := readSheet(t, file)
	assert.Equal(t, assetReportHeaders, rows[0])
	assert.Len(t, rows[1:], int(total), "pagination is ignored")
}

func TestExportReport_AssetRowColumns(t *testing.T) {
	env := newTestEnv(t)
	purchased := "2020-01-15"
	asset, err := env.assets.CreateAsset(env.ctx(), dto.CreateAssetDTO{
		ClientID:     env.client.ID,
		Manufacturer: utils.ToPtr("Lenovo"),
		PurchaseDate: &purchased,
		Identifiers: []dto.AssetIdentifierDTO{
			{IDType: "CLIENT_TAG", IDValue: "ACME-9"},
			{IDType: "SERIAL", IDValue: "SN-9"},
		},
		HardDrives: []dto.HardDriveDTO{
			{SerialNumber: "HD-A", CapacityGb: utils.ToPtr(256), DestructionStatus: utils.ToPtr(entities.DestructionStatusCompliant)},
			{SerialNumber: "HD-B", CapacityGb: utils.ToPtr(512)},
		},
	})
	require.NoError(t, err)
	_, err = env.sanitization.Sanitize(env.ctx(), asset.ID, dto.SanitizeAssetDTO{Method: "NIST_800_88_PURGE", CertificateNumber: utils.ToPtr("C-7")}, "")
	require.NoError(t, err)
	env.reports.now = func() time.Time { return time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC) }

	file, err := env.reports.ExportReport(env.ctx(), ReportAssets, types.Filter{Filter: map[string]interface{}{}})
	require.NoError(t, err)

	rows := readSheet(t, file)
	require.Len(t, rows, 2)
	row := map[string]string{}
	for i, h := range rows[0] {
		if i < len(rows[1]) {
			row[h] = rows[1][i]
		}
	}
	assert.Equal(t, "ACME-9", row["Asset Tag"])
	assert.Equal(t, "SN-9", row["Serial Number"])
	assert.Equal(t, "Lenovo", row["Make"])
	assert.Equal(t, "Unassigned", row["Assigned To"])
	assert.Equal(t, "4", row["Asset Age (years)"])
	assert.Equal(t, "2", row["Number of Hard Drives"])
	assert.Equal(t, "768", row["Total Hard Drive Capacity (GB)"])
	assert.Equal(t, "Mixed", row["All Hard Drive Destruction Statuses"])
	assert.Equal(t, "Yes", row["Hard Drive Wiped"])
	assert.Equal(t, "C-7", row["Wipe Certificate"])
}

func TestExportReport_AuditSheets(t *testing.T) {
	env := newTestEnv(t)
	asset := env.createAsset(t, "TAG-1")
	_, err := env.workOrders.OpenWorkOrder(env.ctx(), dto.CreateWorkOrderDTO{AssetID: asset.ID, WoType: "TEST"})
	require.NoError(t, err)

	custody, err := env.reports.ExportReport(env.ctx(), ReportChainOfCustody, types.Filter{})
	require.NoError(t, err)
	rows := readSheet(t, custody)
	require.Len(t, rows, 2)
	assert.Equal(t, string(entities.CustodyReceived), rows[1][0])
	assert.Equal(t, env.client.Name, rows[1][5])

	orders, err := env.reports.ExportReport(env.ctx(), ReportWorkOrders, types.Filter{})
	require.NoError(t, err)
	rows = readSheet(t, orders)
	require.Len(t, rows, 2)
	assert.Equal(t, "TEST", rows[1][1])
	assert.Equal(t, "Open", rows[1][8])
}

func TestExportReport_UnknownType(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reports.ExportReport(env.ctx(), "invoices", types.Filter{})

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "type", vErr.Issues[0].Field)
}

func TestDestructionSummary(t *testing.T) {
	compliant := entities.DestructionStatusCompliant
	pending := "PENDING"

	tests := []struct {
		name   string
		drives []entities.HardDrive
		want   string
	}{
		{"no drives", nil, "Compliant"},
		{"all compliant", []entities.HardDrive{{DestructionStatus: &compliant}}, "Compliant"},
		{"mixed", []entities.HardDrive{{DestructionStatus: &compliant}, {DestructionStatus: &pending}}, "Mixed"},
		{"none destroyed", []entities.HardDrive{{}, {}}, "Not Destroyed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, destructionSummary(tt.drives))
		})
	}
}
