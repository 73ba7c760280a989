package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"itad-system/internal/dto"
	"itad-system/internal/entities"
	"itad-system/internal/repositories"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/types"
)

const (
	ReportAssets         = "assets"
	ReportChainOfCustody = "chain-of-custody"
	ReportWorkOrders     = "work-orders"

	// auditReportLimit caps the custody and work-order exports, newest first.
	auditReportLimit = 1000
	reportSheetName  = "Data"
	reportDate       = "2006-01-02"
	reportDateTime   = "2006-01-02 15:04:05"
)

var ReportTypes = []string{ReportAssets, ReportChainOfCustody, ReportWorkOrders}

type ReportServiceInterface interface {
	// ExportReport renders one of ReportTypes as xlsx; an empty type means assets.
	ExportReport(ctx context.Context, reportType string, filter types.Filter) (*dto.ExportFile, error)
}

type ReportService struct {
	assetRepo repositories.AssetRepositoryInterface
	auditRepo repositories.AuditRepositoryInterface
	woRepo    repositories.WorkOrderRepositoryInterface
	sanRepo   repositories.SanitizationRepositoryInterface
	logger    *zap.Logger
	now       func() time.Time
}

func NewReportService(
	assetRepo repositories.AssetRepositoryInterface,
	auditRepo repositories.AuditRepositoryInterface,
	woRepo repositories.WorkOrderRepositoryInterface,
	sanRepo repositories.SanitizationRepositoryInterface,
	logger *zap.Logger,
) ReportServiceInterface {
	return &ReportService{
		assetRepo: assetRepo,
		auditRepo: auditRepo,
		woRepo:    woRepo,
		sanRepo:   sanRepo,
		logger:    logger,
		now:       time.Now,
	}
}

type reportSheet struct {
	headers []string
	rows    [][]interface{}
}

var assetReportHeaders = []string{
	"Asset Tag", "Serial Number", "Make", "Model", "Processor", "RAM Size (GB)", "Storage Type",
	"Storage Capacity (GB)", "Screen Size (inches)", "Operating System", "R2v3 Compliance",
	"Asset Value (USD)", "Purchase Date", "Location", "Assigned To", "Compliance Notes", "Hard Drives",
	"Asset Age (years)", "Number of Hard Drives", "Total Hard Drive Capacity (GB)",
	"Total Hard Drive Value (USD)", "All Hard Drive Destruction Statuses", "Destruction Certificates",
	"Hard Drive Wiped", "Wipe Certificate", "Wiped Date", "Asset Compliance Summary",
	"Suggested Next Compliance Action",
}

var custodyReportHeaders = []string{
	"Event Type", "Event Date", "Asset ID", "Manufacturer", "Model", "Client",
	"From Location", "To Location", "Performed By", "Notes",
}

var workOrderReportHeaders = []string{
	"Work Order ID", "Type", "Asset ID", "Client", "Tech", "Opened", "Closed", "Steps", "Status",
}

func (s *ReportService) ExportReport(ctx context.Context, reportType string, filter types.Filter) (*dto.ExportFile, error) {
	if reportType == "" {
		reportType = ReportAssets
	}

	var (
		sheet *reportSheet
		err   error
	)
	switch reportType {
	case ReportAssets:
		sheet, err = s.assetSheet(ctx, filter)
	case ReportChainOfCustody:
		sheet, err = s.custodySheet(ctx)
	case ReportWorkOrders:
		sheet, err = s.workOrderSheet(ctx)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("Unknown report type %q", reportType),
			apperrors.FieldIssue{Field: "type", Tag: "oneof", Message: "must be one of " + strings.Join(ReportTypes, ", ")})
	}
	if err != nil {
		s.logger.Error("failed to collect report data", zap.String("type", reportType), zap.Error(err))
		return nil, err
	}

	content, err := renderXLSX(sheet)
	if err != nil {
		s.logger.Error("failed to render report", zap.String("type", reportType), zap.Error(err))
		return nil, err
	}

	return &dto.ExportFile{
		FileName: fmt.Sprintf("%s-export-%s.xlsx", reportType, s.now().UTC().Format(reportDate)),
		Content:  content,
	}, nil
}

// assetSheet uses the list endpoint's filters without pagination.
func (s *ReportService) assetSheet(ctx context.Context, filter types.Filter) (*reportSheet, error) {
	filter.WithPagination = false
	filter.Sort = nil
	assets, _, err := s.assetRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}
	drives, err := s.assetRepo.HardDrivesFor(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	results, err := s.sanRepo.ResultsFor(ctx, nil, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sheet := &reportSheet{headers: assetReportHeaders, rows: make([][]interface{}, 0, len(assets))}
	for i := range assets {
		a := &assets[i]
		a.HardDrives = drives[a.ID]
		sheet.rows = append(sheet.rows, assetReportRow(a, latestPassed(results[a.ID]), now))
	}
	return sheet, nil
}

func assetReportRow(a *entities.Asset, wipe *entities.SanitizationResult, now time.Time) []interface{} {
	var (
		totalCapacity int
		totalValue    = decimal.Zero
		serials       []string
		certificates  []string
	)
	for _, hd := range a.HardDrives {
		if hd.CapacityGb != nil {
			totalCapacity += *hd.CapacityGb
		}
		if hd.ValueUsd.Valid {
			totalValue = totalValue.Add(hd.ValueUsd.Decimal)
		}
		serials = append(serials, hd.SerialNumber)
		if hd.DestructionCertificate != nil && *hd.DestructionCertificate != "" {
			certificates = append(certificates, *hd.DestructionCertificate)
		}
	}

	assignedTo := "Unassigned"
	if a.AssignedTo != nil && a.AssignedTo.Name != "" {
		assignedTo = a.AssignedTo.Name
	}
	location := ""
	if a.CurrentLocation != nil {
		location = a.CurrentLocation.Name
	}
	value := ""
	if a.ResaleValue.Valid {
		value = a.ResaleValue.Decimal.StringFixed(2)
	}

	wiped, wipeCert, wipedDate := "No", "", ""
	if wipe != nil {
		wiped = "Yes"
		wipeCert = wipe.CertificateNumber
		wipedDate = wipe.VerifiedAt.Format(reportDate)
	}

	return []interface{}{
		a.PrimaryTag(),
		a.IdentifierValue(entities.IdentifierSerial),
		text(a.Manufacturer),
		text(a.Model),
		text(a.Processor),
		intText(a.RamSizeGb),
		text(a.StorageType),
		intText(a.StorageCapacityGb),
		floatText(a.ScreenSizeInches),
		text(a.OperatingSystem),
		text(a.R2v3Compliance),
		value,
		dateText(a.PurchaseDate),
		location,
		assignedTo,
		text(a.ComplianceNotes),
		strings.Join(serials, ", "),
		assetAge(a.PurchaseDate, now),
		len(a.HardDrives),
		totalCapacity,
		totalValue.StringFixed(2),
		destructionSummary(a.HardDrives),
		strings.Join(certificates, ", "),
		wiped,
		wipeCert,
		wipedDate,
		text(a.ComplianceSummary),
		text(a.SuggestedNextAction),
	}
}

// destructionSummary is Compliant when every drive is (including no drives), Mixed when any drive
// has a status, Not Destroyed otherwise.
func destructionSummary(drives []entities.HardDrive) string {
	allCompliant, anyStatus := true, false
	for _, hd := range drives {
		status := ""
		if hd.DestructionStatus != nil {
			status = *hd.DestructionStatus
		}
		if status != entities.DestructionStatusCompliant {
			allCompliant = false
		}
		if status != "" {
			anyStatus = true
		}
	}
	switch {
	case allCompliant:
		return "Compliant"
	case anyStatus:
		return "Mixed"
	default:
		return "Not Destroyed"
	}
}

// latestPassed expects results newest first.
func latestPassed(results []entities.SanitizationResult) *entities.SanitizationResult {
	for i := range results {
		if results[i].Passed {
			return &results[i]
		}
	}
	return nil
}

// assetAge is whole 365-day years since purchase, empty without a purchase date.
func assetAge(purchased *time.Time, now time.Time) string {
	if purchased == nil {
		return ""
	}
	years := math.Floor(now.Sub(*purchased).Hours() / 24 / 365)
	return fmt.Sprintf("%d", int(years))
}

func (s *ReportService) custodySheet(ctx context.Context) (*reportSheet, error) {
	events, err := s.auditRepo.RecentCustodyEvents(ctx, auditReportLimit)
	if err != nil {
		return nil, err
	}

	assetIDs := make([]string, 0, len(events))
	for _, e := range events {
		assetIDs = append(assetIDs, e.AssetID)
	}
	identifiers, err := s.assetRepo.IdentifiersFor(ctx, nil, assetIDs)
	if err != nil {
		return nil, err
	}

	sheet := &reportSheet{headers: custodyReportHeaders, rows: make([][]interface{}, 0, len(events))}
	for _, e := range events {
		asset := e.Asset
		if asset == nil {
			asset = &entities.Asset{ID: e.AssetID}
		}
		asset.Identifiers = identifiers[e.AssetID]

		client := ""
		if asset.Client != nil {
			client = asset.Client.Name
		}
		from, to, performer := "", "", ""
		if e.FromLocation != nil {
			from = e.FromLocation.Name
		}
		if e.ToLocation != nil {
			to = e.ToLocation.Name
		}
		if e.Performer != nil {
			performer = e.Performer.Name
		}

		sheet.rows = append(sheet.rows, []interface{}{
			string(e.EventType),
			e.EventTs.Format(reportDateTime),
			asset.ShortRef(),
			text(asset.Manufacturer),
			text(asset.Model),
			client,
			from,
			to,
			performer,
			text(e.Notes),
		})
	}
	return sheet, nil
}

func (s *ReportService) workOrderSheet(ctx context.Context) (*reportSheet, error) {
	orders, err := s.woRepo.List(ctx, repositories.WorkOrderListFilter{Limit: auditReportLimit})
	if err != nil {
		return nil, err
	}

	assetIDs := make([]string, 0, len(orders))
	for _, wo := range orders {
		assetIDs = append(assetIDs, wo.AssetID)
	}
	identifiers, err := s.assetRepo.IdentifiersFor(ctx, nil, assetIDs)
	if err != nil {
		return nil, err
	}

	sheet := &reportSheet{headers: workOrderReportHeaders, rows: make([][]interface{}, 0, len(orders))}
	for _, wo := range orders {
		asset := wo.Asset
		if asset == nil {
			asset = &entities.Asset{ID: wo.AssetID}
		}
		asset.Identifiers = identifiers[wo.AssetID]

		client, tech, closed, status := "", "", "", "Open"
		if asset.Client != nil {
			client = asset.Client.Name
		}
		if wo.Tech != nil {
			tech = wo.Tech.Name
		}
		if wo.ClosedAt != nil {
			closed = wo.ClosedAt.Format(reportDate)
			status = "Closed"
		}

		sheet.rows = append(sheet.rows, []interface{}{
			entities.ShortID(wo.ID),
			string(wo.WoType),
			asset.ShortRef(),
			client,
			tech,
			wo.OpenedAt.Format(reportDate),
			closed,
			len(wo.Steps),
			status,
		})
	}
	return sheet, nil
}

func renderXLSX(sheet *reportSheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheetName); err != nil {
		return nil, fmt.Errorf("failed to name report sheet: %w", err)
	}
	if err := f.SetSheetRow(reportSheetName, "A1", &sheet.headers); err != nil {
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(sheet.headers))
		_ = f.SetCellStyle(reportSheetName, "A1", lastCol+"1", style)
	}

	for i := range sheet.rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(reportSheetName, cell, &sheet.rows[i]); err != nil {
			return nil, fmt.Errorf("failed to write report row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}
	return buf.Bytes(), nil
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intText(i *int) string {
	if i == nil || *i == 0 {
		return ""
	}
	return fmt.Sprintf("%d", *i)
}

func floatText(f *float64) string {
	if f == nil || *f == 0 {
		return ""
	}
	return decimal.NewFromFloat(*f).String()
}

func dateText(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(reportDate)
}
