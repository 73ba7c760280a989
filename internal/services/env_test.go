package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"itad-system/internal/dto"
	"itad-system/internal/entities"
	"itad-system/pkg/utils"
)

// testEnv wires every service over one memStore.
type testEnv struct {
	store     *memStore
	tx        *fakeTxManager
	cache     *fakeCache
	files     *fakeFileStorage
	users     *fakeUserRepo
	documents *fakeDocumentRepo

	assets       *AssetService
	intake       *IntakeService
	workOrders   *WorkOrderService
	sanitization *SanitizationService
	disposal     *DisposalService
	reports      *ReportService
	orgs         *OrganizationService
	images       *AssetImageService
	dashboard    *DashboardService
	accounts     *UserAccountService

	principal *entities.UserAccount
	client    entities.OrgParty
	customer  entities.OrgParty
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	logger := zap.NewNop()

	txm := &fakeTxManager{store: store}
	assetRepo := &fakeAssetRepo{store: store}
	auditRepo := &fakeAuditRepo{store: store}
	orgRepo := &fakeOrgRepo{store: store}
	woRepo := &fakeWorkOrderRepo{store: store}
	sanRepo := &fakeSanitizationRepo{store: store}
	users := &fakeUserRepo{store: store}
	documents := &fakeDocumentRepo{store: store}
	cache := newFakeCache()
	files := newFakeFileStorage()
	idempotency := NewIdempotencyService(cache, time.Hour, logger)

	env := &testEnv{
		store:     store,
		tx:        txm,
		cache:     cache,
		files:     files,
		users:     users,
		documents: documents,

		assets:       NewAssetService(txm, assetRepo, auditRepo, orgRepo, woRepo, sanRepo, logger).(*AssetService),
		intake:       NewIntakeService(txm, &fakeIntakeRepo{store: store}, orgRepo, logger).(*IntakeService),
		workOrders:   NewWorkOrderService(txm, woRepo, assetRepo, auditRepo, logger).(*WorkOrderService),
		sanitization: NewSanitizationService(txm, assetRepo, auditRepo, sanRepo, idempotency, logger).(*SanitizationService),
		disposal:     NewDisposalService(txm, assetRepo, auditRepo, orgRepo, &fakeSalesRepo{store: store}, idempotency, logger).(*DisposalService),
		reports:      NewReportService(assetRepo, auditRepo, woRepo, sanRepo, logger).(*ReportService),
		orgs:         NewOrganizationService(txm, orgRepo, assetRepo, logger).(*OrganizationService),
		images:       NewAssetImageService(txm, assetRepo, documents, files, 10, logger).(*AssetImageService),
		dashboard:    NewDashboardService(assetRepo, woRepo, logger).(*DashboardService),
		accounts:     NewUserAccountService(users, logger).(*UserAccountService),
	}

	env.principal = &entities.UserAccount{ID: "user-1", ExternalID: "ext-1", Name: "Tess Tech", Email: "tess@itad.local", Role: entities.DefaultUserRole}
	store.users[env.principal.ID] = *env.principal
	env.client = store.addOrg(entities.OrgParty{ID: "org-client", Type: entities.OrgCustomer, Name: "Acme", Active: true})
	env.customer = store.addOrg(entities.OrgParty{ID: "org-buyer", Type: entities.OrgCustomer, Name: "Buyer LLC", Active: true})
	store.addOrg(entities.OrgParty{ID: "org-itad", Type: entities.OrgInternal, Name: "ITAD Facility", Active: true})
	store.locations = append(store.locations,
		entities.Location{ID: "loc-dock", OrgID: "org-itad", Name: "Receiving dock"},
		entities.Location{ID: "loc-lab", OrgID: "org-itad", Name: "Test lab"},
	)
	return env
}

func (e *testEnv) ctx() context.Context {
	return utils.WithPrincipal(context.Background(), e.principal)
}

// createAsset goes through the service so the initial audit rows exist.
func (e *testEnv) createAsset(t *testing.T, tag string) *entities.Asset {
	t.Helper()
	asset, err := e.assets.CreateAsset(e.ctx(), dto.CreateAssetDTO{
		ClientID:    e.client.ID,
		Identifiers: []dto.AssetIdentifierDTO{{IDType: string(entities.IdentifierClientTag), IDValue: tag}},
	})
	if err != nil {
		t.Fatalf("create asset %s: %v", tag, err)
	}
	return asset
}
