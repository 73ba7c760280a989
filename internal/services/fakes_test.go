package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"itad-system/internal/entities"
	"itad-system/internal/repositories"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/types"
)

// memStore backs every fake repository. fakeTxManager snapshots it before a transaction and restores it
// when the callback fails, so tests can assert that failed operations leave no rows behind.
type memStore struct {
	mu sync.Mutex

	users       map[string]entities.UserAccount
	orgs        map[string]entities.OrgParty
	locations   []entities.Location
	assets      map[string]entities.Asset
	identifiers []entities.AssetIdentifier
	hardDrives  []entities.HardDrive
	history     []entities.AssetStatusHistory
	custody     []entities.ChainOfCustodyEvent
	intake      []entities.IntakeOrder
	workOrders  map[string]entities.WorkOrder
	steps       []entities.WorkOrderStep
	actions     []entities.SanitizationAction
	results     []entities.SanitizationResult
	sales       []entities.SalesOrder
	documents   []entities.Document
	docLinks    map[string][2]string

	clock time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]entities.UserAccount{},
		orgs:       map[string]entities.OrgParty{},
		assets:     map[string]entities.Asset{},
		workOrders: map[string]entities.WorkOrder{},
		docLinks:   map[string][2]string{},
		clock:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so ordering by time is deterministic.
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type memSnapshot struct {
	users       map[string]entities.UserAccount
	orgs        map[string]entities.OrgParty
	locations   []entities.Location
	assets      map[string]entities.Asset
	identifiers []entities.AssetIdentifier
	hardDrives  []entities.HardDrive
	history     []entities.AssetStatusHistory
	custody     []entities.ChainOfCustodyEvent
	intake      []entities.IntakeOrder
	workOrders  map[string]entities.WorkOrder
	steps       []entities.WorkOrderStep
	actions     []entities.SanitizationAction
	results     []entities.SanitizationResult
	sales       []entities.SalesOrder
	documents   []entities.Document
	docLinks    map[string][2]string
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memSnapshot{
		users: maps.Clone(m.users), orgs: maps.Clone(m.orgs), locations: slices.Clone(m.locations),
		assets: maps.Clone(m.assets), identifiers: slices.Clone(m.identifiers), hardDrives: slices.Clone(m.hardDrives),
		history: slices.Clone(m.history), custody: slices.Clone(m.custody), intake: slices.Clone(m.intake),
		workOrders: maps.Clone(m.workOrders), steps: slices.Clone(m.steps), actions: slices.Clone(m.actions),
		results: slices.Clone(m.results), sales: slices.Clone(m.sales), documents: slices.Clone(m.documents),
		docLinks: maps.Clone(m.docLinks),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users, m.orgs, m.locations = s.users, s.orgs, s.locations
	m.assets, m.identifiers, m.hardDrives = s.assets, s.identifiers, s.hardDrives
	m.history, m.custody, m.intake = s.history, s.custody, s.intake
	m.workOrders, m.steps, m.actions = s.workOrders, s.steps, s.actions
	m.results, m.sales, m.documents, m.docLinks = s.results, s.sales, s.documents, s.docLinks
}

func (m *memStore) historyFor(assetID string) []entities.AssetStatusHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.AssetStatusHistory
	for _, h := range m.history {
		if h.AssetID == assetID {
			out = append(out, h)
		}
	}
	return out
}

func (m *memStore) custodyFor(assetID string) []entities.ChainOfCustodyEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.ChainOfCustodyEvent
	for _, e := range m.custody {
		if e.AssetID == assetID {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) addOrg(org entities.OrgParty) entities.OrgParty {
	m.mu.Lock()
	defer m.mu.Unlock()
	org.CreatedAt = m.tick()
	org.UpdatedAt = org.CreatedAt
	m.orgs[org.ID] = org
	return org
}

// putAsset inserts an asset directly, bypassing the service.
func (m *memStore) putAsset(a entities.Asset, tags ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.CreatedAt = m.tick()
	a.UpdatedAt = a.CreatedAt
	m.assets[a.ID] = a
	for i, tag := range tags {
		m.identifiers = append(m.identifiers, entities.AssetIdentifier{
			ID: fmt.Sprintf("%s-ident-%d", a.ID, i), AssetID: a.ID, IDType: entities.IdentifierClientTag, IDValue: tag,
		})
	}
}

// ---- transactions ----

type fakeTxManager struct {
	store *memStore
	calls int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	snap := f.store.snapshot()
	if err := fn(nil); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

// ---- assets ----

type fakeAssetRepo struct{ store *memStore }

func (r *fakeAssetRepo) List(ctx context.Context, filter types.Filter) ([]entities.Asset, uint64, error) {
	r.store.mu.Lock()
	var matched []entities.Asset
	for _, a := range r.store.assets {
		if v, ok := filter.Filter["status"]; ok && string(a.CurrentStatus) != fmt.Sprint(v) {
			continue
		}
		if v, ok := filter.Filter["clientId"]; ok && a.ClientID != fmt.Sprint(v) {
			continue
		}
		matched = append(matched, a)
	}
	r.store.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := uint64(len(matched))
	if filter.WithPagination && filter.Limit > 0 {
		start := min(filter.Offset, len(matched))
		end := min(start+filter.Limit, len(matched))
		matched = matched[start:end]
	}

	ids := make([]string, 0, len(matched))
	for _, a := range matched {
		ids = append(ids, a.ID)
	}
	identifiers, _ := r.IdentifiersFor(ctx, nil, ids)
	for i := range matched {
		matched[i].Identifiers = identifiers[matched[i].ID]
	}
	if matched == nil {
		matched = []entities.Asset{}
	}
	return matched, total, nil
}

func (r *fakeAssetRepo) FindByID(ctx context.Context, tx pgx.Tx, id string) (*entities.Asset, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.assets[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if org, ok := r.store.orgs[a.ClientID]; ok {
		a.Client = &org
	}
	return &a, nil
}

func (r *fakeAssetRepo) LockByID(ctx context.Context, tx pgx.Tx, id string) (*entities.Asset, error) {
	return r.FindByID(ctx, tx, id)
}

func (r *fakeAssetRepo) Exists(ctx context.Context, tx pgx.Tx, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.assets[id]
	return ok, nil
}

func (r *fakeAssetRepo) Create(ctx context.Context, tx pgx.Tx, a *entities.Asset) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := *a
	stored.Identifiers, stored.HardDrives = nil, nil
	stored.CreatedAt = r.store.tick()
	stored.UpdatedAt = stored.CreatedAt
	r.store.assets[a.ID] = stored
	r.store.identifiers = append(r.store.identifiers, a.Identifiers...)
	r.store.hardDrives = append(r.store.hardDrives, a.HardDrives...)
	return nil
}

func (r *fakeAssetRepo) Update(ctx context.Context, tx pgx.Tx, a *entities.Asset) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.assets[a.ID]; !ok {
		return apperrors.ErrNotFound
	}
	stored := *a
	stored.Client, stored.Identifiers, stored.HardDrives = nil, nil, nil
	stored.UpdatedAt = r.store.tick()
	r.store.assets[a.ID] = stored
	return nil
}

func (r *fakeAssetRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status entities.AssetStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.assets[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	a.CurrentStatus = status
	a.UpdatedAt = r.store.tick()
	r.store.assets[id] = a
	return nil
}

func (r *fakeAssetRepo) IdentifiersFor(ctx context.Context, tx pgx.Tx, ids []string) (map[string][]entities.AssetIdentifier, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[string][]entities.AssetIdentifier)
	for _, ident := range r.store.identifiers {
		if slices.Contains(ids, ident.AssetID) {
			out[ident.AssetID] = append(out[ident.AssetID], ident)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) HardDrivesFor(ctx context.Context, tx pgx.Tx, ids []string) (map[string][]entities.HardDrive, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[string][]entities.HardDrive)
	for _, hd := range r.store.hardDrives {
		if slices.Contains(ids, hd.AssetID) {
			out[hd.AssetID] = append(out[hd.AssetID], hd)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) Count(ctx context.Context, status *entities.AssetStatus) (uint64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n uint64
	for _, a := range r.store.assets {
		if status == nil || a.CurrentStatus == *status {
			n++
		}
	}
	return n, nil
}

func (r *fakeAssetRepo) CountByClient(ctx context.Context, tx pgx.Tx, clientID string) (uint64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n uint64
	for _, a := range r.store.assets {
		if a.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

// ---- audit ----

type fakeAuditRepo struct{ store *memStore }

func (r *fakeAuditRepo) AppendStatusHistory(ctx context.Context, tx pgx.Tx, h *entities.AssetStatusHistory) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	h.ChangedTs = r.store.tick()
	r.store.history = append(r.store.history, *h)
	return nil
}

func (r *fakeAuditRepo) AppendCustodyEvent(ctx context.Context, tx pgx.Tx, e *entities.ChainOfCustodyEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e.EventTs = r.store.tick()
	r.store.custody = append(r.store.custody, *e)
	return nil
}

func (r *fakeAuditRepo) StatusHistory(ctx context.Context, tx pgx.Tx, assetID string) ([]entities.AssetStatusHistory, error) {
	out := r.store.historyFor(assetID)
	slices.Reverse(out)
	return out, nil
}

func (r *fakeAuditRepo) CustodyEvents(ctx context.Context, tx pgx.Tx, assetID string) ([]entities.ChainOfCustodyEvent, error) {
	out := r.store.custodyFor(assetID)
	slices.Reverse(out)
	return out, nil
}

func (r *fakeAuditRepo) RecentCustodyEvents(ctx context.Context, limit uint64) ([]entities.ChainOfCustodyEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := slices.Clone(r.store.custody)
	slices.Reverse(out)
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	for i := range out {
		if a, ok := r.store.assets[out[i].AssetID]; ok {
			if org, ok := r.store.orgs[a.ClientID]; ok {
				a.Client = &org
			}
			out[i].Asset = &a
		}
	}
	return out, nil
}

// ---- organizations ----

type fakeOrgRepo struct{ store *memStore }

func (r *fakeOrgRepo) List(ctx context.Context, filter types.Filter) ([]entities.OrgParty, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]entities.OrgParty, 0)
	for _, o := range r.store.orgs {
		if v, ok := filter.Filter["type"]; ok && string(o.Type) != fmt.Sprint(v) {
			continue
		}
		if v, ok := filter.Filter["active"]; ok && o.Active != v.(bool) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeOrgRepo) FindByID(ctx context.Context, tx pgx.Tx, id string) (*entities.OrgParty, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orgs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &o, nil
}

func (r *fakeOrgRepo) Create(ctx context.Context, tx pgx.Tx, o *entities.OrgParty) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o.CreatedAt = r.store.tick()
	o.UpdatedAt = o.CreatedAt
	r.store.orgs[o.ID] = *o
	return nil
}

func (r *fakeOrgRepo) Update(ctx context.Context, tx pgx.Tx, o *entities.OrgParty) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.orgs[o.ID]; !ok {
		return apperrors.ErrNotFound
	}
	o.UpdatedAt = r.store.tick()
	r.store.orgs[o.ID] = *o
	return nil
}

func (r *fakeOrgRepo) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.orgs[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.store.orgs, id)
	return nil
}

func (r *fakeOrgRepo) ListLocations(ctx context.Context, orgID string) ([]entities.Location, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]entities.Location, 0)
	for _, l := range r.store.locations {
		if l.OrgID == orgID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeOrgRepo) LocationExists(ctx context.Context, tx pgx.Tx, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, l := range r.store.locations {
		if l.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrgRepo) CreateLocation(ctx context.Context, tx pgx.Tx, l *entities.Location) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l.CreatedAt = r.store.tick()
	r.store.locations = append(r.store.locations, *l)
	return nil
}

// ---- intake ----

type fakeIntakeRepo struct{ store *memStore }

func (r *fakeIntakeRepo) List(ctx context.Context) ([]entities.IntakeOrder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := slices.Clone(r.store.intake)
	slices.Reverse(out)
	return out, nil
}

func (r *fakeIntakeRepo) OrderNumberExists(ctx context.Context, tx pgx.Tx, orderNumber string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.intake {
		if strings.EqualFold(o.OrderNumber, orderNumber) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeIntakeRepo) Create(ctx context.Context, tx pgx.Tx, o *entities.IntakeOrder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o.CreatedAt = r.store.tick()
	o.LineCount = len(o.Lines)
	r.store.intake = append(r.store.intake, *o)
	return nil
}

// ---- work orders ----

type fakeWorkOrderRepo struct{ store *memStore }

func (r *fakeWorkOrderRepo) hydrate(wo entities.WorkOrder) entities.WorkOrder {
	if a, ok := r.store.assets[wo.AssetID]; ok {
		wo.Asset = &a
	}
	wo.Steps = nil
	for _, st := range r.store.steps {
		if st.WorkOrderID == wo.ID {
			wo.Steps = append(wo.Steps, st)
		}
	}
	wo.StepCount = len(wo.Steps)
	return wo
}

func (r *fakeWorkOrderRepo) List(ctx context.Context, filter repositories.WorkOrderListFilter) ([]entities.WorkOrder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]entities.WorkOrder, 0)
	for _, wo := range r.store.workOrders {
		switch {
		case filter.Status == "open" && !wo.IsOpen(), filter.Status == "closed" && wo.IsOpen():
			continue
		case filter.AssetID != "" && wo.AssetID != filter.AssetID:
			continue
		}
		out = append(out, r.hydrate(wo))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	if filter.Limit > 0 && uint64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeWorkOrderRepo) FindByID(ctx context.Context, tx pgx.Tx, id string) (*entities.WorkOrder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	wo, ok := r.store.workOrders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	wo = r.hydrate(wo)
	return &wo, nil
}

func (r *fakeWorkOrderRepo) Create(ctx context.Context, tx pgx.Tx, wo *entities.WorkOrder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	wo.OpenedAt = r.store.tick()
	stored := *wo
	stored.Steps = nil
	r.store.workOrders[wo.ID] = stored
	r.store.steps = append(r.store.steps, wo.Steps...)
	return nil
}

func (r *fakeWorkOrderRepo) Update(ctx context.Context, tx pgx.Tx, wo *entities.WorkOrder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := *wo
	stored.Steps, stored.Asset = nil, nil
	r.store.workOrders[wo.ID] = stored
	return nil
}

func (r *fakeWorkOrderRepo) CountOpen(ctx context.Context) (uint64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n uint64
	for _, wo := range r.store.workOrders {
		if wo.IsOpen() {
			n++
		}
	}
	return n, nil
}

func (r *fakeWorkOrderRepo) StepsFor(ctx context.Context, tx pgx.Tx, ids []string) (map[string][]entities.WorkOrderStep, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[string][]entities.WorkOrderStep)
	for _, st := range r.store.steps {
		if slices.Contains(ids, st.WorkOrderID) {
			out[st.WorkOrderID] = append(out[st.WorkOrderID], st)
		}
	}
	return out, nil
}

func (r *fakeWorkOrderRepo) CreateStep(ctx context.Context, tx pgx.Tx, step *entities.WorkOrderStep) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.steps = append(r.store.steps, *step)
	return nil
}

func (r *fakeWorkOrderRepo) FindStep(ctx context.Context, tx pgx.Tx, workOrderID, stepID string) (*entities.WorkOrderStep, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, st := range r.store.steps {
		if st.ID == stepID && st.WorkOrderID == workOrderID {
			return &st, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeWorkOrderRepo) UpdateStep(ctx context.Context, tx pgx.Tx, step *entities.WorkOrderStep) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, st := range r.store.steps {
		if st.ID == step.ID {
			r.store.steps[i] = *step
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// ---- sanitization and sales ----

type fakeSanitizationRepo struct{ store *memStore }

func (r *fakeSanitizationRepo) CreateAction(ctx context.Context, tx pgx.Tx, a *entities.SanitizationAction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.actions = append(r.store.actions, *a)
	return nil
}

func (r *fakeSanitizationRepo) CreateResult(ctx context.Context, tx pgx.Tx, res *entities.SanitizationResult) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res.CreatedAt = r.store.tick()
	r.store.results = append(r.store.results, *res)
	return nil
}

func (r *fakeSanitizationRepo) ResultsFor(ctx context.Context, tx pgx.Tx, ids []string) (map[string][]entities.SanitizationResult, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[string][]entities.SanitizationResult)
	for i := len(r.store.results) - 1; i >= 0; i-- {
		res := r.store.results[i]
		if slices.Contains(ids, res.AssetID) {
			out[res.AssetID] = append(out[res.AssetID], res)
		}
	}
	return out, nil
}

type fakeSalesRepo struct{ store *memStore }

func (r *fakeSalesRepo) CreateOrder(ctx context.Context, tx pgx.Tx, o *entities.SalesOrder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o.CreatedAt = r.store.tick()
	r.store.sales = append(r.store.sales, *o)
	return nil
}

// ---- documents and users ----

type fakeDocumentRepo struct {
	store *memStore
	err   error
}

func (r *fakeDocumentRepo) CreateLinked(ctx context.Context, tx pgx.Tx, d *entities.Document, linkType, linkID string) error {
	if r.err != nil {
		return r.err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d.UploadedAt = r.store.tick()
	r.store.documents = append(r.store.documents, *d)
	r.store.docLinks[d.ID] = [2]string{linkType, linkID}
	return nil
}

func (r *fakeDocumentRepo) ListLinked(ctx context.Context, linkType, linkID, docType string) ([]entities.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]entities.Document, 0)
	for i := len(r.store.documents) - 1; i >= 0; i-- {
		d := r.store.documents[i]
		if r.store.docLinks[d.ID] == [2]string{linkType, linkID} && d.Type == docType {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	store        *memStore
	profileSyncs int
}

func (r *fakeUserRepo) FindByExternalID(ctx context.Context, externalID string) (*entities.UserAccount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.ExternalID == externalID {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*entities.UserAccount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) CreateIfAbsent(ctx context.Context, a *entities.UserAccount) (*entities.UserAccount, error) {
	if existing, err := r.FindByExternalID(ctx, a.ExternalID); err == nil {
		return existing, nil
	}
	r.store.mu.Lock()
	a.CreatedAt = r.store.tick()
	r.store.users[a.ID] = *a
	r.store.mu.Unlock()
	return r.FindByExternalID(ctx, a.ExternalID)
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id, name, email string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Name, u.Email = name, email
	r.store.users[id] = u
	r.profileSyncs++
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]entities.UserAccount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]entities.UserAccount, 0, len(r.store.users))
	for _, u := range r.store.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- cache and file storage ----

type fakeCache struct {
	mu      sync.Mutex
	data    map[string]string
	failAll error
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]string{}} }

func cacheValue(v interface{}) string {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	if c.failAll != nil {
		return c.failAll
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cacheValue(value)
	return nil
}

func (c *fakeCache) SetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	if c.failAll != nil {
		return false, c.failAll
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = cacheValue(value)
	return true, nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if c.failAll != nil {
		return "", c.failAll
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	if c.failAll != nil {
		return c.failAll
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type fakeFileStorage struct {
	files   map[string][]byte
	deleted []string
}

func newFakeFileStorage() *fakeFileStorage { return &fakeFileStorage{files: map[string][]byte{}} }

func (s *fakeFileStorage) Save(file io.Reader, fileName string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}
	s.files[fileName] = buf.Bytes()
	return fileName, nil
}

func (s *fakeFileStorage) Delete(path string) error {
	delete(s.files, path)
	s.deleted = append(s.deleted, path)
	return nil
}

func (s *fakeFileStorage) BasePath() string { return "uploads" }
