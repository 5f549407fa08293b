package subcontracting

import (
	"context"
	"slices"

	"github.com/erp/subcontracting/internal/domain/catalog"
	"github.com/erp/subcontracting/internal/domain/inventory"
	"github.com/erp/subcontracting/internal/domain/manufacturing"
	"github.com/erp/subcontracting/internal/domain/partner"
	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/erp/subcontracting/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// table stores rows by ID in insertion order. Rows are copied in and out so
// callers never alias stored state, the way a database round trip behaves.
type table[T any] struct {
	rows  map[uuid.UUID]T
	order []uuid.UUID
	clone func(T) T
}

func newTable[T any](clone func(T) T) *table[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &table[T]{rows: map[uuid.UUID]T{}, clone: clone}
}

func (t *table[T]) put(id uuid.UUID, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = t.clone(v)
}

func (t *table[T]) get(id uuid.UUID) (*T, error) {
	v, ok := t.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := t.clone(v)
	return &cp, nil
}

func (t *table[T]) where(match func(T) bool) []T {
	var out []T
	for _, id := range t.order {
		if v := t.rows[id]; match(v) {
			out = append(out, t.clone(v))
		}
	}
	return out
}

func (t *table[T]) snapshot() *table[T] {
	cp := newTable(t.clone)
	for _, id := range t.order {
		cp.put(id, t.rows[id])
	}
	return cp
}

// memDB is an in-memory record store backing every repository of the engine
type memDB struct {
	orders       *table[manufacturing.ProductionOrder]
	workOrders   *table[manufacturing.WorkOrder]
	boms         *table[manufacturing.BOM]
	moves        *table[inventory.StockMove]
	pickings     *table[inventory.Picking]
	pickingTypes *table[inventory.PickingType]
	locations    *table[inventory.Location]
	warehouses   *table[inventory.Warehouse]
	rules        *table[inventory.ReorderRule]
	quants       *table[inventory.StockQuant]
	products     *table[catalog.Product]
	sellers      *table[catalog.SupplierInfo]
	partners     *table[partner.Partner]
	purchases    *table[trade.PurchaseOrder]

	// failPurchaseSave makes every purchase order save fail
	failPurchaseSave error
	// afterOrderLoad runs after a production order is read, to interleave a concurrent writer
	afterOrderLoad func(manufacturing.ProductionOrder)
}

func newMemDB() *memDB {
	return &memDB{
		orders: newTable(func(o manufacturing.ProductionOrder) manufacturing.ProductionOrder {
			o.ExternalPickingIDs = slices.Clone(o.ExternalPickingIDs)
			o.ClearDomainEvents()
			return o
		}),
		workOrders: newTable(func(w manufacturing.WorkOrder) manufacturing.WorkOrder {
			w.ClearDomainEvents()
			return w
		}),
		boms: newTable(func(b manufacturing.BOM) manufacturing.BOM {
			b.Lines = slices.Clone(b.Lines)
			b.ClearDomainEvents()
			return b
		}),
		moves: newTable[inventory.StockMove](nil),
		pickings: newTable(func(p inventory.Picking) inventory.Picking {
			p.ClearDomainEvents()
			return p
		}),
		pickingTypes: newTable[inventory.PickingType](nil),
		locations:    newTable[inventory.Location](nil),
		warehouses:   newTable[inventory.Warehouse](nil),
		rules:        newTable[inventory.ReorderRule](nil),
		quants:       newTable[inventory.StockQuant](nil),
		products: newTable(func(p catalog.Product) catalog.Product {
			p.ClearDomainEvents()
			return p
		}),
		sellers: newTable[catalog.SupplierInfo](nil),
		partners: newTable(func(p partner.Partner) partner.Partner {
			p.ClearDomainEvents()
			return p
		}),
		purchases: newTable(func(o trade.PurchaseOrder) trade.PurchaseOrder {
			o.Lines = slices.Clone(o.Lines)
			o.ClearDomainEvents()
			return o
		}),
	}
}

func (db *memDB) snapshot() *memDB {
	return &memDB{
		orders:           db.orders.snapshot(),
		workOrders:       db.workOrders.snapshot(),
		boms:             db.boms.snapshot(),
		moves:            db.moves.snapshot(),
		pickings:         db.pickings.snapshot(),
		pickingTypes:     db.pickingTypes.snapshot(),
		locations:        db.locations.snapshot(),
		warehouses:       db.warehouses.snapshot(),
		rules:            db.rules.snapshot(),
		quants:           db.quants.snapshot(),
		products:         db.products.snapshot(),
		sellers:          db.sellers.snapshot(),
		partners:         db.partners.snapshot(),
		purchases:        db.purchases.snapshot(),
		failPurchaseSave: db.failPurchaseSave,
		afterOrderLoad:   db.afterOrderLoad,
	}
}

// memTransactionScope restores the record store when fn fails
type memTransactionScope struct {
	db *memDB
}

func (s *memTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	before := s.db.snapshot()
	if err := fn(memRepositories{db: s.db}); err != nil {
		*s.db = *before
		return err
	}
	return nil
}

type memRepositories struct {
	db *memDB
}

func (r memRepositories) ProductionOrders() manufacturing.ProductionOrderRepository {
	return memProductionOrders(r)
}
func (r memRepositories) WorkOrders() manufacturing.WorkOrderRepository { return memWorkOrders(r) }
func (r memRepositories) BOMs() manufacturing.BOMRepository             { return memBOMs(r) }
func (r memRepositories) StockMoves() inventory.StockMoveRepository     { return memMoves(r) }
func (r memRepositories) Pickings() inventory.PickingRepository         { return memPickings(r) }
func (r memRepositories) PickingTypes() inventory.PickingTypeRepository { return memPickingTypes(r) }
func (r memRepositories) Locations() inventory.LocationRepository       { return memLocations(r) }
func (r memRepositories) Warehouses() inventory.WarehouseRepository     { return memWarehouses(r) }
func (r memRepositories) ReorderRules() inventory.ReorderRuleRepository { return memRules(r) }
func (r memRepositories) StockQuants() inventory.StockQuantRepository   { return memQuants(r) }
func (r memRepositories) Products() catalog.ProductRepository           { return memProducts(r) }
func (r memRepositories) SupplierInfos() catalog.SupplierInfoRepository { return memSellers(r) }
func (r memRepositories) Partners() partner.PartnerRepository           { return memPartners(r) }
func (r memRepositories) PurchaseOrders() trade.PurchaseOrderRepository { return memPurchases(r) }

type memProductionOrders memRepositories

func (r memProductionOrders) FindByID(_ context.Context, id uuid.UUID) (*manufacturing.ProductionOrder, error) {
	o, err := r.db.orders.get(id)
	if err == nil && r.db.afterOrderLoad != nil {
		r.db.afterOrderLoad(*o)
	}
	return o, err
}

func (r memProductionOrders) Save(_ context.Context, o *manufacturing.ProductionOrder) error {
	r.db.orders.put(o.ID, *o)
	return nil
}

func (r memProductionOrders) SaveWithLock(_ context.Context, o *manufacturing.ProductionOrder) error {
	stored, err := r.db.orders.get(o.ID)
	if err != nil {
		return err
	}
	if stored.Version != o.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.db.orders.put(o.ID, *o)
	return nil
}

type memWorkOrders memRepositories

func (r memWorkOrders) FindByID(_ context.Context, id uuid.UUID) (*manufacturing.WorkOrder, error) {
	return r.db.workOrders.get(id)
}

func (r memWorkOrders) FindByProduction(_ context.Context, productionID uuid.UUID) ([]manufacturing.WorkOrder, error) {
	return r.db.workOrders.where(func(w manufacturing.WorkOrder) bool { return w.ProductionID == productionID }), nil
}

func (r memWorkOrders) Save(_ context.Context, w *manufacturing.WorkOrder) error {
	r.db.workOrders.put(w.ID, *w)
	return nil
}

func (r memWorkOrders) SaveWithLock(_ context.Context, w *manufacturing.WorkOrder) error {
	stored, err := r.db.workOrders.get(w.ID)
	if err != nil {
		return err
	}
	if stored.Version != w.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.db.workOrders.put(w.ID, *w)
	return nil
}

type memBOMs memRepositories

func (r memBOMs) FindByID(_ context.Context, id uuid.UUID) (*manufacturing.BOM, error) {
	return r.db.boms.get(id)
}

func (r memBOMs) FindByProduct(_ context.Context, productID uuid.UUID, pickingTypeID *uuid.UUID) (*manufacturing.BOM, error) {
	var generic *manufacturing.BOM
	for _, b := range r.db.boms.where(func(b manufacturing.BOM) bool { return b.ProductID == productID }) {
		if b.PickingTypeID == nil {
			if generic == nil {
				generic = &b
			}
			continue
		}
		if pickingTypeID != nil && *b.PickingTypeID == *pickingTypeID {
			return &b, nil
		}
	}
	if generic == nil {
		return nil, shared.ErrNotFound
	}
	return generic, nil
}

func (r memBOMs) Save(_ context.Context, b *manufacturing.BOM) error {
	r.db.boms.put(b.ID, *b)
	return nil
}

type memMoves memRepositories

func (r memMoves) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockMove, error) {
	return r.db.moves.get(id)
}

func (r memMoves) FindByProduction(_ context.Context, productionID uuid.UUID) ([]inventory.StockMove, error) {
	is := func(id *uuid.UUID) bool { return id != nil && *id == productionID }
	return r.db.moves.where(func(m inventory.StockMove) bool {
		return is(m.ProductionID) || is(m.RawMaterialProductionID) || is(m.ExternalProductionID)
	}), nil
}

func (r memMoves) FindByPicking(_ context.Context, pickingID uuid.UUID) ([]inventory.StockMove, error) {
	return r.db.moves.where(func(m inventory.StockMove) bool {
		return m.PickingID != nil && *m.PickingID == pickingID
	}), nil
}

func (r memMoves) Save(_ context.Context, m *inventory.StockMove) error {
	r.db.moves.put(m.ID, *m)
	return nil
}

type memPickings memRepositories

func (r memPickings) FindByID(_ context.Context, id uuid.UUID) (*inventory.Picking, error) {
	return r.db.pickings.get(id)
}

func (r memPickings) FindByProduction(_ context.Context, productionID uuid.UUID) ([]inventory.Picking, error) {
	return r.db.pickings.where(func(p inventory.Picking) bool { return p.SubProductionID == productionID }), nil
}

func (r memPickings) Save(_ context.Context, p *inventory.Picking) error {
	r.db.pickings.put(p.ID, *p)
	return nil
}

type memPickingTypes memRepositories

func (r memPickingTypes) FindByID(_ context.Context, id uuid.UUID) (*inventory.PickingType, error) {
	return r.db.pickingTypes.get(id)
}

func (r memPickingTypes) FindActiveByCode(_ context.Context, warehouseID uuid.UUID, code inventory.PickingTypeCode) (*inventory.PickingType, error) {
	found := r.db.pickingTypes.where(func(pt inventory.PickingType) bool {
		return pt.Active && pt.Code == code && pt.WarehouseID != nil && *pt.WarehouseID == warehouseID
	})
	if len(found) == 0 {
		return nil, shared.ErrNotFound
	}
	return &found[0], nil
}

type memLocations memRepositories

func (r memLocations) FindByID(_ context.Context, id uuid.UUID) (*inventory.Location, error) {
	return r.db.locations.get(id)
}

type memWarehouses memRepositories

func (r memWarehouses) FindByID(_ context.Context, id uuid.UUID) (*inventory.Warehouse, error) {
	return r.db.warehouses.get(id)
}

func (r memWarehouses) FindDefault(_ context.Context) (*inventory.Warehouse, error) {
	all := r.db.warehouses.where(func(inventory.Warehouse) bool { return true })
	if len(all) == 0 {
		return nil, shared.ErrNotFound
	}
	for i := range all {
		if all[i].IsDefault {
			return &all[i], nil
		}
	}
	return &all[0], nil
}

type memRules memRepositories

func (r memRules) FindByProductAndWarehouse(_ context.Context, productID, warehouseID uuid.UUID) (*inventory.ReorderRule, error) {
	found := r.db.rules.where(func(rule inventory.ReorderRule) bool {
		return rule.ProductID == productID && rule.WarehouseID == warehouseID
	})
	if len(found) == 0 {
		return nil, shared.ErrNotFound
	}
	return &found[0], nil
}

func (r memRules) Save(_ context.Context, rule *inventory.ReorderRule) error {
	r.db.rules.put(rule.ID, *rule)
	return nil
}

type memQuants memRepositories

func (r memQuants) QuantityAt(_ context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, q := range r.db.quants.where(func(q inventory.StockQuant) bool {
		return q.ProductID == productID && q.LocationID == locationID
	}) {
		total = total.Add(q.Quantity)
	}
	return total, nil
}

type memProducts memRepositories

func (r memProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.db.products.get(id)
}

func (r memProducts) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	found := r.db.products.where(func(p catalog.Product) bool { return p.Code == code })
	if len(found) == 0 {
		return nil, shared.ErrNotFound
	}
	return &found[0], nil
}

func (r memProducts) Save(_ context.Context, p *catalog.Product) error {
	r.db.products.put(p.ID, *p)
	return nil
}

type memSellers memRepositories

func (r memSellers) FindByProduct(_ context.Context, productID uuid.UUID) ([]catalog.SupplierInfo, error) {
	found := r.db.sellers.where(func(s catalog.SupplierInfo) bool { return s.ProductID == productID })
	slices.SortStableFunc(found, func(a, b catalog.SupplierInfo) int { return a.Sequence - b.Sequence })
	return found, nil
}

func (r memSellers) Save(_ context.Context, s *catalog.SupplierInfo) error {
	r.db.sellers.put(s.ID, *s)
	return nil
}

type memPartners memRepositories

func (r memPartners) FindByID(_ context.Context, id uuid.UUID) (*partner.Partner, error) {
	return r.db.partners.get(id)
}

func (r memPartners) Save(_ context.Context, p *partner.Partner) error {
	r.db.partners.put(p.ID, *p)
	return nil
}

type memPurchases memRepositories

func (r memPurchases) FindByID(_ context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return r.db.purchases.get(id)
}

func (r memPurchases) FindOpenByPartner(_ context.Context, partnerID uuid.UUID) (*trade.PurchaseOrder, error) {
	found := r.db.purchases.where(func(o trade.PurchaseOrder) bool {
		return o.PartnerID == partnerID && o.Status.IsOpen()
	})
	if len(found) == 0 {
		return nil, shared.ErrNotFound
	}
	return &found[0], nil
}

func (r memPurchases) FindByProductionExternal(_ context.Context, productionID uuid.UUID) ([]trade.PurchaseOrder, error) {
	return r.db.purchases.where(func(o trade.PurchaseOrder) bool {
		return o.ProductionExternalID != nil && *o.ProductionExternalID == productionID
	}), nil
}

func (r memPurchases) Save(_ context.Context, o *trade.PurchaseOrder) error {
	if r.db.failPurchaseSave != nil {
		return r.db.failPurchaseSave
	}
	r.db.purchases.put(o.ID, *o)
	return nil
}

var (
	_ Repositories     = memRepositories{}
	_ TransactionScope = (*memTransactionScope)(nil)
)
