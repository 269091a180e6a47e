// Package cart owns the shopper's cart: an in-memory line set mirrored to
// either the local snapshot store (anonymous) or the cart_items table
// (authenticated), with a one-way merge when a shopper signs in.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/avaldez-dev/storefront-core/internal/localcart"
	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	"github.com/avaldez-dev/storefront-core/pkg/enums"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/avaldez-dev/storefront-core/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Subject identifies who owns the cart being operated on. A nil UserID means
// the shopper is anonymous and the cart is backed by the local snapshot slot
// named by SessionID.
type Subject struct {
	UserID    uuid.UUID
	SessionID string
}

// Authenticated reports whether the subject is a signed-in account.
func (s Subject) Authenticated() bool {
	return s.UserID != uuid.Nil
}

// Line is one product entry of the in-memory cart.
type Line struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Title     string
	Price     decimal.Decimal
	ImageURL  string
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Engine holds the authoritative in-memory cart for one subject and mirrors
// every mutation to the backing store of record. Mutations are serialized;
// a mirror failure never rolls back the in-memory change, it flips the sync
// status instead so the caller can offer a retry.
type Engine struct {
	mu      sync.Mutex
	subject Subject
	lines   []Line
	status  enums.SyncStatus

	local    localcart.Store
	remote   RemoteStore
	products productLoader
	logg     *logger.Logger
}

// NewEngine builds an engine for the subject. Call Hydrate before use.
func NewEngine(subject Subject, local localcart.Store, remote RemoteStore, products productLoader, logg *logger.Logger) (*Engine, error) {
	if local == nil {
		return nil, fmt.Errorf("local cart store required")
	}
	if remote == nil {
		return nil, fmt.Errorf("remote cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !subject.Authenticated() && subject.SessionID == "" {
		return nil, fmt.Errorf("anonymous subject requires a session id")
	}
	return &Engine{
		subject:  subject,
		status:   enums.SyncStatusIdle,
		local:    local,
		remote:   remote,
		products: products,
		logg:     logg,
	}, nil
}

// Hydrate loads the subject's lines from its backing store of record.
func (e *Engine) Hydrate(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hydrateLocked(ctx)
}

func (e *Engine) hydrateLocked(ctx context.Context) error {
	if e.subject.Authenticated() {
		rows, err := e.remote.ListByUser(ctx, e.subject.UserID)
		if err != nil {
			return err
		}
		e.lines = linesFromModels(rows)
		e.status = enums.SyncStatusIdle
		return nil
	}

	snap, err := e.local.Load(ctx, e.subject.SessionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading local cart")
	}
	e.lines = linesFromSnapshot(snap)
	e.status = enums.SyncStatusIdle
	return nil
}

// AddItem increments the line for the product by qty, creating it if absent.
func (e *Engine) AddItem(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(productID)
	if idx >= 0 {
		e.lines[idx].Quantity += qty
		e.mirrorLine(ctx, idx)
		return nil
	}

	product, err := e.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	e.lines = append(e.lines, Line{
		ID:        uuid.New(),
		ProductID: product.ID,
		Quantity:  qty,
		Title:     product.Title,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
	})
	e.mirrorLine(ctx, len(e.lines)-1)
	return nil
}

// SetQuantity overwrites the quantity for the product's line. Zero or
// negative delegates to removal; an unknown product is a no-op.
func (e *Engine) SetQuantity(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return e.RemoveItem(ctx, productID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(productID)
	if idx < 0 {
		return nil
	}
	e.lines[idx].Quantity = qty
	e.mirrorLine(ctx, idx)
	return nil
}

// RemoveItem drops the product's line. Removing an absent line is a no-op.
func (e *Engine) RemoveItem(ctx context.Context, productID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(productID)
	if idx < 0 {
		return nil
	}
	e.lines = append(e.lines[:idx], e.lines[idx+1:]...)

	e.mirror(ctx, func(ctx context.Context) error {
		if e.subject.Authenticated() {
			return e.remote.Delete(ctx, e.subject.UserID, productID)
		}
		return e.saveSnapshot(ctx)
	})
	return nil
}

// Clear drops every line.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = nil
	e.mirror(ctx, func(ctx context.Context) error {
		if e.subject.Authenticated() {
			return e.remote.DeleteAll(ctx, e.subject.UserID)
		}
		return e.local.Clear(ctx, e.subject.SessionID)
	})
	return nil
}

// SignIn runs the merge protocol for an Anonymous to Authenticated
// transition: local quantities are added to remote ones (anonymous activity
// is additive intent, never a replacement), missing lines are inserted, and
// the local snapshot is cleared exactly once, only after every line landed
// remotely. The engine then holds the merged account cart.
func (e *Engine) SignIn(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.subject.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeConflict, "cart already belongs to an account")
	}

	localLines := e.lines
	sessionID := e.subject.SessionID

	remoteRows, err := e.remote.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	remoteByProduct := map[uuid.UUID]models.CartLine{}
	for _, row := range remoteRows {
		remoteByProduct[row.ProductID] = row
	}

	var errs error
	merged := linesFromModels(remoteRows)
	for _, local := range localLines {
		qty := local.Quantity
		if existing, ok := remoteByProduct[local.ProductID]; ok {
			qty += existing.Quantity
		}
		persisted, err := e.remote.Upsert(ctx, &models.CartLine{
			UserID:    userID,
			ProductID: local.ProductID,
			Quantity:  qty,
		})
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		merged = upsertViewLine(merged, lineFromModel(*persisted), local)
	}

	e.subject = Subject{UserID: userID, SessionID: sessionID}
	e.lines = merged

	if errs != nil {
		e.status = enums.SyncStatusError
		return pkgerrors.Wrap(pkgerrors.CodePersistence, errs, "merging local cart into account")
	}

	if err := e.local.Clear(ctx, sessionID); err != nil {
		e.status = enums.SyncStatusError
		e.logg.Error(ctx, "failed to clear local cart after merge", err)
		return nil
	}
	e.status = enums.SyncStatusIdle
	return nil
}

// SignOut transitions back to anonymous and rehydrates from the local store.
// The account cart is abandoned, not copied down; merging only ever happens
// on the way into an identity.
func (e *Engine) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		sessionID = e.subject.SessionID
	}
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session id is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.subject = Subject{SessionID: sessionID}
	return e.hydrateLocked(ctx)
}

// Subject returns the current cart owner.
func (e *Engine) Subject() Subject {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subject
}

// Lines returns a copy of the in-memory line set.
func (e *Engine) Lines() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Line(nil), e.lines...)
}

// Total recomputes the cart total from the current lines on every call, so a
// partially failed mutation can never serve a stale cached value.
func (e *Engine) Total() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := decimal.Zero
	for _, line := range e.lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Count returns the summed quantity across lines.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	for _, line := range e.lines {
		count += line.Quantity
	}
	return count
}

// SyncStatus reports whether the in-memory cart matches its backing store.
func (e *Engine) SyncStatus() enums.SyncStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// mirrorLine mirrors the line at idx to the store of record. Callers hold mu.
func (e *Engine) mirrorLine(ctx context.Context, idx int) {
	line := e.lines[idx]
	e.mirror(ctx, func(ctx context.Context) error {
		if !e.subject.Authenticated() {
			return e.saveSnapshot(ctx)
		}
		persisted, err := e.remote.Upsert(ctx, &models.CartLine{
			UserID:    e.subject.UserID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
		if err != nil {
			return err
		}
		e.lines[idx].ID = persisted.ID
		return nil
	})
}

// mirror runs the backing-store write for a mutation that already happened
// in memory. Failure keeps the optimistic in-memory state and flips the sync
// status. Callers hold mu.
func (e *Engine) mirror(ctx context.Context, write func(ctx context.Context) error) {
	e.status = enums.SyncStatusSyncing
	if err := write(ctx); err != nil {
		e.status = enums.SyncStatusError
		e.logg.Error(ctx, "cart mirror write failed", err)
		return
	}
	e.status = enums.SyncStatusIdle
}

func (e *Engine) saveSnapshot(ctx context.Context) error {
	return e.local.Save(ctx, e.subject.SessionID, snapshotFromLines(e.lines))
}

func (e *Engine) indexOf(productID uuid.UUID) int {
	for i, line := range e.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func lineFromModel(row models.CartLine) Line {
	line := Line{
		ID:        row.ID,
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
	}
	if row.Product != nil {
		line.Title = row.Product.Title
		line.Price = row.Product.Price
		line.ImageURL = row.Product.ImageURL
	}
	return line
}

func linesFromModels(rows []models.CartLine) []Line {
	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, lineFromModel(row))
	}
	return lines
}

func linesFromSnapshot(snap *localcart.Snapshot) []Line {
	if snap == nil {
		return nil
	}
	lines := make([]Line, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		lines = append(lines, Line{
			ID:        uuid.New(),
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Title:     l.Title,
			Price:     l.Price,
			ImageURL:  l.ImageURL,
		})
	}
	return lines
}

func snapshotFromLines(lines []Line) *localcart.Snapshot {
	snap := &localcart.Snapshot{Lines: make([]localcart.Line, 0, len(lines))}
	for _, l := range lines {
		snap.Lines = append(snap.Lines, localcart.Line{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Title:     l.Title,
			Price:     l.Price,
			ImageURL:  l.ImageURL,
		})
	}
	return snap
}

// upsertViewLine replaces or appends the merged line, keeping the local
// line's denormalized product fields when the persisted row has none.
func upsertViewLine(lines []Line, persisted Line, local Line) []Line {
	if persisted.Title == "" {
		persisted.Title = local.Title
		persisted.Price = local.Price
		persisted.ImageURL = local.ImageURL
	}
	for i, l := range lines {
		if l.ProductID == persisted.ProductID {
			lines[i] = persisted
			return lines
		}
	}
	return append(lines, persisted)
}
