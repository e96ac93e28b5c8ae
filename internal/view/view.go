// Package view implements the consumption report view: a small state
// machine that resolves an identifier, accepts one fetch result per
// identifier, tracks which dates are expanded, and renders a Screen.
//
// A View is owned by a single goroutine (the CLI, the Bubble Tea update
// loop, or one HTTP request) and is not safe for concurrent use.
package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/qmuntal/stateless"
	"go.uber.org/zap"

	"github.com/rangosemfila/consumo/internal/model"
	"github.com/rangosemfila/consumo/internal/report"
)

// State is a view lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateLoading   State = "loading"
	StateNotFound  State = "not_found"
	StatePopulated State = "populated"
)

const (
	triggerMount             = "mount"
	triggerIdentifierFound   = "identifier_found"
	triggerIdentifierMissing = "identifier_missing"
	triggerFetchSucceeded    = "fetch_succeeded"
	triggerFetchFailed       = "fetch_failed"
	triggerIdentifierChanged = "identifier_changed"
	triggerIdentifierCleared = "identifier_cleared"
)

// Fetcher retrieves the report for one identifier. *report.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*model.ConsumptionReport, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, id string) (*model.ConsumptionReport, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, id string) (*model.ConsumptionReport, error) {
	return f(ctx, id)
}

// Request identifies one fetch the host must perform and hand back to Deliver.
type Request struct {
	ID  string
	seq uint64
}

// View holds the state of one mounted report view.
type View struct {
	machine *stateless.StateMachine
	log     *zap.Logger

	id      string
	seq     uint64
	mounted bool
	alive   bool

	report   *model.ConsumptionReport
	expanded map[string]bool
}

// New returns an unmounted view in the Idle state.
func New(log *zap.Logger) *View {
	if log == nil {
		log = zap.NewNop()
	}
	v := &View{
		log:      log,
		expanded: make(map[string]bool),
	}

	m := stateless.NewStateMachine(StateIdle)

	m.Configure(StateIdle).
		Permit(triggerMount, StateResolving)

	m.Configure(StateResolving).
		Permit(triggerIdentifierFound, StateLoading).
		Permit(triggerIdentifierMissing, StateNotFound)

	m.Configure(StateLoading).
		OnEntry(v.discard).
		Permit(triggerFetchSucceeded, StatePopulated).
		Permit(triggerFetchFailed, StateNotFound).
		Permit(triggerIdentifierCleared, StateNotFound).
		PermitReentry(triggerIdentifierChanged)

	m.Configure(StatePopulated).
		OnEntry(v.accept).
		Permit(triggerIdentifierChanged, StateLoading).
		Permit(triggerIdentifierCleared, StateNotFound)

	m.Configure(StateNotFound).
		OnEntry(v.discard).
		Permit(triggerIdentifierChanged, StateLoading).
		PermitReentry(triggerIdentifierCleared)

	v.machine = m
	return v
}

// Load mounts a view for id and performs its single fetch synchronously.
// Fetch failures end in StateNotFound; they are never returned.
func Load(ctx context.Context, f Fetcher, id string, log *zap.Logger) *View {
	v := New(log)
	req, ok := v.Mount(id)
	if !ok {
		return v
	}
	rep, err := f.Fetch(ctx, req.ID)
	v.Deliver(req, rep, err)
	return v
}

// State returns the current lifecycle state.
func (v *View) State() State {
	return v.machine.MustState().(State)
}

// Identifier returns the identifier the view is showing, "" when absent.
func (v *View) Identifier() string {
	return v.id
}

// Report returns the accepted report, or nil outside StatePopulated.
func (v *View) Report() *model.ConsumptionReport {
	return v.report
}

// Mount resolves the injected identifier. It returns the fetch the host
// must start, or false when there is nothing to fetch. Mount only works once.
func (v *View) Mount(id string) (Request, bool) {
	if v.mounted {
		return Request{}, false
	}
	v.mounted, v.alive = true, true
	v.fire(triggerMount)

	v.id = strings.TrimSpace(id)
	if v.id == "" {
		v.log.Debug("no client identifier, skipping fetch")
		v.fire(triggerIdentifierMissing)
		return Request{}, false
	}

	v.fire(triggerIdentifierFound)
	return v.nextRequest(), true
}

// SetIdentifier switches the view to another identifier, discarding the
// current report and expansion state. Results of any earlier request are
// dropped from now on. The same identifier is a no-op.
func (v *View) SetIdentifier(id string) (Request, bool) {
	id = strings.TrimSpace(id)
	if !v.alive || id == v.id {
		return Request{}, false
	}
	v.id = id

	if id == "" {
		v.seq++
		v.fire(triggerIdentifierCleared)
		return Request{}, false
	}

	v.fire(triggerIdentifierChanged)
	return v.nextRequest(), true
}

// Reload restarts the lifecycle for the current identifier.
func (v *View) Reload() (Request, bool) {
	if !v.alive || v.id == "" {
		return Request{}, false
	}
	v.fire(triggerIdentifierChanged)
	return v.nextRequest(), true
}

// Deliver applies the result of req. It reports false when the result was
// dropped: the view was unmounted, req was superseded, or no fetch is pending.
func (v *View) Deliver(req Request, rep *model.ConsumptionReport, err error) bool {
	if !v.alive || req.seq != v.seq || v.State() != StateLoading {
		v.log.Debug("dropping stale report result", zap.String("client_id", req.ID))
		return false
	}

	if err == nil && rep == nil {
		err = report.ErrEmptyResponse
	}
	if err != nil {
		kind := report.Classify(err)
		fields := []zap.Field{
			zap.String("client_id", req.ID),
			zap.Stringer("kind", kind),
			zap.Error(err),
		}
		if kind == report.KindEmptyResponse {
			v.log.Info("consumption report empty", fields...)
		} else {
			v.log.Warn("consumption report unavailable", fields...)
		}
		v.fire(triggerFetchFailed)
		return true
	}

	v.fire(triggerFetchSucceeded, rep)
	return true
}

// Unmount ends the view. Later results are ignored.
func (v *View) Unmount() {
	v.alive = false
	v.report = nil
	v.expanded = make(map[string]bool)
}

// ToggleDate flips the expanded state of one date. It is a no-op (and
// returns false) outside StatePopulated or for a date not in the report.
func (v *View) ToggleDate(date string) bool {
	if v.State() != StatePopulated || !v.hasDate(date) {
		return false
	}
	v.expanded[date] = !v.expanded[date]
	return true
}

// Expanded reports whether date is currently expanded.
func (v *View) Expanded(date string) bool {
	return v.expanded[date]
}

// SetAllExpanded expands or collapses every date.
func (v *View) SetAllExpanded(open bool) {
	if v.State() != StatePopulated {
		return
	}
	for _, date := range v.report.Dates() {
		v.expanded[date] = open
	}
}

// Render renders the current state.
func (v *View) Render() Screen {
	return Render(v.State(), v.report, v.expanded)
}

func (v *View) hasDate(date string) bool {
	if v.report == nil {
		return false
	}
	for _, p := range v.report.Purchases {
		if p.Date == date {
			return true
		}
	}
	return false
}

func (v *View) nextRequest() Request {
	v.seq++
	return Request{ID: v.id, seq: v.seq}
}

func (v *View) discard(_ context.Context, _ ...any) error {
	v.report = nil
	v.expanded = make(map[string]bool)
	return nil
}

func (v *View) accept(_ context.Context, args ...any) error {
	if len(args) != 1 {
		return fmt.Errorf("view: expected one report, got %d args", len(args))
	}
	rep, ok := args[0].(*model.ConsumptionReport)
	if !ok {
		return fmt.Errorf("view: unexpected report type %T", args[0])
	}
	v.report = rep
	return nil
}

// fire applies a trigger. Every caller checks the state first, so a
// refused transition is a programming error; it is logged, not returned.
func (v *View) fire(trigger string, args ...any) {
	if err := v.machine.Fire(trigger, args...); err != nil {
		v.log.Error("invalid view transition",
			zap.String("trigger", trigger),
			zap.String("state", string(v.State())),
			zap.Error(err),
		)
	}
}
