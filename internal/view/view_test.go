package view

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rangosemfila/consumo/internal/model"
	"github.com/rangosemfila/consumo/internal/report"
)

func sampleReport() *model.ConsumptionReport {
	return &model.ConsumptionReport{
		Name: "Ana Souza",
		Purchases: []model.DatePurchases{
			{Date: "2024-05-03", Lines: []model.PurchaseLine{
				{Item: "Banana", Quantity: 2_500_000, UnitPrice: 6_300_000, TotalPrice: 15_750_000, ByWeight: true},
			}},
			{Date: "2024-05-01", Lines: []model.PurchaseLine{
				{Item: "Suco", Quantity: 3, UnitPrice: 3.1666, TotalPrice: 9.5},
			}},
			{Date: "2024-04-28", Lines: nil},
		},
		Total: 42,
	}
}

// countingFetcher records every call and returns the configured result.
type countingFetcher struct {
	calls []string
	rep   *model.ConsumptionReport
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, id string) (*model.ConsumptionReport, error) {
	f.calls = append(f.calls, id)
	return f.rep, f.err
}

func populatedView(t *testing.T) *View {
	t.Helper()
	v := Load(context.Background(), &countingFetcher{rep: sampleReport()}, "abc", nil)
	require.Equal(t, StatePopulated, v.State())
	return v
}

func TestLoad_AbsentIdentifierSkipsFetch(t *testing.T) {
	for _, id := range []string{"", "   "} {
		f := &countingFetcher{rep: sampleReport()}
		v := Load(context.Background(), f, id, nil)

		assert.Equal(t, StateNotFound, v.State())
		assert.Empty(t, f.calls, "no fetch for %q", id)

		s := v.Render()
		assert.Equal(t, StateNotFound, s.State)
		assert.Equal(t, NotFoundText, s.Message)
	}
}

func TestLoad_PopulatedRowsFollowSourceOrder(t *testing.T) {
	f := &countingFetcher{rep: sampleReport()}
	v := Load(context.Background(), f, "abc", nil)

	assert.Equal(t, []string{"abc"}, f.calls)
	s := v.Render()
	require.Equal(t, StatePopulated, s.State)
	assert.Equal(t, "Resumo do Consumo de Ana Souza", s.Title)
	assert.Equal(t, "Total:", s.SummaryLabel)
	assert.Equal(t, "R$ 42.00", s.Total)

	require.Len(t, s.Rows, 3)
	dates := make([]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		dates = append(dates, r.Date)
		assert.False(t, r.Expanded)
		assert.Equal(t, IndicatorCollapsed, r.Indicator)
		assert.Nil(t, r.Visible())
	}
	assert.Equal(t, []string{"2024-05-03", "2024-05-01", "2024-04-28"}, dates)
}

func TestRender_FormatsLines(t *testing.T) {
	v := populatedView(t)
	require.True(t, v.ToggleDate("2024-05-03"))
	require.True(t, v.ToggleDate("2024-05-01"))

	s := v.Render()
	banana := s.Rows[0].Visible()
	require.Len(t, banana, 1)
	assert.Equal(t, "2.500 kg", banana[0].Quantity)
	assert.Equal(t, "R$ 15.75", banana[0].Price)
	assert.Equal(t, "2.500 kg Banana - R$ 15.75", banana[0].Text)

	suco := s.Rows[1].Visible()
	require.Len(t, suco, 1)
	assert.Equal(t, "3x", suco[0].Quantity)
	assert.Equal(t, "R$ 9.50", suco[0].Price)
	assert.Equal(t, "🔼", s.Rows[1].Indicator)

	require.True(t, v.ToggleDate("2024-05-01"))
	assert.Equal(t, "🔽", v.Render().Rows[1].Indicator)
}

func TestToggleDate_DoubleToggleIsIdentity(t *testing.T) {
	v := populatedView(t)
	before := v.Render()

	require.True(t, v.ToggleDate("2024-05-01"))
	mid := v.Render()
	assert.True(t, mid.Rows[1].Expanded)
	assert.False(t, mid.Rows[0].Expanded, "toggling one date must not touch another")
	assert.False(t, mid.Rows[2].Expanded)

	require.True(t, v.ToggleDate("2024-05-01"))
	assert.Equal(t, before, v.Render())
}

func TestToggleDate_NoOps(t *testing.T) {
	v := populatedView(t)
	assert.False(t, v.ToggleDate("1999-01-01"))
	assert.False(t, v.Expanded("1999-01-01"))

	empty := Load(context.Background(), &countingFetcher{}, "", nil)
	assert.False(t, empty.ToggleDate("2024-05-01"))
}

func TestSetAllExpanded(t *testing.T) {
	v := populatedView(t)
	v.SetAllExpanded(true)
	for _, r := range v.Render().Rows {
		assert.True(t, r.Expanded, r.Date)
	}
	v.SetAllExpanded(false)
	for _, r := range v.Render().Rows {
		assert.False(t, r.Expanded, r.Date)
	}
}

func TestDeliver_FailuresFallBackToNotFoundAndLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	cases := []struct {
		name  string
		err   error
		kind  string
		level string
	}{
		{"transport", fmt.Errorf("%w: connection refused", report.ErrTransport), "transport_failure", "warn"},
		{"malformed", fmt.Errorf("%w: missing name", report.ErrMalformedResponse), "malformed_response", "warn"},
		{"empty", report.ErrEmptyResponse, "empty_response", "info"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logs.TakeAll()
			v := Load(context.Background(), &countingFetcher{err: tc.err}, "abc", log)

			assert.Equal(t, StateNotFound, v.State())
			assert.Nil(t, v.Report())
			assert.Equal(t, NotFoundText, v.Render().Message)

			entries := logs.TakeAll()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.level, entries[0].Level.String())
			assert.Equal(t, tc.kind, entries[0].ContextMap()["kind"])
			assert.Equal(t, "abc", entries[0].ContextMap()["client_id"])
		})
	}
}

func TestDeliver_NilReportWithoutErrorIsNotFound(t *testing.T) {
	v := Load(context.Background(), &countingFetcher{}, "abc", nil)
	assert.Equal(t, StateNotFound, v.State())
}

func TestLifecycle_StatesBeforeDelivery(t *testing.T) {
	v := New(nil)
	assert.Equal(t, StateIdle, v.State())
	assert.Equal(t, LoadingText, v.Render().Message)
	assert.Equal(t, StateLoading, v.Render().State)

	req, ok := v.Mount("abc")
	require.True(t, ok)
	assert.Equal(t, "abc", req.ID)
	assert.Equal(t, StateLoading, v.State())
	assert.Equal(t, LoadingText, v.Render().Message)

	_, ok = v.Mount("other")
	assert.False(t, ok, "second mount must be rejected")
	assert.Equal(t, "abc", v.Identifier())
}

func TestDeliver_DropsSupersededResult(t *testing.T) {
	v := New(nil)
	first, ok := v.Mount("abc")
	require.True(t, ok)

	second, ok := v.SetIdentifier("xyz")
	require.True(t, ok)
	assert.Equal(t, StateLoading, v.State())

	assert.False(t, v.Deliver(first, sampleReport(), nil))
	assert.Equal(t, StateLoading, v.State())

	other := sampleReport()
	other.Name = "Bruno"
	assert.True(t, v.Deliver(second, other, nil))
	assert.Equal(t, StatePopulated, v.State())
	assert.Equal(t, "Resumo do Consumo de Bruno", v.Render().Title)

	// A result for a request that already landed is ignored too.
	assert.False(t, v.Deliver(second, nil, report.ErrTransport))
	assert.Equal(t, StatePopulated, v.State())
}

func TestDeliver_IgnoredAfterUnmount(t *testing.T) {
	v := New(nil)
	req, ok := v.Mount("abc")
	require.True(t, ok)

	v.Unmount()
	assert.False(t, v.Deliver(req, sampleReport(), nil))
	assert.Nil(t, v.Report())

	_, ok = v.SetIdentifier("xyz")
	assert.False(t, ok)
}

func TestSetIdentifier_DiscardsReportAndExpansion(t *testing.T) {
	v := populatedView(t)
	require.True(t, v.ToggleDate("2024-05-01"))

	_, ok := v.SetIdentifier("abc")
	assert.False(t, ok, "same identifier is a no-op")
	assert.True(t, v.Expanded("2024-05-01"))

	req, ok := v.SetIdentifier("xyz")
	require.True(t, ok)
	assert.Equal(t, StateLoading, v.State())
	assert.Nil(t, v.Report())
	assert.False(t, v.Expanded("2024-05-01"))

	require.True(t, v.Deliver(req, sampleReport(), nil))
	assert.False(t, v.Render().Rows[1].Expanded, "expansion starts collapsed for a new identifier")

	_, ok = v.SetIdentifier("")
	assert.False(t, ok)
	assert.Equal(t, StateNotFound, v.State())
	assert.Nil(t, v.Report())
}

func TestReload_RestartsAtLoading(t *testing.T) {
	v := populatedView(t)
	req, ok := v.Reload()
	require.True(t, ok)
	assert.Equal(t, "abc", req.ID)
	assert.Equal(t, StateLoading, v.State())
	assert.Nil(t, v.Report())

	empty := Load(context.Background(), &countingFetcher{}, "", nil)
	_, ok = empty.Reload()
	assert.False(t, ok)
}

func TestRender_PopulatedWithoutReportIsNotFound(t *testing.T) {
	s := Render(StatePopulated, nil, nil)
	assert.Equal(t, StateNotFound, s.State)
}

func TestFetcherFunc(t *testing.T) {
	var got string
	f := FetcherFunc(func(_ context.Context, id string) (*model.ConsumptionReport, error) {
		got = id
		return sampleReport(), nil
	})
	v := Load(context.Background(), f, "abc", nil)
	assert.Equal(t, "abc", got)
	assert.Equal(t, StatePopulated, v.State())
}
