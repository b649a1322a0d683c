package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/dashboard"
	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/salesops/kpi-backend-go/internal/pkg/spreadsheet"
	"github.com/shopspring/decimal"
)

type Options struct {
	// activity column summed as Field Work
	CallDayActivity string
	Now             func() time.Time
}

type DashboardServiceImpl struct {
	reports dashboard.ReportSource
	opts    Options

	mu       sync.RWMutex
	uploaded *dashboard.Dataset
}

var _ dashboard.DashboardService = (*DashboardServiceImpl)(nil)

func NewDashboardService(reports dashboard.ReportSource, opts Options) *DashboardServiceImpl {
	if opts.CallDayActivity == "" {
		opts.CallDayActivity = "Field Work"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &DashboardServiceImpl{reports: reports, opts: opts}
}

// dataset resolves the requested source. Without an explicit source the
// latest report wins and the uploaded workbook is the fallback.
func (s *DashboardServiceImpl) dataset(ctx context.Context, source string) (dashboard.Dataset, error) {
	if source == "" || source == dashboard.SourceReport {
		report, err := s.reports.Latest(ctx)
		switch {
		case err == nil:
			return reportDataset(report), nil
		case !errors.Is(err, kpi.ErrNoReportAvailable):
			return dashboard.Dataset{}, err
		case source == dashboard.SourceReport:
			return dashboard.Dataset{}, dashboard.ErrNoDataset
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.uploaded == nil {
		return dashboard.Dataset{}, dashboard.ErrNoDataset
	}
	return *s.uploaded, nil
}

func reportDataset(r kpi.Report) dashboard.Dataset {
	t := kpi.NewTableResponse(r.Combined)
	return dashboard.Dataset{
		Source:   dashboard.SourceReport,
		Name:     r.Period.Label(),
		LoadedAt: r.GeneratedAt,
		Columns:  t.Columns,
		Rows:     t.Rows,
	}
}

// GetDashboard implements dashboard.DashboardService.
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context, filter dashboard.Filter) (*dashboard.DashboardResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	ds, err := s.dataset(ctx, filter.Source)
	if err != nil {
		return nil, err
	}

	v := newView(ds)
	division, err := v.resolveDivision(filter.Division)
	if err != nil {
		return nil, err
	}
	rows := v.apply(v.divisionRows(division), filter.Selections)

	return &dashboard.DashboardResponse{
		Source:    ds.Source,
		Dataset:   ds.Name,
		Division:  division,
		Rows:      len(rows),
		Divisions: v.divisionMetrics(rows, s.opts.CallDayActivity),
		Zones:     v.zoneMetrics(rows),
		Visits:    v.visitDistribution(rows),
		Filters:   activeSelections(filter.Selections),
	}, nil
}

// GetFilterOptions implements dashboard.DashboardService.
func (s *DashboardServiceImpl) GetFilterOptions(ctx context.Context, filter dashboard.Filter) (*dashboard.FilterOptionsResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	ds, err := s.dataset(ctx, filter.Source)
	if err != nil {
		return nil, err
	}

	v := newView(ds)
	division, err := v.resolveDivision(filter.Division)
	if err != nil {
		return nil, err
	}

	options := make(map[string][]string, len(dashboard.FilterFields))
	rows := v.divisionRows(division)
	for _, f := range dashboard.FilterFields {
		options[f.Column] = v.distinct(rows, f.Column)
		if selected := filter.Selections[f.Column]; len(selected) > 0 {
			rows = v.keep(rows, f.Column, selected)
		}
	}

	return &dashboard.FilterOptionsResponse{
		Source:    ds.Source,
		Divisions: v.distinct(v.rows, kpi.ColDivisionName),
		Division:  division,
		Options:   options,
	}, nil
}

// UploadWorkbook implements dashboard.DashboardService.
func (s *DashboardServiceImpl) UploadWorkbook(ctx context.Context, req dashboard.UploadRequest) (*dashboard.UploadResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sheets, err := spreadsheet.ReadSheets(req.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dashboard.ErrWorkbookInvalid, err)
	}
	sheet, ok := pickSheet(sheets)
	if !ok {
		return nil, dashboard.ErrWorkbookInvalid
	}

	ds := dashboard.Dataset{
		Source:   dashboard.SourceUpload,
		Name:     req.FileName,
		LoadedAt: s.opts.Now().UTC(),
		Columns:  sheet.Header,
		Rows:     sheet.Rows,
	}
	v := newView(ds)

	s.mu.Lock()
	s.uploaded = &ds
	s.mu.Unlock()

	slog.Info("dashboard workbook uploaded", "file", req.FileName, "sheet", sheet.Name, "rows", len(v.rows))

	return &dashboard.UploadResponse{
		FileName:  req.FileName,
		Sheet:     sheet.Name,
		Rows:      len(v.rows),
		Divisions: v.distinct(v.rows, kpi.ColDivisionName),
		LoadedAt:  ds.LoadedAt.Format(time.RFC3339),
	}, nil
}

// ExportFiltered implements dashboard.DashboardService.
func (s *DashboardServiceImpl) ExportFiltered(ctx context.Context, filter dashboard.Filter) (*bytes.Buffer, string, error) {
	if err := filter.Validate(); err != nil {
		return nil, "", err
	}
	ds, err := s.dataset(ctx, filter.Source)
	if err != nil {
		return nil, "", err
	}

	v := newView(ds)
	division, err := v.resolveDivision(filter.Division)
	if err != nil {
		return nil, "", err
	}
	rows := v.apply(v.divisionRows(division), filter.Selections)

	buf, err := spreadsheet.Write([]spreadsheet.Sheet{{Name: "processed_data", Header: ds.Columns, Rows: rows}})
	if err != nil {
		return nil, "", fmt.Errorf("failed to render filtered workbook: %w", err)
	}
	return buf, fmt.Sprintf("KPI %s.xlsx", division), nil
}

// pickSheet prefers the combined KPI sheet, then any sheet that carries a division column
func pickSheet(sheets []spreadsheet.Sheet) (spreadsheet.Sheet, bool) {
	for _, s := range sheets {
		if s.Name == "final_KPI" && spreadsheet.ColumnIndex(s.Header, kpi.ColDivisionName) >= 0 {
			return s, true
		}
	}
	for _, s := range sheets {
		if spreadsheet.ColumnIndex(s.Header, kpi.ColDivisionName) >= 0 {
			return s, true
		}
	}
	return spreadsheet.Sheet{}, false
}

func activeSelections(selections map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for col, values := range selections {
		if len(values) > 0 {
			out[col] = values
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// view indexes a dataset and drops rows without a last submitted DCR date
type view struct {
	index map[string]int
	rows  [][]any
}

func newView(ds dashboard.Dataset) view {
	v := view{index: make(map[string]int, len(ds.Columns))}
	for i, c := range ds.Columns {
		v.index[strings.ToLower(c)] = i
	}

	dcr, hasDCR := v.index[strings.ToLower(kpi.ColLastSubmittedDCRDate)]
	for _, row := range ds.Rows {
		if hasDCR && (dcr >= len(row) || text(row[dcr]) == "") {
			continue
		}
		v.rows = append(v.rows, row)
	}
	return v
}

func (v view) cell(row []any, column string) any {
	i, ok := v.index[strings.ToLower(column)]
	if !ok || i >= len(row) {
		return nil
	}
	return row[i]
}

func (v view) text(row []any, column string) string {
	return text(v.cell(row, column))
}

// number coerces a cell to a decimal; blanks and unparsable cells count as zero
func (v view) number(row []any, column string) decimal.Decimal {
	d, _ := v.lookup(row, column)
	return d
}

// lookup coerces a cell to a decimal and reports whether it held a value
func (v view) lookup(row []any, column string) (decimal.Decimal, bool) {
	switch c := v.cell(row, column).(type) {
	case int:
		return decimal.NewFromInt(int64(c)), true
	case int64:
		return decimal.NewFromInt(c), true
	case float64:
		return decimal.NewFromFloat(c), true
	case decimal.Decimal:
		return c, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(c), "%"))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

func (v view) resolveDivision(division string) (string, error) {
	divisions := v.distinct(v.rows, kpi.ColDivisionName)
	if division == "" {
		if len(divisions) == 0 {
			return "", dashboard.ErrNoDataset
		}
		return divisions[0], nil
	}
	for _, d := range divisions {
		if strings.EqualFold(d, division) {
			return d, nil
		}
	}
	return "", dashboard.ErrUnknownDivision
}

func (v view) divisionRows(division string) [][]any {
	var out [][]any
	for _, row := range v.rows {
		if v.text(row, kpi.ColDivisionName) == division {
			out = append(out, row)
		}
	}
	return out
}

func (v view) apply(rows [][]any, selections map[string][]string) [][]any {
	for _, f := range dashboard.FilterFields {
		if selected := selections[f.Column]; len(selected) > 0 {
			rows = v.keep(rows, f.Column, selected)
		}
	}
	return rows
}

func (v view) keep(rows [][]any, column string, selected []string) [][]any {
	allowed := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		allowed[strings.TrimSpace(s)] = struct{}{}
	}
	var out [][]any
	for _, row := range rows {
		if _, ok := allowed[v.text(row, column)]; ok {
			out = append(out, row)
		}
	}
	return out
}

// distinct lists non-empty values in order of first appearance
func (v view) distinct(rows [][]any, column string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, row := range rows {
		val := v.text(row, column)
		if val == "" {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out
}

type group struct {
	key   string
	count int
	sums  map[string]decimal.Decimal
	// non-missing cells per column
	values map[string]int
}

// groupBy sums the given columns per key, in order of first appearance. Rows with an empty key are dropped.
func (v view) groupBy(rows [][]any, keyColumn string, columns []string) []*group {
	var groups []*group
	byKey := make(map[string]*group)
	for _, row := range rows {
		key := v.text(row, keyColumn)
		if key == "" {
			continue
		}
		g, ok := byKey[key]
		if !ok {
			g = &group{
				key:    key,
				sums:   make(map[string]decimal.Decimal, len(columns)),
				values: make(map[string]int, len(columns)),
			}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.count++
		for _, col := range columns {
			d, ok := v.lookup(row, col)
			if !ok {
				continue
			}
			g.sums[col] = g.sums[col].Add(d)
			g.values[col]++
		}
	}
	return groups
}

func (g *group) sum(column string) float64 {
	return g.sums[column].Round(2).InexactFloat64()
}

func (g *group) total(column string) int64 {
	return g.sums[column].IntPart()
}

// mean averages the non-missing cells of a column, 0 when there are none
func (g *group) mean(column string) float64 {
	if m := g.meanOrNull(column); m != nil {
		return *m
	}
	return 0
}

// meanOrNull averages the non-missing cells of a column, nil when there are none
func (g *group) meanOrNull(column string) *float64 {
	n := g.values[column]
	if n == 0 {
		return nil
	}
	m := g.sums[column].Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
	return &m
}

func (v view) divisionMetrics(rows [][]any, fieldWork string) []dashboard.DivisionMetrics {
	groups := v.groupBy(rows, kpi.ColDivisionName, []string{
		kpi.ColCallDays, kpi.ColPlanDRCalls, kpi.ColActualDRCalls, kpi.ColLeaves,
		fieldWork, kpi.ColNonFieldWork, kpi.ColTotalDays,
		kpi.ColDoctorCallAvg, kpi.TierCovPctColumn(2), kpi.ColTotalDRCovPct,
	})

	out := make([]dashboard.DivisionMetrics, 0, len(groups))
	for _, g := range groups {
		out = append(out, dashboard.DivisionMetrics{
			Division:        g.key,
			Employees:       g.count,
			CallDays:        g.sum(kpi.ColCallDays),
			CallDaysAvg:     g.mean(kpi.ColCallDays),
			PlanDRCalls:     g.total(kpi.ColPlanDRCalls),
			ActualDRCalls:   g.total(kpi.ColActualDRCalls),
			Leaves:          g.total(kpi.ColLeaves),
			FieldWork:       g.sum(fieldWork),
			NonFieldWork:    g.sum(kpi.ColNonFieldWork),
			TotalDays:       g.sum(kpi.ColTotalDays),
			DoctorCallAvg:   g.mean(kpi.ColDoctorCallAvg),
			TwoPCFreqCovPct: g.meanOrNull(kpi.TierCovPctColumn(2)),
			TotalDRCovPct:   g.meanOrNull(kpi.ColTotalDRCovPct),
		})
	}
	return out
}

func (v view) zoneMetrics(rows [][]any) []dashboard.ZoneMetrics {
	groups := v.groupBy(rows, kpi.ColZone, []string{
		kpi.ColCallDays, kpi.ColPlanDRCalls, kpi.ColActualDRCalls,
		kpi.ColDoctorCallAvg, kpi.TierCovPctColumn(2), kpi.ColTotalDRCovPct,
	})

	out := make([]dashboard.ZoneMetrics, 0, len(groups))
	for _, g := range groups {
		out = append(out, dashboard.ZoneMetrics{
			Zone:            g.key,
			CallDays:        g.sum(kpi.ColCallDays),
			PlanDRCalls:     g.total(kpi.ColPlanDRCalls),
			ActualDRCalls:   g.total(kpi.ColActualDRCalls),
			DoctorCallAvg:   g.mean(kpi.ColDoctorCallAvg),
			TwoPCFreqCovPct: g.meanOrNull(kpi.TierCovPctColumn(2)),
			TotalDRCovPct:   g.meanOrNull(kpi.ColTotalDRCovPct),
		})
	}
	return out
}

func (v view) visitDistribution(rows [][]any) dashboard.VisitDistribution {
	var d dashboard.VisitDistribution
	for _, row := range rows {
		d.Total += v.number(row, kpi.ColTotalDRTotal).IntPart()
		d.Visited += v.number(row, kpi.ColTotalDRVisited).IntPart()
		d.Missed += v.number(row, kpi.ColTotalDRMissed).IntPart()
	}
	return d
}

func text(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(c)
	default:
		return strings.TrimSpace(fmt.Sprint(c))
	}
}
