package report

import (
	"context"
	"fmt"
	"slices"

	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/services/report/queries"
	"github.com/granafy/reports/pkg/store/duckdb/transactions"
)

// Builder maps report types to their query strategies. The mapping is fixed
// at construction; there is no runtime registration. Income-side type
// identifiers exist in the vocabulary but have no strategy, so dispatching
// them fails like any other unknown type.
type Builder struct {
	strategies map[domain.ReportType]queries.Strategy
}

func NewBuilder(store transactions.Store) *Builder {
	return &Builder{
		strategies: map[domain.ReportType]queries.Strategy{
			domain.ReportExpensesByCategory: queries.NewExpensesByCategory(store),
			domain.ReportExpensesByWallet:   queries.NewExpensesByWallet(store),
			domain.ReportExpensesEvolution:  queries.NewExpensesEvolution(store),
			domain.ReportTopExpenses:        queries.NewTopExpenses(store),
			domain.ReportCashflow:           queries.NewCashflow(store),
		},
	}
}

func (b *Builder) IsSupported(reportType domain.ReportType) bool {
	_, ok := b.strategies[reportType]
	return ok
}

// SupportedTypes returns the implemented report types in stable order.
func (b *Builder) SupportedTypes() []domain.ReportType {
	types := make([]domain.ReportType, 0, len(b.strategies))
	for t := range b.strategies {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// ExecuteQuery resolves the strategy for the report type and runs it.
func (b *Builder) ExecuteQuery(
	ctx context.Context,
	reportType domain.ReportType,
	userID string,
	filters domain.ReportFilters,
) (*domain.ReportResult, error) {
	strategy, ok := b.strategies[reportType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedReportType, reportType)
	}
	return strategy.Execute(ctx, userID, filters)
}

// visualizations is declarative metadata: which presentation forms suit each
// report type. Loaded with the binary, never mutated.
var visualizations = map[domain.ReportType][]domain.VisualizationType{
	domain.ReportExpensesByCategory: {domain.VisualizationTable, domain.VisualizationPie, domain.VisualizationBar},
	domain.ReportExpensesByWallet:   {domain.VisualizationTable, domain.VisualizationPie, domain.VisualizationBar},
	domain.ReportExpensesEvolution:  {domain.VisualizationTable, domain.VisualizationLine, domain.VisualizationBar},
	domain.ReportCashflow:           {domain.VisualizationTable, domain.VisualizationLine, domain.VisualizationBar},
	domain.ReportTopExpenses:        {domain.VisualizationTable, domain.VisualizationBar},
}

// SupportedVisualizations lists the visualization types appropriate for a
// report type; nil for unknown types.
func SupportedVisualizations(reportType domain.ReportType) []domain.VisualizationType {
	return visualizations[reportType]
}
