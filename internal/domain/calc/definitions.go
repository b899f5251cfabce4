package calc

import (
	"github.com/shopspring/decimal"

	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

// Input field names shared between the calculator and its callers.
const (
	FieldStartingARR        = "startingARR"
	FieldExpansions         = "expansions"
	FieldContractions       = "contractions"
	FieldChurn              = "churn"
	FieldNetNewARR          = "netNewARR"
	FieldPrevQuarterSMSpend = "previousQuarterSMSpend"
	FieldCAC                = "cac"
	FieldARPA               = "arpa"
	FieldGrossMargin        = "grossMargin"
	FieldPipelineValue      = "pipelineValue"
	FieldRevenueTarget      = "revenueTarget"
)

// defaultPrecision is the number of decimal places results are rounded to.
const defaultPrecision int32 = 4

// definitions is the static metric reference table, loaded once.
var definitions = map[model.MetricType]model.MetricDefinition{
	model.MetricNDR: {
		ID:       model.MetricNDR,
		Name:     "Net Dollar Retention",
		Category: "retention",
		DataType: "percentage",
		Validation: model.ValidationRules{
			Min:       decimal.NewFromInt(0),
			Max:       decimal.NewFromInt(200),
			Precision: defaultPrecision,
			Required:  []string{FieldStartingARR, FieldExpansions, FieldContractions, FieldChurn},
		},
	},
	model.MetricMagicNumber: {
		ID:       model.MetricMagicNumber,
		Name:     "Magic Number",
		Category: "efficiency",
		DataType: "ratio",
		Validation: model.ValidationRules{
			Min:       decimal.NewFromInt(0),
			Max:       decimal.NewFromInt(10),
			Precision: defaultPrecision,
			Required:  []string{FieldNetNewARR, FieldPrevQuarterSMSpend},
		},
	},
	model.MetricCACPayback: {
		ID:       model.MetricCACPayback,
		Name:     "CAC Payback Period",
		Category: "efficiency",
		DataType: "months",
		Validation: model.ValidationRules{
			Min:       decimal.NewFromInt(0),
			Max:       decimal.NewFromInt(60),
			Precision: defaultPrecision,
			Required:  []string{FieldCAC, FieldARPA, FieldGrossMargin},
		},
	},
	model.MetricPipelineCoverage: {
		ID:       model.MetricPipelineCoverage,
		Name:     "Pipeline Coverage",
		Category: "sales",
		DataType: "ratio",
		Validation: model.ValidationRules{
			Min:       decimal.NewFromInt(1),
			Max:       decimal.NewFromInt(10),
			Precision: defaultPrecision,
			Required:  []string{FieldPipelineValue, FieldRevenueTarget},
		},
	},
}

// Definition returns the static definition for a metric type.
func Definition(t model.MetricType) (model.MetricDefinition, bool) {
	d, ok := definitions[t]
	return d, ok
}

// Definitions returns all known metric definitions.
func Definitions() []model.MetricDefinition {
	out := make([]model.MetricDefinition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d)
	}
	return out
}
