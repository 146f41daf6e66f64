package extract

import (
	"context"
	"encoding/json"

	"github.com/snakemake/plugin-catalog/internal/plugin"
	"github.com/snakemake/plugin-catalog/internal/workenv"
)

// AuxiliaryFunc extracts category-specific data from a plugin
type AuxiliaryFunc func(ctx context.Context, e *Extractor, env *workenv.Environment, c plugin.Candidate) (plugin.Auxiliary, error)

var auxiliaryTable = map[plugin.Category]AuxiliaryFunc{
	plugin.CategoryStorage: selectorAuxiliary("example_queries"),
}

func noAuxiliary(context.Context, *Extractor, *workenv.Environment, plugin.Candidate) (plugin.Auxiliary, error) {
	return plugin.Auxiliary{}, nil
}

// selectorAuxiliary asks the driver for one named auxiliary data set
func selectorAuxiliary(selector string) AuxiliaryFunc {
	return func(ctx context.Context, e *Extractor, env *workenv.Environment, c plugin.Candidate) (plugin.Auxiliary, error) {
		raw, err := e.Extract(ctx, env, c, Query{Op: OpGetAuxiliary, Selector: selector})
		if err != nil {
			return nil, err
		}

		aux := plugin.Auxiliary{}
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, &ExtractionError{Op: OpGetAuxiliary, Package: c.Package, Output: string(raw), Err: err}
		}
		return aux, nil
	}
}
