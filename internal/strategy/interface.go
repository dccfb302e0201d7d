package strategy

import (
	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
)

// Generator derives a per-bar signal and feature set from a price series.
// Implementations must be pure: no mutation of the input, no retained state,
// identical output for identical input.
type Generator interface {
	Name() string
	Generate(bars []model.PriceBar) (*model.SignalSeries, error)
}
