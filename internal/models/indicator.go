package models

// Unit tells renderers how to format an indicator value.
type Unit string

const (
	UnitPrice   Unit = "price"
	UnitPercent Unit = "percent"
	UnitIndex   Unit = "index"
)

type Indicator struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// IndicatorSet keeps indicators in the order they were computed. Indicators
// whose preconditions were not met are absent, never zero-valued.
type IndicatorSet []Indicator

func (s IndicatorSet) Get(name string) (float64, bool) {
	for _, ind := range s {
		if ind.Name == name {
			return ind.Value, true
		}
	}
	return 0, false
}

func (s IndicatorSet) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

func (s IndicatorSet) Names() []string {
	names := make([]string, len(s))
	for i, ind := range s {
		names[i] = ind.Name
	}
	return names
}
