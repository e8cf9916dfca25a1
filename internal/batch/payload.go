package batch

// Measurements is the validated, typed view of one batch.
type Measurements struct {
	Temperature      float64
	RH               RelativeHumidity
	DaysSinceMilling string // finite number as entered, or DaysNotKnown
	Season           Season
	Moisture         string
	Packing          string
}

// Payload is the body POSTed to the prediction endpoint.
// The key names are fixed by the prediction service.
type Payload struct {
	Temperature      float64          `json:"Storage Temperature in C" yaml:"Storage Temperature in C"`
	RH               RelativeHumidity `json:"RH in percent" yaml:"RH in percent"`
	DaysSinceMilling string           `json:"Days passed after milling" yaml:"Days passed after milling"`
	Season           Season           `json:"Season" yaml:"Season"`
	Moisture         string           `json:"Moisture" yaml:"Moisture"`
	Packing          string           `json:"Packing" yaml:"Packing"`

	// Set only when RH is resolved by seasonal lookup.
	RHLookupSeason Season `json:"RH Lookup Season,omitempty" yaml:"RH Lookup Season,omitempty"`
}

// NewPayload folds m into the outbound shape. "Season" is always the primary
// season; the lookup season, if any, travels under its own key.
func NewPayload(m Measurements) Payload {
	p := Payload{
		Temperature:      m.Temperature,
		RH:               m.RH,
		DaysSinceMilling: m.DaysSinceMilling,
		Season:           m.Season,
		Moisture:         m.Moisture,
		Packing:          m.Packing,
	}
	if s, ok := m.RH.LookupSeason(); ok {
		p.RHLookupSeason = s
	}
	return p
}

// Prediction is a successful response from the prediction endpoint.
type Prediction struct {
	ShelfLifeDays         float64 `json:"shelf_life_days" yaml:"shelf_life_days"`
	FreeFattyAcidsPercent float64 `json:"predicted_free_fatty_acids_percent" yaml:"predicted_free_fatty_acids_percent"`
}
