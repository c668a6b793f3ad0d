package domain

// TariffSlab is one band of a slab table. UpToUnits is the inclusive upper
// bound of the band; the band starts where the previous one ended.
type TariffSlab struct {
	UpToUnits float64 `json:"up_to_units" mapstructure:"up_to_units"`
	Rate      float64 `json:"rate" mapstructure:"rate"`
}

type BillRow struct {
	FromUnits float64 `json:"from"`
	ToUnits   float64 `json:"to"`
	Units     float64 `json:"units"`
	Rate      float64 `json:"rate"`
	Amount    float64 `json:"amount"`
}

type BillResult struct {
	Units   float64   `json:"units"`
	Total   float64   `json:"total"`
	Breakup []BillRow `json:"breakup"`
}
