package entity

// BreakdownEntry is one itemized monetary component under assets or
// liabilities, in document order.
type BreakdownEntry struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// FinancialRecord is the structured snapshot extracted from one NAV
// document. Zero values are the "unknown/unset" sentinel for the numeric
// fields and the empty string for the text fields; the extractor never
// fails, it just leaves unmatched fields at their sentinel.
type FinancialRecord struct {
	FundName         string  `json:"fund_name"`
	Date             string  `json:"date"`
	TotalAssets      float64 `json:"total_assets"`
	TotalLiabilities float64 `json:"total_liabilities"`
	// NetAssets is always derived as TotalAssets - TotalLiabilities,
	// never harvested independently.
	NetAssets        float64 `json:"net_assets"`
	UnitsOutstanding float64 `json:"units_outstanding"`
	NAVPerUnit       float64 `json:"nav_per_unit"`
	// OfficialNAV is the independently stated figure; it may legitimately
	// differ from NAVPerUnit, and the delta is the signal of interest.
	OfficialNAV float64 `json:"official_nav"`

	AssetBreakdown     []BreakdownEntry `json:"asset_breakdown,omitempty"`
	LiabilityBreakdown []BreakdownEntry `json:"liability_breakdown,omitempty"`

	// RawText retains the full source text for downstream prompts.
	RawText string `json:"raw_text,omitempty"`
}
