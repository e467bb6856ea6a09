package entity

// ValidationResult is the derived, ephemeral outcome of validating one
// FinancialRecord. It is recomputed fresh per record and never mutated
// after creation.
//
// Confidence is a heuristic proxy in [0,100], not a calibrated
// probability: a fixed penalty is subtracted per error and per warning.
type ValidationResult struct {
	IsValid    bool     `json:"is_valid"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
	Confidence int      `json:"confidence"`
}
