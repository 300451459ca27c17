package types

// Warning is a non-fatal anomaly surfaced alongside a result. Warnings
// never block quote production; callers log or display them.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
