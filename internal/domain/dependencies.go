package domain

import "time"

// Dependencies is the merged runtime and development dependency set of a manifest
type Dependencies struct {
	Owner        string            `json:"owner"`
	Repo         string            `json:"repo"`
	Branch       string            `json:"branch,omitempty"`
	Manifest     string            `json:"manifest"`
	Dependencies map[string]string `json:"dependencies"`
	Names        []string          `json:"names"`
}

// RateStatus is the last GitHub quota seen in a response
type RateStatus struct {
	Observed  bool      `json:"observed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}
