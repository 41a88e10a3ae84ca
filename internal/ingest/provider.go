package ingest

// Result holds the outcome of a sync ingest operation.
type Result struct {
	MetricsReceived int      `json:"metrics_received"`
	MetricsInserted int64    `json:"metrics_inserted"`
	MetricsSkipped  int64    `json:"metrics_skipped"`
	MetricsRejected int      `json:"metrics_rejected"`
	RejectedNames   []string `json:"rejected_names,omitempty"`

	SessionsReceived int   `json:"sessions_received,omitempty"`
	SessionsInserted int64 `json:"sessions_inserted,omitempty"`

	PowerTestsReceived int   `json:"power_tests_received,omitempty"`
	PowerTestsInserted int64 `json:"power_tests_inserted,omitempty"`

	Message string `json:"message,omitempty"`
}
