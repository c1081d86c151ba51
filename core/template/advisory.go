package template

// Advisory codes for repairs that were absorbed without blocking the
// operation. They inform the editor, they never fail a save.
const (
	AdvisoryDefaultPageAdded     = "default_page_added"
	AdvisoryBlocksAutofixed      = "blocks_autofixed"
	AdvisoryEnvelopeUnwrapped    = "envelope_unwrapped"
	AdvisoryHistoryDiscontinuity = "history_discontinuity"
)

// Advisory is a non-fatal signal surfaced alongside a successful
// migrate/save so the caller knows a repair happened.
type Advisory struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
