package tgCallback

// Callback button uniques. The payload after the unique carries the id.
const (
	Summary      string = "summary"
	Companies    string = "companies"
	Company      string = "company"       // payload: company id
	EditCompany  string = "edit_company"  // payload: company id
	EditMetrics  string = "edit_metrics"  // payload: company id
	ExportReport string = "export_report" // payload: fund id
	SaveDraft    string = "save_draft"
	CancelDraft  string = "cancel_draft"
)
