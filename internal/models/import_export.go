package models

// ImportValidationError locates one rejected row in an imported question sheet.
type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// SheetImportResult summarizes a CSV or Excel question import.
type SheetImportResult struct {
	TotalRows     int                     `json:"total_rows"`
	ProcessedRows int                     `json:"processed_rows"`
	SuccessCount  int                     `json:"success_count"`
	ErrorCount    int                     `json:"error_count"`
	Errors        []ImportValidationError `json:"errors"`
	Questions     []Question              `json:"questions,omitempty"`
}
