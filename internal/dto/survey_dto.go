package dto

// SubmitResponse acknowledges a stored submission with the bilingual
// thank-you message shown to the respondent.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListResponsesResponse wraps the stored records. Each entry is the flat
// document shape: id, timestamp, then the answer fields.
type ListResponsesResponse struct {
	Responses []map[string]any `json:"responses"`
}

type StatsResponse struct {
	Total     int64            `json:"total"`
	Today     int64            `json:"today"`
	FilmStats map[string]int64 `json:"filmStats"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Mongodb   string `json:"mongodb"`
	Timestamp string `json:"timestamp"`
}

// CsvExport is the rendered export: body text (BOM included) plus the
// filename suggested via Content-Disposition.
type CsvExport struct {
	Filename string
	Content  string
}
