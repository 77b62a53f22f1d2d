package models

// AnalyzeParams are the query parameters accepted by the analyze endpoint.
type AnalyzeParams struct {
	Padding    string   `validate:"required"`
	Delimiter  string   `validate:"required"`
	CardSort   CardSort `validate:"oneof=name appearances"`
	LimitCards int      `validate:"gte=0"`
}

// AnalyzeResponse is a report with its cards flattened into the requested order.
type AnalyzeResponse struct {
	ID        string                 `json:"id"`
	Games     int                    `json:"games"`
	Locations []LocationInsight      `json:"locations"`
	Decks     map[string]DeckInsight `json:"decks"`
	Cards     []CardInsight          `json:"cards"`
	CardSort  CardSort               `json:"card_sort"`
}

// NewAnalyzeResponse flattens report's cards into the requested order.
func NewAnalyzeResponse(report *Report, sort CardSort, limit int) AnalyzeResponse {
	return AnalyzeResponse{
		ID:        report.ID,
		Games:     report.Games,
		Locations: report.Locations,
		Decks:     report.Decks,
		Cards:     report.Cards.Ordered(sort, limit),
		CardSort:  sort,
	}
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Record *int   `json:"record,omitempty"`
	Field  string `json:"field,omitempty"`
}
