package seedsheet

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/repstats/repstats/pkg/logger"
)

// Server serves a generated corpus over the values-API surface:
//
//	GET /v4/spreadsheets/{id}/values/{range}
//	GET /v4/spreadsheets/{id}/values:batchGet?ranges=...
//
// Any spreadsheet id and API key are accepted.
type Server struct {
	corpus Corpus
	log    logger.Logger
}

// NewServer wraps a corpus in an HTTP handler.
func NewServer(corpus Corpus, log logger.Logger) *Server {
	return &Server{corpus: corpus, log: log}
}

type valueRange struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

type batchEnvelope struct {
	ValueRanges []valueRange `json:"valueRanges"`
}

// Handler returns the values-API mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/spreadsheets/", s.handleValues)
	return mux
}

func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if s.log != nil {
		s.log.Debug(r.Context(), "values read", logger.String("path", r.URL.Path))
	}

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/")
	switch {
	case strings.HasSuffix(path, "/values:batchGet"):
		s.handleBatch(w, r)
	case strings.Contains(path, "/values/"):
		s.handleSingle(w, r, path[strings.Index(path, "/values/")+len("/values/"):])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleSingle(w http.ResponseWriter, r *http.Request, rawRange string) {
	values, err := s.window(rawRange)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, valueRange{Range: rawRange, Values: values})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	ranges := r.URL.Query()["ranges"]
	envelope := batchEnvelope{ValueRanges: make([]valueRange, 0, len(ranges))}
	for _, rawRange := range ranges {
		values, err := s.window(rawRange)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		envelope.ValueRanges = append(envelope.ValueRanges, valueRange{Range: rawRange, Values: values})
	}
	writeJSON(w, envelope)
}

// window slices the corpus for one A1-style range. Missing trailing
// rows and cells are omitted, mirroring the real API.
func (s *Server) window(rawRange string) ([][]any, error) {
	sheetName, startCol, endCol, startRow, endRow, err := parseRange(rawRange)
	if err != nil {
		return nil, err
	}

	sheet := s.corpus[sheetName]
	var values [][]any
	for row := startRow - 1; row < endRow && row < len(sheet); row++ {
		full := sheet[row]
		var cells []any
		for col := startCol; col <= endCol && col < len(full); col++ {
			cells = append(cells, full[col])
		}
		values = append(values, cells)
	}
	// Trim fully empty trailing rows the way the API omits them.
	for len(values) > 0 && rowEmpty(values[len(values)-1]) {
		values = values[:len(values)-1]
	}
	return values, nil
}

func rowEmpty(cells []any) bool {
	for _, cell := range cells {
		if str, ok := cell.(string); !ok || str != "" {
			return false
		}
	}
	return true
}

// parseRange splits an A1-style range like "Push!A2:E201" into its
// sheet name, 0-based column bounds and 1-based row bounds.
func parseRange(rawRange string) (sheet string, startCol, endCol, startRow, endRow int, err error) {
	bang := strings.IndexByte(rawRange, '!')
	if bang < 1 {
		return "", 0, 0, 0, 0, fmt.Errorf("invalid range %q", rawRange)
	}
	sheet = rawRange[:bang]

	bounds := strings.SplitN(rawRange[bang+1:], ":", 2)
	if len(bounds) != 2 {
		return "", 0, 0, 0, 0, fmt.Errorf("invalid range %q", rawRange)
	}

	startCol, startRow, err = parseCell(bounds[0])
	if err != nil {
		return "", 0, 0, 0, 0, err
	}
	endCol, endRow, err = parseCell(bounds[1])
	if err != nil {
		return "", 0, 0, 0, 0, err
	}
	return sheet, startCol, endCol, startRow, endRow, nil
}

// parseCell splits "E201" into a 0-based column and 1-based row.
func parseCell(cell string) (col, row int, err error) {
	split := 0
	for split < len(cell) && cell[split] >= 'A' && cell[split] <= 'Z' {
		split++
	}
	if split == 0 || split == len(cell) {
		return 0, 0, fmt.Errorf("invalid cell %q", cell)
	}
	for _, c := range cell[:split] {
		col = col*26 + int(c-'A') + 1
	}
	row, err = strconv.Atoi(cell[split:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("invalid cell %q", cell)
	}
	return col - 1, row, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
