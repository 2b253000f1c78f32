// Package dictionary reads word lists that sessions admit words from.
package dictionary

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Reserved source names that do not refer to a word list file
const (
	SourceHistory   = "history"
	SourceFavorites = "favorite"
)

var extensions = []string{".json", ".csv", ".xlsx"}

// IsReserved reports whether name is one of the reserved sources
func IsReserved(name string) bool {
	return name == SourceHistory || name == SourceFavorites
}

// SourceNotFoundError reports a missing or empty source
type SourceNotFoundError struct {
	Name   string
	Reason string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("dictionary: source %q %s", e.Name, e.Reason)
}

// Loader finds word lists in a directory
type Loader struct {
	Dir string
}

// NewLoader creates a loader over dir
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Sources lists the selectable sources: the reserved ones when they have
// data, followed by every word list in the directory.
func (l *Loader) Sources(hasHistory, hasFavorites bool) ([]string, error) {
	var sources []string
	if hasHistory {
		sources = append(sources, SourceHistory)
	}
	if hasFavorites {
		sources = append(sources, SourceFavorites)
	}

	entries, err := os.ReadDir(l.Dir)
	if os.IsNotExist(err) {
		return sources, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary directory: %v", err)
	}

	var lists []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, known := range extensions {
			if ext == known {
				lists = append(lists, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
				break
			}
		}
	}
	sort.Strings(lists)
	return append(sources, lists...), nil
}

// LoadWordList returns the words of a list in file order without duplicates
func (l *Loader) LoadWordList(name string) ([]string, error) {
	if IsReserved(name) {
		return nil, &SourceNotFoundError{Name: name, Reason: "is reserved"}
	}
	path, err := l.resolve(name)
	if err != nil {
		return nil, err
	}

	var words []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		words, err = readJSON(path)
	case ".csv":
		words, err = readCSV(path)
	default:
		words, err = readExcel(path)
	}
	if err != nil {
		return nil, err
	}

	words = dedupe(words)
	if len(words) == 0 {
		return nil, &SourceNotFoundError{Name: name, Reason: "has no words"}
	}
	return words, nil
}

func (l *Loader) resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", &SourceNotFoundError{Name: name, Reason: "is not a valid name"}
	}
	for _, ext := range extensions {
		path := filepath.Join(l.Dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", &SourceNotFoundError{Name: name, Reason: "does not exist"}
}

// readJSON reads a JSON array of words
func readJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %v", err)
	}
	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("failed to parse word list %s: %v", path, err)
	}
	return words, nil
}

// readCSV reads the first column of a CSV file
func readCSV(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var words []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %v", err)
		}
		if len(record) > 0 {
			words = append(words, record[0])
		}
	}
	return words, nil
}

// readExcel reads column A of the first sheet
func readExcel(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	var words []string
	for _, row := range rows {
		if len(row) > 0 {
			words = append(words, row[0])
		}
	}
	return words, nil
}

func dedupe(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
