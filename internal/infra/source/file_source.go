package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"assessment-quiz-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

// QuestionColumn is the header preferred when picking the question column.
const QuestionColumn = "Question"

// FileSource loads the question bank from a spreadsheet (.xlsx) or .csv file.
type FileSource struct {
	path string
	name string
}

func NewFileSource(path string) *FileSource {
	base := filepath.Base(path)
	return &FileSource{
		path: path,
		name: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// Name is the bank name derived from the file name.
func (s *FileSource) Name() string {
	return s.name
}

func (s *FileSource) LoadBank(_ context.Context) (domain.QuestionBank, error) {
	if _, err := os.Stat(s.path); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("%w: %s: %w", domain.ErrSourceLoad, s.path, err)
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(s.path)
	case ".csv":
		rows, err = readCSV(s.path)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(s.path))
	}
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("%w: %s: %w", domain.ErrSourceLoad, s.path, err)
	}

	questions := ExtractQuestions(rows)
	if len(questions) == 0 {
		return domain.QuestionBank{}, fmt.Errorf("%w: %s: file is empty", domain.ErrSourceLoad, s.path)
	}
	return domain.QuestionBank{Name: s.name, Questions: questions}, nil
}

// ExtractQuestions treats the first row as a header and returns the non-blank
// cells of the "Question" column, or of the first column when none is named so.
func ExtractQuestions(rows [][]string) []string {
	if len(rows) < 2 {
		return nil
	}

	col := 0
	for i, header := range rows[0] {
		if strings.TrimSpace(header) == QuestionColumn {
			col = i
			break
		}
	}

	questions := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		if text := strings.TrimSpace(row[col]); text != "" {
			questions = append(questions, text)
		}
	}
	return questions
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}
