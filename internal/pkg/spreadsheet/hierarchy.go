package spreadsheet

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
)

const (
	hierarchyCodeColumn   = "EHIER_CD"
	hierarchyParentColumn = "PAR_EHIER_CD"
)

// HierarchyFile reads the organisation hierarchy workbook (EHIER_CD, PAR_EHIER_CD)
type HierarchyFile struct {
	path string
}

func NewHierarchyFile(path string) *HierarchyFile {
	return &HierarchyFile{path: path}
}

// LoadHierarchy implements kpi.HierarchySource
func (h *HierarchyFile) LoadHierarchy(ctx context.Context) ([]kpi.HierarchyLink, error) {
	if h.path == "" {
		return nil, nil
	}

	file, err := os.Open(h.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hierarchy file: %w", err)
	}
	defer file.Close()

	rows, err := ReadFirstSheet(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy file: %w", err)
	}
	return ParseHierarchy(rows)
}

// ParseHierarchy converts hierarchy rows (header first) into links
func ParseHierarchy(rows [][]string) ([]kpi.HierarchyLink, error) {
	if len(rows) == 0 {
		return nil, kpi.ErrHierarchyFileInvalid
	}

	codeIdx := ColumnIndex(rows[0], hierarchyCodeColumn)
	parentIdx := ColumnIndex(rows[0], hierarchyParentColumn)
	if codeIdx < 0 || parentIdx < 0 {
		return nil, kpi.ErrHierarchyFileInvalid
	}

	links := make([]kpi.HierarchyLink, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if codeIdx >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[codeIdx])
		if code == "" {
			continue
		}
		var parent string
		if parentIdx < len(row) {
			parent = strings.TrimSpace(row[parentIdx])
		}
		links = append(links, kpi.HierarchyLink{Code: code, ParentCode: parent})
	}
	return links, nil
}
