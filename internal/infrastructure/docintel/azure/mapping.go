package azure

import (
	"strings"

	"github.com/mkrashin/document-insight/internal/core/domain"
)

type analyzeResult struct {
	Content string `json:"content"`
	Tables  []struct {
		RowCount    int `json:"rowCount"`
		ColumnCount int `json:"columnCount"`
		Cells       []struct {
			RowIndex    int    `json:"rowIndex"`
			ColumnIndex int    `json:"columnIndex"`
			Content     string `json:"content"`
		} `json:"cells"`
	} `json:"tables"`
	KeyValuePairs []struct {
		Key *struct {
			Content string `json:"content"`
		} `json:"key"`
		Value *struct {
			Content string `json:"content"`
		} `json:"value"`
	} `json:"keyValuePairs"`
}

// mapAnalyzeResult converts the service payload into the closed
// ExtractedData shape, filling empty defaults so downstream consumers never
// see nil fields.
func mapAnalyzeResult(result *analyzeResult) domain.ExtractedData {
	data := domain.NewExtractedData()
	if result == nil {
		return data
	}

	data.Content = result.Content

	for _, table := range result.Tables {
		mapped := domain.Table{
			RowCount:    table.RowCount,
			ColumnCount: table.ColumnCount,
			Cells:       make([]domain.TableCell, 0, len(table.Cells)),
		}
		for _, cell := range table.Cells {
			mapped.Cells = append(mapped.Cells, domain.TableCell{
				Row:     cell.RowIndex,
				Column:  cell.ColumnIndex,
				Content: cell.Content,
			})
		}
		data.Tables = append(data.Tables, mapped)
	}

	for _, pair := range result.KeyValuePairs {
		if pair.Key == nil {
			continue
		}
		key := strings.TrimSpace(pair.Key.Content)
		if key == "" {
			continue
		}
		value := ""
		if pair.Value != nil {
			value = strings.TrimSpace(pair.Value.Content)
		}
		data.KeyValuePairs[key] = value
	}

	return data
}
