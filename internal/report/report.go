// Package report writes the files of one pass to a directory.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"StockDash/internal/export"
	"StockDash/internal/pipeline"
	"StockDash/internal/render"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
	FormatText = "txt"
)

// FileNames maps a format to the file it is written to.
var FileNames = map[string]string{
	FormatCSV:  "stocks.csv",
	FormatXLSX: "stocks.xlsx",
	FormatHTML: "dashboard.html",
	FormatText: "summary.txt",
}

// Write renders res in every requested format under dir and returns the written paths.
// Each file is replaced atomically so readers never see a partial report.
func Write(dir string, formats []string, res *pipeline.Result, form render.Form) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var paths []string
	for _, format := range formats {
		name, ok := FileNames[format]
		if !ok {
			return paths, fmt.Errorf("unknown report format %q", format)
		}
		var buf bytes.Buffer
		if err := encode(&buf, format, res, form); err != nil {
			return paths, fmt.Errorf("render %s: %w", format, err)
		}
		path := filepath.Join(dir, name)
		if err := writeAtomic(path, buf.Bytes()); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func encode(buf *bytes.Buffer, format string, res *pipeline.Result, form render.Form) error {
	switch format {
	case FormatCSV:
		return export.WriteCSV(buf, res.Frame())
	case FormatXLSX:
		return export.WriteXLSX(buf, res.Frame(), res.Summaries, res.Sectors)
	case FormatHTML:
		return render.Dashboard(buf, render.View{Form: form, Result: res})
	default:
		return render.WriteText(buf, res)
	}
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// FormFor describes the request of res as dashboard controls.
func FormFor(res *pipeline.Result) render.Form {
	ma := make([]string, len(res.Request.Windows))
	for i, w := range res.Request.Windows {
		ma[i] = strconv.Itoa(w)
	}
	return render.Form{
		Symbols: strings.Join(res.Request.Symbols, ","),
		Start:   res.Request.Start.Format("2006-01-02"),
		End:     res.Request.End.Format("2006-01-02"),
		MA:      strings.Join(ma, ","),
	}
}
