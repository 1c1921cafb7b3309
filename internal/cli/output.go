package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"garden-console/internal/domain/model"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

func (e *env) printJSON(v interface{}) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// print table 형식이면 header/rows 를, json 이면 v 를 쓴다
func (e *env) print(v interface{}, header []string, rows [][]string) error {
	if e.format == "json" {
		return e.printJSON(v)
	}
	renderTable(e.out, header, rows)
	return nil
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.AppendBulk(rows)
	t.Render()
}

// pageFooter "2/5 페이지, 전체 1,234건"
func pageFooter[T any](w io.Writer, p *model.PageResponse[T]) {
	pages := p.TotalPages
	if pages == 0 {
		pages = 1
	}
	fmt.Fprintf(w, "%d/%d 페이지, 전체 %s건\n", p.PageNumber+1, pages, humanize.Comma(p.TotalElements))
}

func i64(n int64) string { return strconv.FormatInt(n, 10) }

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
