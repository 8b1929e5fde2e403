package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/layscore/internal/evaluator"
)

const terminalWidthBackup = 100

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	rewardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// RenderResult writes one layout's evaluation as a per-metric table followed
// by the weighted total. With verbose set, per-metric info lines and the
// unmapped ngram weights are included.
func RenderResult(w io.Writer, res *evaluator.Result, verbose bool) error {
	if _, err := fmt.Fprintln(w, titleStyle.Render("Layout "+res.Layout)); err != nil {
		return err
	}

	headers := []string{"metric", "class", "raw", "normalized", "weighted"}
	rightAlign := map[int]bool{2: true, 3: true, 4: true}
	rows := make([][]string, 0, len(res.Metrics))
	for _, m := range res.Metrics {
		weighted := fmt.Sprintf("%.4f", m.Weighted)
		if m.Weighted < 0 {
			weighted = rewardStyle.Render(weighted)
		}
		rows = append(rows, []string{
			m.Name,
			m.Class.String(),
			fmt.Sprintf("%.4f", m.Raw),
			fmt.Sprintf("%.4f", m.Normalized),
			weighted,
		})
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if verbose {
		width := outputWidth(w)
		for _, m := range res.Metrics {
			if m.Info == "" {
				continue
			}
			line := fmt.Sprintf("%s: %s", m.Name, m.Info)
			if displayWidth(line) > width {
				line = truncate(line, width)
			}
			if _, err := fmt.Fprintln(w, mutedStyle.Render(line)); err != nil {
				return err
			}
		}
		weights := make([]float64, len(res.Metrics))
		for i, m := range res.Metrics {
			weights[i] = m.Weighted
		}
		profile := fmt.Sprintf("cost profile: %s", sparkline(weights))
		if _, err := fmt.Fprintln(w, mutedStyle.Render(profile)); err != nil {
			return err
		}
		notFound := fmt.Sprintf("unmapped weight: unigrams %.4f, bigrams %.4f, trigrams %.4f",
			res.NotFoundUnigrams, res.NotFoundBigrams, res.NotFoundTrigrams)
		if _, err := fmt.Fprintln(w, mutedStyle.Render(notFound)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%s %s\n",
		totalStyle.Render("total:"),
		totalStyle.Render(fmt.Sprintf("%.4f", res.Total)))
	return err
}

// RenderComparison writes a metric-by-layout table for several evaluations,
// ordered by ascending total. Lower is better.
func RenderComparison(w io.Writer, results []*evaluator.Result) error {
	if len(results) == 0 {
		return nil
	}
	ordered := make([]*evaluator.Result, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Total < ordered[j].Total
	})

	headers := []string{"metric"}
	rightAlign := map[int]bool{}
	for i, res := range ordered {
		headers = append(headers, res.Layout)
		rightAlign[i+1] = true
	}

	// Metric order follows the first result; all evaluations share one
	// registry, so the sets match.
	rows := make([][]string, 0, len(ordered[0].Metrics)+1)
	for mi, m := range ordered[0].Metrics {
		row := []string{m.Name}
		for _, res := range ordered {
			row = append(row, fmt.Sprintf("%.4f", res.Metrics[mi].Weighted))
		}
		rows = append(rows, row)
	}
	totalRow := []string{"total"}
	for _, res := range ordered {
		totalRow = append(totalRow, fmt.Sprintf("%.4f", res.Total))
	}
	rows = append(rows, totalRow)

	lines := formatTable(headers, rows, rightAlign)
	for i, line := range lines {
		if i == len(lines)-1 {
			line = totalStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func outputWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

const sparkChars = " .:-=+*#%@"

// sparkline renders the values as a single-line ASCII profile, scaled to the
// value range. Equal values collapse to the middle glyph.
func sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 1 {
		return "…"
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := displayWidth(string(r))
		if used+rw > width-1 {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String() + "…"
}
