// Package corpus holds ngram frequency tables extracted from text corpora.
package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Unigram is a single symbol with its occurrence weight.
type Unigram struct {
	Sym    rune
	Weight float64
	Rel    float64
}

// Bigram is a pair of consecutive symbols with its occurrence weight.
type Bigram struct {
	A, B   rune
	Weight float64
	Rel    float64
}

// Trigram is a triple of consecutive symbols with its occurrence weight.
type Trigram struct {
	A, B, C rune
	Weight  float64
	Rel     float64
}

// Corpus contains the unigram, bigram, and trigram tables of a text corpus.
// Relative weights sum to 1 per table.
type Corpus struct {
	Unigrams []Unigram
	Bigrams  []Bigram
	Trigrams []Trigram
}

// File names inside an ngram directory.
const (
	UnigramFile = "1-grams.txt"
	BigramFile  = "2-grams.txt"
	TrigramFile = "3-grams.txt"
)

// Load reads the three ngram files from a directory. Each line holds
// `count<TAB>gram`; \n, \t, and \\ escapes inside the gram are unescaped.
func Load(dir string) (*Corpus, error) {
	c := &Corpus{}
	if err := loadFile(filepath.Join(dir, UnigramFile), 1, func(sym []rune, w float64) {
		c.Unigrams = append(c.Unigrams, Unigram{Sym: sym[0], Weight: w})
	}); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(dir, BigramFile), 2, func(sym []rune, w float64) {
		c.Bigrams = append(c.Bigrams, Bigram{A: sym[0], B: sym[1], Weight: w})
	}); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(dir, TrigramFile), 3, func(sym []rune, w float64) {
		c.Trigrams = append(c.Trigrams, Trigram{A: sym[0], B: sym[1], C: sym[2], Weight: w})
	}); err != nil {
		return nil, err
	}
	c.sort()
	c.normalize()
	return c, nil
}

func loadFile(path string, n int, add func([]rune, float64)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open ngram file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only file.
			_ = cerr
		}
	}()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		countStr, gram, ok := strings.Cut(line, "\t")
		if !ok {
			return fmt.Errorf("%s:%d: expected count<TAB>gram", path, lineNo)
		}
		weight, err := strconv.ParseFloat(countStr, 64)
		if err != nil {
			return fmt.Errorf("%s:%d: bad count %q: %w", path, lineNo, countStr, err)
		}
		syms := []rune(unescape(gram))
		if len(syms) != n {
			return fmt.Errorf("%s:%d: gram %q has %d symbols, want %d", path, lineNo, gram, len(syms), n)
		}
		add(syms, weight)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read ngram file: %w", err)
	}
	return nil
}

// Save writes the three ngram files into a directory, creating it if needed.
// Lines use the same `count<TAB>gram` format Load reads.
func (c *Corpus) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create ngram directory: %w", err)
	}
	uniLines := make([]string, 0, len(c.Unigrams))
	for _, g := range c.Unigrams {
		uniLines = append(uniLines, formatLine(g.Weight, string(g.Sym)))
	}
	if err := saveFile(filepath.Join(dir, UnigramFile), uniLines); err != nil {
		return err
	}
	biLines := make([]string, 0, len(c.Bigrams))
	for _, g := range c.Bigrams {
		biLines = append(biLines, formatLine(g.Weight, string([]rune{g.A, g.B})))
	}
	if err := saveFile(filepath.Join(dir, BigramFile), biLines); err != nil {
		return err
	}
	triLines := make([]string, 0, len(c.Trigrams))
	for _, g := range c.Trigrams {
		triLines = append(triLines, formatLine(g.Weight, string([]rune{g.A, g.B, g.C})))
	}
	return saveFile(filepath.Join(dir, TrigramFile), triLines)
}

func formatLine(weight float64, gram string) string {
	return strconv.FormatFloat(weight, 'f', -1, 64) + "\t" + escape(gram)
}

func saveFile(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create ngram file: %w", err)
	}
	writer := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := fmt.Fprintln(writer, line); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write ngram file: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush ngram file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close ngram file: %w", err)
	}
	return nil
}

func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if escaped {
			switch r {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune(r)
			}
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FromText counts sliding-window ngrams over raw text.
func FromText(text string) *Corpus {
	runes := []rune(text)
	uni := map[rune]float64{}
	bi := map[[2]rune]float64{}
	tri := map[[3]rune]float64{}
	for i, r := range runes {
		uni[r]++
		if i+1 < len(runes) {
			bi[[2]rune{r, runes[i+1]}]++
		}
		if i+2 < len(runes) {
			tri[[3]rune{r, runes[i+1], runes[i+2]}]++
		}
	}

	c := &Corpus{}
	for sym, w := range uni {
		c.Unigrams = append(c.Unigrams, Unigram{Sym: sym, Weight: w})
	}
	for syms, w := range bi {
		c.Bigrams = append(c.Bigrams, Bigram{A: syms[0], B: syms[1], Weight: w})
	}
	for syms, w := range tri {
		c.Trigrams = append(c.Trigrams, Trigram{A: syms[0], B: syms[1], C: syms[2], Weight: w})
	}
	c.sort()
	c.normalize()
	return c
}

// sort orders tables by descending weight, ties broken by symbols, so that
// map iteration order never leaks into results.
func (c *Corpus) sort() {
	sort.Slice(c.Unigrams, func(i, j int) bool {
		if c.Unigrams[i].Weight != c.Unigrams[j].Weight {
			return c.Unigrams[i].Weight > c.Unigrams[j].Weight
		}
		return c.Unigrams[i].Sym < c.Unigrams[j].Sym
	})
	sort.Slice(c.Bigrams, func(i, j int) bool {
		if c.Bigrams[i].Weight != c.Bigrams[j].Weight {
			return c.Bigrams[i].Weight > c.Bigrams[j].Weight
		}
		if c.Bigrams[i].A != c.Bigrams[j].A {
			return c.Bigrams[i].A < c.Bigrams[j].A
		}
		return c.Bigrams[i].B < c.Bigrams[j].B
	})
	sort.Slice(c.Trigrams, func(i, j int) bool {
		if c.Trigrams[i].Weight != c.Trigrams[j].Weight {
			return c.Trigrams[i].Weight > c.Trigrams[j].Weight
		}
		if c.Trigrams[i].A != c.Trigrams[j].A {
			return c.Trigrams[i].A < c.Trigrams[j].A
		}
		if c.Trigrams[i].B != c.Trigrams[j].B {
			return c.Trigrams[i].B < c.Trigrams[j].B
		}
		return c.Trigrams[i].C < c.Trigrams[j].C
	})
}

func (c *Corpus) normalize() {
	var totalUni, totalBi, totalTri float64
	for _, g := range c.Unigrams {
		totalUni += g.Weight
	}
	for _, g := range c.Bigrams {
		totalBi += g.Weight
	}
	for _, g := range c.Trigrams {
		totalTri += g.Weight
	}
	for i := range c.Unigrams {
		c.Unigrams[i].Rel = rel(c.Unigrams[i].Weight, totalUni)
	}
	for i := range c.Bigrams {
		c.Bigrams[i].Rel = rel(c.Bigrams[i].Weight, totalBi)
	}
	for i := range c.Trigrams {
		c.Trigrams[i].Rel = rel(c.Trigrams[i].Weight, totalTri)
	}
}

func rel(w, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return w / total
}
