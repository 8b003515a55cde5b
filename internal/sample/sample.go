// Package sample turns raw text into exact decimal samples.
package sample

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/ogre-kun/outliers-calculator/internal/errors"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// Parse splits s on commas, semicolons and whitespace and parses every
// token as a decimal literal. Empty input is an error.
func Parse(s string) ([]decimal.Decimal, error) {
	tokens := strings.FieldsFunc(s, isSeparator)
	if len(tokens) == 0 {
		return nil, errors.Newf(errors.InvalidInput, "input data empty")
	}

	values := make([]decimal.Decimal, 0, len(tokens))
	for i, tok := range tokens {
		d, err := decimal.NewFromString(tok)
		if err != nil {
			return nil, errors.New(errors.InvalidInput,
				fmt.Sprintf("input data error: value %d (%q) is not a decimal", i+1, tok), err).
				WithDetails(map[string]interface{}{"position": i + 1, "token": tok})
		}
		values = append(values, d)
	}
	return values, nil
}

// Read parses every line of r as Parse would.
func Read(r io.Reader) ([]decimal.Decimal, error) {
	var b strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New(errors.InvalidInput, "failed to read input", err)
	}
	return Parse(b.String())
}

// ReadFile parses the file at path.
func ReadFile(path string) ([]decimal.Decimal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.InvalidInput, fmt.Sprintf("failed to open %s", path), err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Join renders values the way Parse accepts them.
func Join(values []decimal.Decimal) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

func isSeparator(r rune) bool {
	return r == ',' || r == ';' || unicode.IsSpace(r)
}
