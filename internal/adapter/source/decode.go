package source

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/couchcryptid/housing-affordability-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/housing-affordability-etl/internal/config"
	"github.com/couchcryptid/housing-affordability-etl/internal/domain"
)

var (
	zipSignature = []byte("PK\x03\x04")
	utf8BOM      = []byte("\xef\xbb\xbf")
)

// Options controls how a fetched blob becomes a grid.
type Options struct {
	Format    string // config.FormatAuto, FormatCSV or FormatXLSX
	Charset   string // WHATWG label, CSV only
	Delimiter rune   // CSV only
	Sheet     string // workbook only; empty selects the first sheet
}

// OptionsFromConfig maps the SOURCE_* settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Format:    cfg.SourceFormat,
		Charset:   cfg.SourceCharset,
		Delimiter: cfg.SourceDelimiter,
		Sheet:     cfg.SourceSheet,
	}
}

// Decode turns a raw blob into a grid. Workbooks are detected by their zip
// signature unless the format is forced.
func Decode(data []byte, opts Options) (domain.Grid, error) {
	format := opts.Format
	if format == "" || format == config.FormatAuto {
		format = config.FormatCSV
		if bytes.HasPrefix(data, zipSignature) {
			format = config.FormatXLSX
		}
	}

	if format == config.FormatXLSX {
		grid, err := xlsx.ReadGrid(data, opts.Sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
		}
		return grid, nil
	}

	text, err := decodeText(data, opts.Charset)
	if err != nil {
		return nil, err
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}
	return domain.ParseGridDelimited(text, delim), nil
}

// decodeText converts data to UTF-8. A UTF-8 byte order mark wins over the
// configured charset.
func decodeText(data []byte, charset string) (string, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		return string(data[len(utf8BOM):]), nil
	}
	if charset == "" || isUTF8Label(charset) {
		return string(data), nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("%w: charset %q: %w", ErrUndecodable, charset, err)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: decode %s: %w", ErrUndecodable, charset, err)
	}
	return string(out), nil
}

func isUTF8Label(charset string) bool {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "utf-8", "utf8", "unicode-1-1-utf-8":
		return true
	}
	return false
}
