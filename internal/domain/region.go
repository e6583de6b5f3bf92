package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Region is a canonical voivodeship name, title-case with Polish diacritics.
type Region string

// The sixteen voivodeships, in territorial code order.
const (
	Dolnoslaskie       Region = "Dolnośląskie"
	KujawskoPomorskie  Region = "Kujawsko-Pomorskie"
	Lubelskie          Region = "Lubelskie"
	Lubuskie           Region = "Lubuskie"
	Lodzkie            Region = "Łódzkie"
	Malopolskie        Region = "Małopolskie"
	Mazowieckie        Region = "Mazowieckie"
	Opolskie           Region = "Opolskie"
	Podkarpackie       Region = "Podkarpackie"
	Podlaskie          Region = "Podlaskie"
	Pomorskie          Region = "Pomorskie"
	Slaskie            Region = "Śląskie"
	Swietokrzyskie     Region = "Świętokrzyskie"
	WarminskoMazurskie Region = "Warmińsko-Mazurskie"
	Wielkopolskie      Region = "Wielkopolskie"
	Zachodniopomorskie Region = "Zachodniopomorskie"
)

var allRegions = []Region{
	Dolnoslaskie, KujawskoPomorskie, Lubelskie, Lubuskie,
	Lodzkie, Malopolskie, Mazowieckie, Opolskie,
	Podkarpackie, Podlaskie, Pomorskie, Slaskie,
	Swietokrzyskie, WarminskoMazurskie, Wielkopolskie, Zachodniopomorskie,
}

var (
	// labelNoiseRe matches everything that is not a letter, whitespace or hyphen:
	// footnote markers, digits, trailing commas, stray quotes.
	labelNoiseRe = regexp.MustCompile(`[^\p{L}\s-]+`)

	// foldDiacritics maps "Śląskie" to "Slaskie". Ł has no decomposition and
	// is mapped explicitly.
	foldDiacritics = transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			switch r {
			case 'ł':
				return 'l'
			case 'Ł':
				return 'L'
			}
			return r
		}),
		norm.NFC,
	)

	// mojibakeCodepages are the codepages a UTF-8 label is typically
	// mis-decoded with before it reaches us.
	mojibakeCodepages = []*charmap.Charmap{charmap.Windows1252, charmap.Windows1250, charmap.ISO8859_2}

	exactIndex = make(map[string]Region, len(allRegions))
	looseIndex = make(map[string]Region, len(allRegions))
)

func init() {
	for _, r := range allRegions {
		exactIndex[exactKey(string(r))] = r
		looseIndex[looseKey(string(r))] = r
	}
}

// Regions returns the canonical regions in territorial code order.
func Regions() []Region {
	out := make([]Region, len(allRegions))
	copy(out, allRegions)
	return out
}

// NormalizeRegion maps a raw region label to its canonical region.
//
// The label is stripped of everything except letters, whitespace and hyphens,
// trimmed, and compared case-insensitively against the canonical names. If that
// fails, the label is retried after repairing UTF-8 text that was mis-decoded
// as a single-byte codepage ("ÅšlÄ…skie"), and finally compared ignoring
// diacritics, spaces and hyphens ("SLASKIE", "Kujawsko Pomorskie"). Returns
// false when the label names no voivodeship.
func NormalizeRegion(label string) (Region, bool) {
	candidates := append([]string{label}, repairMojibake(label)...)

	for _, c := range candidates {
		if r, ok := exactIndex[exactKey(cleanLabel(c))]; ok {
			return r, true
		}
	}
	for _, c := range candidates {
		cleaned := cleanLabel(c)
		if cleaned == "" {
			continue
		}
		if r, ok := looseIndex[looseKey(cleaned)]; ok {
			return r, true
		}
	}
	return "", false
}

// cleanLabel strips decoration and collapses internal whitespace.
func cleanLabel(label string) string {
	label = norm.NFC.String(label)
	label = labelNoiseRe.ReplaceAllString(label, "")
	return strings.Join(strings.Fields(label), " ")
}

// exactKey is the case-folded form used for the primary lookup.
func exactKey(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// looseKey folds case and diacritics and drops spaces and hyphens.
func looseKey(s string) string {
	folded, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		folded = s
	}
	folded = strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
	return cases.Fold().String(folded)
}

// repairMojibake returns re-decodings of label under the assumption that its
// UTF-8 bytes were read as one of mojibakeCodepages. Only re-encodings that
// form valid UTF-8 different from the input are returned.
func repairMojibake(label string) []string {
	if isASCII(label) {
		return nil
	}
	var out []string
	for _, cp := range mojibakeCodepages {
		raw, err := cp.NewEncoder().String(label)
		if err != nil || raw == label || !utf8.ValidString(raw) {
			continue
		}
		out = append(out, raw)
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
