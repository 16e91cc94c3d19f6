package format

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Func convertit une valeur en texte d'affichage.
type Func func(float64) string

// Int : entier arrondi (demi-pair).
func Int(x float64) string {
	if s, ok := special(x); ok {
		return s
	}
	return fmt.Sprintf("%d", int64(math.RoundToEven(x)))
}

// IntThousands : "12 K." au-delà de 1000, entier sinon.
func IntThousands(x float64) string {
	if math.IsInf(x, 1) {
		return "inf K."
	}
	if x >= 1000 {
		return fmt.Sprintf("%.0f K.", x/1000)
	}
	return Int(x)
}

// Percent : entier suivi de "% ".
func Percent(x float64) string {
	if s, ok := special(x); ok {
		return s + " "
	}
	return Int(x) + "% "
}

// Float : une décimale.
func Float(x float64) string {
	if s, ok := special(x); ok {
		return s
	}
	return fmt.Sprintf("%.1f", x)
}

// Style nomme un formateur ; c'est ce que les rapports transportent.
type Style string

const (
	StyleInt          Style = "int"
	StyleIntThousands Style = "int_thousands"
	StylePercent      Style = "percent"
	StyleFloat        Style = "float"
)

// Func renvoie le formateur du style ; Float par défaut.
func (s Style) Func() Func {
	switch s {
	case StyleInt:
		return Int
	case StyleIntThousands:
		return IntThousands
	case StylePercent:
		return Percent
	default:
		return Float
	}
}

func (s Style) Format(x float64) string { return s.Func()(x) }

func special(x float64) (string, bool) {
	switch {
	case math.IsNaN(x):
		return "nan", true
	case math.IsInf(x, 1):
		return "inf", true
	case math.IsInf(x, -1):
		return "-inf", true
	}
	return "", false
}

// Wrap coupe s en lignes d'au plus width caractères (runes, pas octets) sans casser les mots trop longs.
func Wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 || width <= 0 {
		return strings.Join(words, " ")
	}
	var lines []string
	cur, n := words[0], utf8.RuneCountInString(words[0])
	for _, w := range words[1:] {
		wn := utf8.RuneCountInString(w)
		if n+1+wn > width {
			lines = append(lines, cur)
			cur, n = w, wn
			continue
		}
		cur += " " + w
		n += 1 + wn
	}
	lines = append(lines, cur)
	return strings.Join(lines, "\n")
}
