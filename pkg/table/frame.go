package table

import "math"

// Frame est une grille de valeurs étiquetée (index × colonnes), produite par les calculs.
// Les cellules absentes valent NaN.
type Frame struct {
	IndexName string
	Index     []string
	Columns   []string
	Values    [][]float64
}

// NewFrame crée une grille remplie de NaN.
func NewFrame(indexName string, index, columns []string) *Frame {
	f := &Frame{
		IndexName: indexName,
		Index:     append([]string(nil), index...),
		Columns:   append([]string(nil), columns...),
		Values:    make([][]float64, len(index)),
	}
	for i := range f.Values {
		row := make([]float64, len(columns))
		for j := range row {
			row[j] = math.NaN()
		}
		f.Values[i] = row
	}
	return f
}

func (f *Frame) Rows() int { return len(f.Index) }

// RowIndex renvoie la position d'une étiquette de ligne.
func (f *Frame) RowIndex(label string) (int, bool) {
	for i, l := range f.Index {
		if l == label {
			return i, true
		}
	}
	return -1, false
}

// ColumnIndex renvoie la position d'une colonne.
func (f *Frame) ColumnIndex(name string) (int, bool) {
	for i, c := range f.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Get renvoie la cellule (ligne, colonne) par étiquettes.
func (f *Frame) Get(row, col string) (float64, bool) {
	i, ok := f.RowIndex(row)
	if !ok {
		return math.NaN(), false
	}
	j, ok := f.ColumnIndex(col)
	if !ok {
		return math.NaN(), false
	}
	return f.Values[i][j], true
}

// Column copie une colonne entière.
func (f *Frame) Column(name string) ([]float64, bool) {
	j, ok := f.ColumnIndex(name)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(f.Values))
	for i := range f.Values {
		out[i] = f.Values[i][j]
	}
	return out, true
}

// Equal compare deux grilles, NaN == NaN.
func (f *Frame) Equal(o *Frame) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.IndexName != o.IndexName || !sameStrings(f.Index, o.Index) || !sameStrings(f.Columns, o.Columns) {
		return false
	}
	for i := range f.Values {
		for j := range f.Values[i] {
			a, b := f.Values[i][j], o.Values[i][j]
			if math.IsNaN(a) && math.IsNaN(b) {
				continue
			}
			if a != b {
				return false
			}
		}
	}
	return true
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
