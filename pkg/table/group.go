package table

import (
	"fmt"
	"sort"
	"strings"
)

// Key est une valeur de groupement.
type Key struct {
	Label string
	Num   float64
	Kind  Kind
}

// Less ordonne les clés : numériquement pour nombres/bools, par octets pour le texte.
func (k Key) Less(o Key) bool {
	if k.Kind != String && o.Kind != String {
		return k.Num < o.Num
	}
	return k.Label < o.Label
}

// AggFunc est une fonction d'agrégation.
type AggFunc int

const (
	Sum AggFunc = iota
	Count
)

// Agg associe une colonne à une agrégation.
type Agg struct {
	Column string
	Func   AggFunc
}

// Group est le résultat d'un groupement : un tuple de clés et une valeur par Agg.
type Group struct {
	Keys   []Key
	Values []float64
}

// GroupBy groupe les lignes par les colonnes by (lignes à clé nulle ignorées)
// et calcule aggs pour chaque groupe. Les groupes sont triés par clés.
func (t *Table) GroupBy(by []string, aggs []Agg) ([]Group, error) {
	keyCols := make([]*Column, len(by))
	for i, name := range by {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		keyCols[i] = c
	}
	aggCols := make([]*Column, len(aggs))
	for i, a := range aggs {
		c, err := t.Column(a.Column)
		if err != nil {
			return nil, err
		}
		if a.Func == Sum && c.kind == String {
			return nil, fmt.Errorf("cannot sum column %q", a.Column)
		}
		aggCols[i] = c
	}

	index := map[string]int{}
	var groups []Group
rows:
	for r := 0; r < t.rows; r++ {
		keys := make([]Key, len(keyCols))
		for i, c := range keyCols {
			k, ok := c.Key(r)
			if !ok {
				continue rows
			}
			keys[i] = k
		}
		id := joinKeys(keys)
		g, ok := index[id]
		if !ok {
			g = len(groups)
			index[id] = g
			groups = append(groups, Group{Keys: keys, Values: make([]float64, len(aggs))})
		}
		for i, c := range aggCols {
			if !c.valid[r] {
				continue
			}
			switch aggs[i].Func {
			case Sum:
				groups[g].Values[i] += c.nums[r]
			case Count:
				groups[g].Values[i]++
			}
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Keys, groups[j].Keys
		for n := range a {
			if a[n].Less(b[n]) {
				return true
			}
			if b[n].Less(a[n]) {
				return false
			}
		}
		return false
	})
	return groups, nil
}

func joinKeys(keys []Key) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.Label
	}
	return strings.Join(parts, "\x00")
}

// CrossTab est un tableau de contingence : Counts[i][j] = nb de lignes (Rows[i], Cols[j]).
type CrossTab struct {
	Rows   []Key
	Cols   []Key
	Counts *Frame
}

// CrossTab compte les co-occurrences de rowCol × colCol.
func (t *Table) CrossTab(rowCol, colCol string) (*CrossTab, error) {
	rc, err := t.Column(rowCol)
	if err != nil {
		return nil, err
	}
	cc, err := t.Column(colCol)
	if err != nil {
		return nil, err
	}

	counts := map[[2]string]float64{}
	rowSeen := map[string]Key{}
	colSeen := map[string]Key{}
	for r := 0; r < t.rows; r++ {
		rk, ok1 := rc.Key(r)
		ck, ok2 := cc.Key(r)
		if !ok1 || !ok2 {
			continue
		}
		rowSeen[rk.Label] = rk
		colSeen[ck.Label] = ck
		counts[[2]string{rk.Label, ck.Label}]++
	}

	ct := &CrossTab{Rows: sortedKeys(rowSeen), Cols: sortedKeys(colSeen)}
	ct.Counts = NewFrame(rowCol, labels(ct.Rows), labels(ct.Cols))
	for i, rk := range ct.Rows {
		for j, ck := range ct.Cols {
			ct.Counts.Values[i][j] = counts[[2]string{rk.Label, ck.Label}]
		}
	}
	return ct, nil
}

func sortedKeys(m map[string]Key) []Key {
	out := make([]Key, 0, len(m))
	for _, k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func labels(keys []Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Label
	}
	return out
}
