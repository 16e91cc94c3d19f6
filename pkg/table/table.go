package table

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind est le type d'une colonne.
type Kind int

const (
	String Kind = iota
	Number
	Bool
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Bool:
		return "bool"
	default:
		return "string"
	}
}

// Spec décrit une colonne attendue (nom + type).
type Spec struct {
	Name string
	Kind Kind
}

// Column est une séquence typée et ordonnée de valeurs.
// Les valeurs nulles sont marquées dans valid.
type Column struct {
	name  string
	kind  Kind
	strs  []string
	nums  []float64
	valid []bool
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }
func (c *Column) Len() int     { return len(c.valid) }

// IsNull indique une cellule vide.
func (c *Column) IsNull(i int) bool { return !c.valid[i] }

// Float renvoie la valeur numérique (bool → 0/1). NaN pour une cellule nulle ou une colonne texte.
func (c *Column) Float(i int) float64 {
	if !c.valid[i] || c.kind == String {
		return math.NaN()
	}
	return c.nums[i]
}

// Label renvoie la représentation texte de la cellule ("" si nulle).
func (c *Column) Label(i int) string {
	if !c.valid[i] {
		return ""
	}
	switch c.kind {
	case Number:
		return strconv.FormatFloat(c.nums[i], 'f', -1, 64)
	case Bool:
		if c.nums[i] != 0 {
			return "True"
		}
		return "False"
	default:
		return c.strs[i]
	}
}

// Key renvoie la clé de groupement de la ligne i ; false si la cellule est nulle.
func (c *Column) Key(i int) (Key, bool) {
	if !c.valid[i] {
		return Key{}, false
	}
	k := Key{Label: c.Label(i), Kind: c.kind}
	if c.kind != String {
		k.Num = c.nums[i]
	}
	return k, true
}

// Table est un instantané en lecture seule : colonnes nommées, toutes de même longueur.
type Table struct {
	cols  map[string]*Column
	order []string
	rows  int
}

func (t *Table) Len() int { return t.rows }

// Columns renvoie les noms de colonnes dans l'ordre du schéma.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column renvoie la colonne demandée.
func (t *Table) Column(name string) (*Column, error) {
	c, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	return c, nil
}

// Sum additionne une colonne en ignorant les nulls.
func (t *Table) Sum(name string) (float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return 0, err
	}
	if c.kind == String {
		return 0, fmt.Errorf("column %q is not numeric", name)
	}
	total := 0.0
	for i := 0; i < c.Len(); i++ {
		if c.valid[i] {
			total += c.nums[i]
		}
	}
	return total, nil
}

// Where renvoie les indices des lignes dont la colonne vaut label.
func (t *Table) Where(name, label string) ([]int, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	var idx []int
	for i := 0; i < c.Len(); i++ {
		if c.valid[i] && c.Label(i) == label {
			idx = append(idx, i)
		}
	}
	return idx, nil
}

// Floats extrait les valeurs numériques non nulles des lignes idx.
func (t *Table) Floats(name string, idx []int) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.kind == String {
		return nil, fmt.Errorf("column %q is not numeric", name)
	}
	out := make([]float64, 0, len(idx))
	for _, i := range idx {
		if c.valid[i] {
			out = append(out, c.nums[i])
		}
	}
	return out, nil
}

// Distinct renvoie les valeurs distinctes non nulles, triées.
func (t *Table) Distinct(name string) ([]string, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	seen := map[string]Key{}
	for i := 0; i < c.Len(); i++ {
		if k, ok := c.Key(i); ok {
			seen[k.Label] = k
		}
	}
	keys := make([]Key, 0, len(seen))
	for _, k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Label
	}
	return out, nil
}

// Builder accumule des lignes texte et les convertit selon le schéma.
type Builder struct {
	specs []Spec
	cols  []*Column
	rows  int
}

func NewBuilder(specs []Spec) *Builder {
	b := &Builder{specs: specs, cols: make([]*Column, len(specs))}
	for i, s := range specs {
		b.cols[i] = &Column{name: s.Name, kind: s.Kind}
	}
	return b
}

// Append ajoute une ligne ; values suit l'ordre du schéma, "" = null.
func (b *Builder) Append(values []string) error {
	if len(values) != len(b.specs) {
		return fmt.Errorf("row %d: got %d values, want %d", b.rows+1, len(values), len(b.specs))
	}
	parsed := make([]float64, len(values))
	valid := make([]bool, len(values))
	for i, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		switch b.specs[i].Kind {
		case Number:
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", b.rows+1, b.specs[i].Name, err)
			}
			parsed[i] = f
		case Bool:
			v, err := parseBool(raw)
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", b.rows+1, b.specs[i].Name, err)
			}
			parsed[i] = v
		}
		valid[i] = true
	}
	// la ligne est valide : on l'écrit seulement maintenant
	for i, c := range b.cols {
		c.valid = append(c.valid, valid[i])
		c.nums = append(c.nums, parsed[i])
		if c.kind == String {
			s := ""
			if valid[i] {
				s = strings.TrimSpace(values[i])
			}
			c.strs = append(c.strs, s)
		}
	}
	b.rows++
	return nil
}

// Build fige la table. Le builder ne doit plus être utilisé ensuite.
func (b *Builder) Build() *Table {
	t := &Table{cols: make(map[string]*Column, len(b.cols)), rows: b.rows}
	for _, c := range b.cols {
		t.cols[c.name] = c
		t.order = append(t.order, c.name)
	}
	return t
}

// Empty renvoie une table sans lignes avec le schéma donné.
func Empty(specs []Spec) *Table {
	return NewBuilder(specs).Build()
}

func parseBool(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "true", "t", "1", "1.0", "yes":
		return 1, nil
	case "false", "f", "0", "0.0", "no":
		return 0, nil
	}
	return 0, fmt.Errorf("invalid bool %q", s)
}
