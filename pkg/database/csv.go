package database

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/table"
)

// ErrMissingColumn signale une colonne du schéma absente de l'en-tête.
var ErrMissingColumn = errors.New("missing column")

// LoadCSV lit la table clients depuis un fichier délimité.
func LoadCSV(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadCSV parse un CSV avec en-tête. Les colonnes sont repérées par nom,
// les colonnes inconnues sont ignorées.
func ReadCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	pos := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		pos[h] = i
	}

	idx := make([]int, len(models.CustomerSchema))
	for i, s := range models.CustomerSchema {
		p, ok := pos[s.Name]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, s.Name)
		}
		idx[i] = p
	}

	b := table.NewBuilder(models.CustomerSchema)
	values := make([]string, len(idx))
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i, p := range idx {
			values[i] = rec[p]
		}
		if err := b.Append(values); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// LoadSummary lit le résumé exécutif : un paragraphe par ligne non vide.
func LoadSummary(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}
