package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config représente la configuration complète du tableau de bord.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Summary string        `yaml:"summary"`
	Mode    string        `yaml:"mode"`
	Verbose bool          `yaml:"verbose"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// DataConfig : source de la table clients. DSN prioritaire sur CSV si renseigné.
type DataConfig struct {
	CSV   string `yaml:"csv"`
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// LoggingConfig : fichier de log (utilisé par le mode tui).
type LoggingConfig struct {
	File string `yaml:"file"`
}

// OutputConfig : export JSON du mode batch / report. Vide = sortie texte.
type OutputConfig struct {
	JSON string `yaml:"json"`
}

// Modes d'exécution.
const (
	ModeMenu   = "menu"
	ModeTUI    = "tui"
	ModeBatch  = "batch"
	ModeReport = "report"
)

// Default renvoie la configuration par défaut.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			CSV:   "customer_stats.csv",
			Table: "customer_stats",
		},
		Summary: "Executive_summary.txt",
		Mode:    ModeMenu,
	}
}

// Load lit un fichier YAML par-dessus les valeurs par défaut.
func Load(filename string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate vérifie le mode.
func (c *Config) Validate() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	switch c.Mode {
	case ModeMenu, ModeTUI, ModeBatch, ModeReport:
		return nil
	}
	return fmt.Errorf("invalid mode %q (menu, tui, batch, report)", c.Mode)
}

// Print affiche la configuration.
func (c *Config) Print() {
	if c.Data.DSN != "" {
		fmt.Printf("Data: %s (table %s)\n", redact(c.Data.DSN), c.Data.Table)
	} else {
		fmt.Printf("Data: %s\n", c.Data.CSV)
	}
	fmt.Printf("Summary: %s\n", c.Summary)
	fmt.Printf("Mode: %s\n", c.Mode)
}

// redact masque le mot de passe d'un DSN url.
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if user, _, ok := strings.Cut(creds, ":"); ok {
		return dsn[:scheme+3] + user + ":***" + dsn[at:]
	}
	return dsn
}
