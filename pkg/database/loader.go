package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/table"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open DSN mariadb://, mysql:// ou sqlite:// → driver + DSN natif.
// Un DSN sans préfixe est passé tel quel au driver MySQL.
func Open(dsn string) (*sql.DB, string, error) {
	if path, ok := strings.CutPrefix(dsn, "sqlite://"); ok {
		if path == "" {
			return nil, "", fmt.Errorf("dsn sqlite sans chemin")
		}
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, "", err
		}
		// :memory: n'existe que pour une connexion
		db.SetMaxOpenConns(1)
		return db, path, nil
	}

	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, mysqlDSN, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("dsn incomplet (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	if dsn == "" {
		return "", fmt.Errorf("dsn vide")
	}
	return dsn, nil
}

// LoadSQL lit la table clients depuis une base SQL, une ligne par client.
// Les colonnes sont lues en texte puis typées par le schéma, comme pour le CSV.
func LoadSQL(ctx context.Context, db *sql.DB, tableName string) (*table.Table, error) {
	if !tableNameRe.MatchString(tableName) {
		return nil, fmt.Errorf("table invalide")
	}

	cols := make([]string, len(models.CustomerSchema))
	for i, s := range models.CustomerSchema {
		cols[i] = s.Name
	}
	q := fmt.Sprintf(`SELECT %s FROM %s`, strings.Join(cols, ", "), tableName)

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tableName, err)
	}
	defer rows.Close()

	b := table.NewBuilder(models.CustomerSchema)
	raw := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	values := make([]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, v := range raw {
			values[i] = ""
			if v.Valid {
				values[i] = v.String
			}
		}
		if err := b.Append(values); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	t := b.Build()
	log.Printf("[DEBUG] %s: %d lignes chargées", tableName, t.Len())
	return t, nil
}
