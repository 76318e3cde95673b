package db

import "testing"

func TestFormatPlaceholders(t *testing.T) {
	tests := []struct {
		nom     string
		style   string
		query   string
		attendu string
	}{
		{"sqlite inchangé", "sqlite", "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"mysql inchangé", "mysql", "INSERT INTO t(a) VALUES (?)", "INSERT INTO t(a) VALUES (?)"},
		{"postgres numéroté", "postgres", "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"postgres casse", "Postgres", "UPDATE t SET a = ? WHERE id = ?", "UPDATE t SET a = $1 WHERE id = $2"},
		{"postgres sans placeholder", "postgres", "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.nom, func(t *testing.T) {
			if got := formatPlaceholders(tt.style, tt.query); got != tt.attendu {
				t.Fatalf("formatPlaceholders = %q, attendu %q", got, tt.attendu)
			}
		})
	}
}
