package db

import (
	"testing"

	"github.com/autohive/automarket-backend/internal/config"
)

func TestBuildDSN(t *testing.T) {
	base := config.Config{
		DBUser:     "app",
		DBPassword: "secret",
		DBName:     "notifications",
		DBPort:     "3306",
	}

	tests := []struct {
		name     string
		host     string
		instance string
		want     string
	}{
		{"plain host", "db.internal", "", "app:secret@tcp(db.internal:3306)/notifications?charset=utf8mb4&parseTime=True&loc=Local"},
		{"explicit tcp", "tcp(10.0.0.5:3307)", "", "app:secret@tcp(10.0.0.5:3307)/notifications?charset=utf8mb4&parseTime=True&loc=Local"},
		{"explicit unix", "unix(/var/run/mysqld.sock)", "", "app:secret@unix(/var/run/mysqld.sock)/notifications?charset=utf8mb4&parseTime=True&loc=Local"},
		{"bare socket path", "/var/run/mysqld.sock", "", "app:secret@unix(/var/run/mysqld.sock)/notifications?charset=utf8mb4&parseTime=True&loc=Local"},
		{"cloud sql instance wins", "db.internal", "proj:region:inst", "app:secret@unix(/cloudsql/proj:region:inst)/notifications?charset=utf8mb4&parseTime=True&loc=Local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.DBHost = tt.host
			cfg.InstanceConnectionName = tt.instance
			if got := BuildDSN(&cfg); got != tt.want {
				t.Fatalf("BuildDSN()=%q want %q", got, tt.want)
			}
		})
	}
}
