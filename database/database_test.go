package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traitview/traitview/config"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{driver: "", name: "postgres"},
		{driver: "postgres", name: "postgres"},
		{driver: "sqlite", name: "sqlite"},
		{driver: "mysql", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := Dialector(config.Database{Driver: tt.driver, Path: ":memory:", Host: "localhost"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}
}

func TestNewDatabaseOpensSQLite(t *testing.T) {
	cfg := &config.Config{Database: config.Database{Driver: "sqlite", Path: "file::memory:"}}

	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Exec("SELECT 1").Error)
}
