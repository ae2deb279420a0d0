package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/bipagem/internal/model"
)

func TestLoadModeUnmarshalText(t *testing.T) {
	tests := []struct {
		in   string
		want model.LoadMode
	}{
		{"", model.LoadModeAppend},
		{"append", model.LoadModeAppend},
		{"adicionar", model.LoadModeAppend},
		{"REPLACE", model.LoadModeReplace},
		{" substituir ", model.LoadModeReplace},
	}
	for _, tt := range tests {
		var m model.LoadMode
		require.NoError(t, m.UnmarshalText([]byte(tt.in)), tt.in)
		assert.Equal(t, tt.want, m, tt.in)
	}

	var m model.LoadMode
	assert.Error(t, m.UnmarshalText([]byte("merge")))
	assert.Error(t, model.LoadMode(7).Validate())
}

func TestExportSubsetScannedFilter(t *testing.T) {
	assert.Nil(t, model.ExportAll.ScannedFilter())
	assert.True(t, *model.ExportScanned.ScannedFilter())
	assert.False(t, *model.ExportUnscanned.ScannedFilter())

	var s model.ExportSubset
	require.NoError(t, s.UnmarshalText([]byte("Unscanned")))
	assert.Equal(t, model.ExportUnscanned, s)
	assert.Error(t, s.UnmarshalText([]byte("half")))
}
