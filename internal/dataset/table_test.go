package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTable(t *testing.T) {
	path := writeCSV(t,
		"app_id,What data is collected?,misc_hasAds\n"+
			"com.example.one,\"Names, emails, and device identifiers\",1\n"+
			"com.example.two,,0\n")

	table, err := LoadTable(path)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"app_id", "What data is collected?", "misc_hasAds"}, table.Columns())

	assert.Equal(t, "com.example.one", table.Get(0, "app_id"))
	assert.Equal(t, "Names, emails, and device identifiers", table.Get(0, "What data is collected?"))
	assert.Equal(t, "1", table.Get(0, "misc_hasAds"))
	assert.Equal(t, "0", table.Get(1, "misc_hasAds"))

	assert.Equal(t, "", table.Get(0, "No Such Column"))
	assert.Equal(t, "", table.Get(5, "app_id"))
	assert.Equal(t, "", table.Get(-1, "app_id"))
}

func TestLoadTableMissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
