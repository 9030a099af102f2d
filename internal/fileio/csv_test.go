package fileio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTableCSV(t *testing.T) {
	body := "Asset ID,IP Address,Public\nA-001,10.0.0.5,Yes\nA-002,10.0.0.6,No\n"

	headers, rows, err := ReadTable(strings.NewReader(body), "inventory.csv", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"Asset ID", "IP Address", "Public"}, headers)
	require.Len(t, rows, 2)
	assert.Equal(t, "A-001", rows[0]["Asset ID"])
	assert.Equal(t, "10.0.0.6", rows[1]["IP Address"])
	assert.Equal(t, "No", rows[1]["Public"])
}

func TestReadTableCSVHeaderRow(t *testing.T) {
	body := "FedRAMP Integrated Inventory,,\nAsset ID,IP Address,Public\nA-001,10.0.0.5,Yes\n"

	headers, rows, err := ReadTable(strings.NewReader(body), "inventory.csv", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"Asset ID", "IP Address", "Public"}, headers)
	require.Len(t, rows, 1)
	assert.Equal(t, "A-001", rows[0]["Asset ID"])
}

func TestReadTableCSVBlankHeaderCells(t *testing.T) {
	body := "Asset ID,,Public\nA-001,x,Yes\n"

	headers, rows, err := ReadTable(strings.NewReader(body), "inventory.csv", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"Asset ID", "Column 2", "Public"}, headers)
	require.Len(t, rows, 1)
	assert.Equal(t, "x", rows[0]["Column 2"])
}

func TestReadTableCSVSkipsEmptyRows(t *testing.T) {
	body := "Asset ID,IP Address\nA-001,10.0.0.5\n,\n ,\nA-002,10.0.0.6\n"

	_, rows, err := ReadTable(strings.NewReader(body), "inventory.csv", 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A-002", rows[1]["Asset ID"])
}

func TestReadTableCSVShortRows(t *testing.T) {
	body := "Asset ID,IP Address,Public\nA-001,10.0.0.5\n"

	headers, rows, err := ReadTable(strings.NewReader(body), "inventory.csv", 1)
	require.NoError(t, err)
	require.Len(t, headers, 3)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0]["Public"])
}

func TestReadTableCSVEmpty(t *testing.T) {
	headers, rows, err := ReadTable(strings.NewReader(""), "empty.csv", 1)
	require.NoError(t, err)
	assert.Nil(t, headers)
	assert.Nil(t, rows)
}

func TestReadTableUnsupportedExtension(t *testing.T) {
	_, _, err := ReadTable(strings.NewReader("x"), "notes.txt", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestReadTableCSVHeaderRowOutOfRange(t *testing.T) {
	body := "Asset ID,IP Address\nA-001,10.0.0.5\n"

	headers, _, err := ReadTable(strings.NewReader(body), "inventory.csv", 99)
	require.NoError(t, err)
	assert.Equal(t, []string{"Asset ID", "IP Address"}, headers)
}
