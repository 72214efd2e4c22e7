package csvparser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSemicolonWithBOM(t *testing.T) {
	in := "\ufeff;;\nData Inclusao;Numero da Solicitacao;Cliente;\n15/07/2025;\"0123\";Acme;;\n"

	rows, err := Read(strings.NewReader(in), Settings{Delimiter: ";"})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Empty(t, rows[0])
	assert.Equal(t, []string{"Data Inclusao", "Numero da Solicitacao", "Cliente"}, rows[1])
	assert.Equal(t, []string{"15/07/2025", "0123", "Acme"}, rows[2])
}

func TestReadKeepsBlankLines(t *testing.T) {
	in := "\nData Inclusao;Numero da Solicitacao\n01/09/2025;600\n\n02/09/2025;\"multi\nline\"\n03/09/2025;602\n"

	rows, err := Read(strings.NewReader(in), Settings{Delimiter: ";"})
	require.NoError(t, err)
	require.Len(t, rows, 6)

	assert.Empty(t, rows[0])
	assert.Equal(t, []string{"Data Inclusao", "Numero da Solicitacao"}, rows[1])
	assert.Equal(t, []string{"01/09/2025", "600"}, rows[2])
	assert.Empty(t, rows[3])
	assert.Equal(t, []string{"02/09/2025", "multi\nline"}, rows[4])
	assert.Equal(t, []string{"03/09/2025", "602"}, rows[5])
}

func TestReadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "period.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\tb\n1\t2\n"), 0644))

	rows, err := ReadTable(path, Settings{Delimiter: "tab"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)
}

func TestReadTableMissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv"), Settings{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDelimiter(t *testing.T) {
	tests := map[string]rune{
		"":          ',',
		",":         ',',
		";":         ';',
		"|":         '|',
		"tab":       '\t',
		`\t`:        '\t',
		"semicolon": ';',
		"PIPE":      '|',
	}
	for in, want := range tests {
		got, err := Delimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{";;", `"`, "\n"} {
		_, err := Delimiter(bad)
		assert.Error(t, err, bad)
	}
}
