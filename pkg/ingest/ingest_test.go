package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func TestParseCSV(t *testing.T) {
	t.Run("Google export with BOM", func(t *testing.T) {
		src := "\xEF\xBB\xBFFirst Name,Last Name,Phone 1 - Value\nAna,Souza,31999998888\n,,\nBia,,3133224455\n"
		table, err := ParseCSV(strings.NewReader(src), Options{})
		require.NoError(t, err)

		assert.Equal(t, []string{"First Name", "Last Name", "Phone 1 - Value"}, table.Headers)
		require.Len(t, table.Records, 2)
		assert.Equal(t, FormatCSV, table.Format)

		contacts := table.Contacts()
		require.Len(t, contacts, 2)
		assert.Equal(t, "Ana Souza", contacts[0].Name)
		assert.Equal(t, "3133224455", contacts[1].Phone)
	})

	t.Run("semicolon sniffed", func(t *testing.T) {
		src := "Nome;Telefone;Empresa\nMaria;31 99999-8888;Acme, Ltda\n"
		table, err := ParseCSV(strings.NewReader(src), Options{})
		require.NoError(t, err)

		contacts := table.Contacts()
		require.Len(t, contacts, 1)
		assert.Equal(t, "Maria", contacts[0].FirstName)
		assert.Equal(t, "31 99999-8888", contacts[0].Phone1Value)
		assert.Equal(t, "Acme, Ltda", contacts[0].OrganizationName)
	})

	t.Run("explicit delimiter", func(t *testing.T) {
		src := "a|b\n1|2\n"
		table, err := ParseCSV(strings.NewReader(src), Options{Delimiter: '|'})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, table.Headers)
		assert.Equal(t, [][]string{{"1", "2"}}, table.Records)
	})

	t.Run("headers trimmed and short rows kept", func(t *testing.T) {
		src := " First Name , Notes \nAna\n"
		table, err := ParseCSV(strings.NewReader(src), Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{"First Name", "Notes"}, table.Headers)

		rows := table.Rows()
		require.Len(t, rows, 1)
		require.Len(t, rows[0], 1)
		assert.Equal(t, "First Name", rows[0][0].Header)
	})

	t.Run("windows-1252", func(t *testing.T) {
		enc, err := charmap.Windows1252.NewEncoder().String("Nome\nJoão\n")
		require.NoError(t, err)

		_, err = ParseCSV(strings.NewReader(enc), Options{})
		assert.ErrorIs(t, err, ErrInvalidEncoding)

		table, err := ParseCSV(strings.NewReader(enc), Options{Encoding: "windows-1252"})
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"João"}}, table.Records)
	})

	t.Run("unknown encoding", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("a\n1\n"), Options{Encoding: "klingon"})
		assert.ErrorIs(t, err, ErrUnsupportedEncoding)
	})

	t.Run("rune cut by the 4096-byte window", func(t *testing.T) {
		head := "Name,Notes\nAna,"
		for _, r := range []string{"é", "€", "😀"} {
			for k := 1; k < len(r); k++ {
				pad := strings.Repeat("a", 4096-len(head)-k)
				src := head + pad + r + "x\n"
				table, err := ParseCSV(strings.NewReader(src), Options{})
				require.NoError(t, err, "%q cut after %d bytes", r, k)
				require.Len(t, table.Records, 1)
				assert.Equal(t, pad+r+"x", table.Records[0][1])
			}
		}
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("Name\nJos\xe9\n"), Options{})
		assert.ErrorIs(t, err, ErrInvalidEncoding)

		src := "Name\n" + strings.Repeat("a", 4090) + "\x82"
		_, err = ParseCSV(strings.NewReader(src), Options{})
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(""), Options{})
		assert.ErrorIs(t, err, ErrEmptyFile)

		_, err = ParseCSV(strings.NewReader("\xEF\xBB\xBF"), Options{})
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("blank header", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(" , \nAna,1\n"), Options{})
		assert.ErrorIs(t, err, ErrMissingHeader)
	})

	t.Run("row cap", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("Nome\nA\nB\nC\n"), Options{MaxRows: 2})
		assert.ErrorIs(t, err, ErrTooManyRows)
	})

	t.Run("lazy quotes", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("Nome,Notes\nAna,diz \"oi\" sempre\n"), Options{})
		require.NoError(t, err)
		assert.Equal(t, `diz "oi" sempre`, table.Records[0][1])
	})
}

func TestParseXLSX(t *testing.T) {
	buildWorkbook := func(t *testing.T, rows ...[]interface{}) []byte {
		t.Helper()
		f := excelize.NewFile()
		defer f.Close()
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
		}
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)
		return buf.Bytes()
	}

	t.Run("first sheet", func(t *testing.T) {
		data := buildWorkbook(t,
			[]interface{}{"First Name", " E-mail 1 - Value ", "Telefone"},
			[]interface{}{"Ana", "ana@example.com", "31999998888"},
			[]interface{}{"", "", ""},
			[]interface{}{"Bia"},
		)
		table, err := ParseXLSX(bytes.NewReader(data), Options{})
		require.NoError(t, err)

		assert.Equal(t, FormatXLSX, table.Format)
		assert.Equal(t, []string{"First Name", "E-mail 1 - Value", "Telefone"}, table.Headers)
		require.Len(t, table.Records, 2)

		contacts := table.Contacts()
		require.Len(t, contacts, 2)
		assert.Equal(t, "ana@example.com", contacts[0].Email1Value)
		assert.Equal(t, "Mobile", contacts[0].Phone1Label)
		assert.Equal(t, "Bia", contacts[1].FirstName)
	})

	t.Run("row cap", func(t *testing.T) {
		data := buildWorkbook(t,
			[]interface{}{"Nome"},
			[]interface{}{"A"},
			[]interface{}{"B"},
		)
		_, err := ParseXLSX(bytes.NewReader(data), Options{MaxRows: 1})
		assert.ErrorIs(t, err, ErrTooManyRows)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := ParseXLSX(strings.NewReader("Nome\nAna\n"), Options{})
		assert.ErrorIs(t, err, ErrCorruptSpreadsheet)
	})
}

func TestParseText(t *testing.T) {
	src := "Ana Souza\t31999998888\r\n\n  \nBia;3133224455;extra\nCaio,\nDudu\n"
	table, err := ParseText(strings.NewReader(src), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{TextNameHeader, TextPhoneHeader}, table.Headers)
	assert.Equal(t, [][]string{
		{"Ana Souza", "31999998888"},
		{"Bia", "3133224455"},
		{"Caio", ""},
		{"Dudu", ""},
	}, table.Records)

	contacts := table.Contacts()
	require.Len(t, contacts, 4)
	assert.Equal(t, "Ana Souza", contacts[0].FirstName)
	assert.Equal(t, "31999998888", contacts[0].Phone1Value)
	assert.Equal(t, "Mobile", contacts[0].Phone1Label)
	assert.Equal(t, "", contacts[3].Phone)
}

func TestParseText_Empty(t *testing.T) {
	_, err := ParseText(strings.NewReader("\n \n\t\n"), Options{})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseFile(t *testing.T) {
	t.Run("dispatch", func(t *testing.T) {
		table, err := ParseFile("contatos.CSV", strings.NewReader("Nome\nAna\n"), Options{})
		require.NoError(t, err)
		assert.Equal(t, FormatCSV, table.Format)

		table, err = ParseFile("lista.txt", strings.NewReader("Ana,123\n"), Options{})
		require.NoError(t, err)
		assert.Equal(t, FormatText, table.Format)
	})

	t.Run("tsv with headers", func(t *testing.T) {
		src := "First Name\tPhone 1 - Value\tE-mail 1 - Value\nAna\t31999998888\tana@x.com\n"
		table, err := ParseFile("contatos.tsv", strings.NewReader(src), Options{})
		require.NoError(t, err)
		assert.Equal(t, FormatCSV, table.Format)
		assert.Equal(t, []string{"First Name", "Phone 1 - Value", "E-mail 1 - Value"}, table.Headers)

		contacts := table.Contacts()
		require.Len(t, contacts, 1)
		assert.Equal(t, "Ana", contacts[0].FirstName)
		assert.Equal(t, "31999998888", contacts[0].Phone1Value)
		assert.Equal(t, "ana@x.com", contacts[0].Email1Value)
	})

	t.Run("size cap", func(t *testing.T) {
		src := "Nome\n" + strings.Repeat("a", 64) + "\n"
		_, err := ParseFile("big.csv", strings.NewReader(src), Options{MaxSize: 32})
		assert.ErrorIs(t, err, ErrFileTooLarge)
		var size *SizeError
		require.ErrorAs(t, err, &size)
		assert.EqualValues(t, 32, size.Max)
		assert.Equal(t, "Arquivo muito grande. Máximo permitido: 32 B", UserMessage(err))
	})

	t.Run("rejected formats", func(t *testing.T) {
		_, err := ParseFile("old.xls", strings.NewReader("x"), Options{})
		assert.ErrorIs(t, err, ErrLegacyExcel)

		_, err = ParseFile("contacts.vcf", strings.NewReader("x"), Options{})
		assert.ErrorIs(t, err, ErrUnsupportedFormat)

		_, err = ParseFile("noext", strings.NewReader("x"), Options{})
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("empty upload", func(t *testing.T) {
		_, err := ParseFile("a.csv", strings.NewReader(""), Options{})
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Arquivo muito grande", UserMessage(ErrFileTooLarge))
	assert.Equal(t, "Arquivo muito grande. Máximo permitido: 10 MiB", UserMessage(&SizeError{Max: DefaultMaxSize}))
	assert.Equal(t, "Arquivo muito grande. Máximo permitido: 2.0 MiB", UserMessage(fmt.Errorf("upload: %w", &SizeError{Max: 2 << 20})))
	_, err := FormatFromName("a.pdf")
	assert.Equal(t, "Formato de arquivo não suportado", UserMessage(err))
	assert.Equal(t, "Erro ao ler CSV", UserMessage(csvError(errors.New("bare quote"))))
	assert.Equal(t, "Erro ao ler arquivo", UserMessage(errors.New("disk on fire")))
}
