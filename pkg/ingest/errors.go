package ingest

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Ingestion errors. Wrapped errors keep these as their root so callers can
// match with errors.Is.
var (
	ErrEmptyFile           = errors.New("ingest: empty file")
	ErrFileTooLarge        = errors.New("ingest: file exceeds maximum allowed size")
	ErrUnsupportedFormat   = errors.New("ingest: unsupported file format")
	ErrLegacyExcel         = errors.New("ingest: legacy .xls workbooks are not supported")
	ErrInvalidEncoding     = errors.New("ingest: invalid text encoding")
	ErrUnsupportedEncoding = errors.New("ingest: unsupported encoding")
	ErrMissingHeader       = errors.New("ingest: missing header row")
	ErrTooManyRows         = errors.New("ingest: too many rows")
	ErrMalformedCSV        = errors.New("ingest: malformed CSV")
	ErrCorruptSpreadsheet  = errors.New("ingest: unreadable spreadsheet")
)

var userMessages = []struct {
	err error
	msg string
}{
	{ErrEmptyFile, "Arquivo vazio"},
	{ErrFileTooLarge, "Arquivo muito grande"},
	{ErrUnsupportedFormat, "Formato de arquivo não suportado"},
	{ErrLegacyExcel, "Arquivos .xls não são suportados. Salve a planilha como .xlsx ou .csv"},
	{ErrInvalidEncoding, "Codificação do arquivo inválida. Salve o CSV em UTF-8"},
	{ErrUnsupportedEncoding, "Codificação de arquivo não suportada"},
	{ErrMissingHeader, "Cabeçalho não encontrado na primeira linha"},
	{ErrTooManyRows, "Arquivo com linhas demais"},
	{ErrMalformedCSV, "Erro ao ler CSV"},
	{ErrCorruptSpreadsheet, "Erro ao processar arquivo Excel"},
}

// SizeError is an upload over the configured cap. It matches
// ErrFileTooLarge.
type SizeError struct {
	Max int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%v (max %d bytes)", ErrFileTooLarge, e.Max)
}

func (e *SizeError) Unwrap() error { return ErrFileTooLarge }

// IsInputError reports whether err was caused by the uploaded content
// rather than by the server.
func IsInputError(err error) bool {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return true
		}
	}
	return false
}

// UserMessage returns a short Portuguese message suitable for end users.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var size *SizeError
	if errors.As(err, &size) && size.Max > 0 {
		return "Arquivo muito grande. Máximo permitido: " + humanize.IBytes(uint64(size.Max))
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Erro ao ler arquivo"
}
