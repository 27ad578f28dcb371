package source

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Delimitador is the field separator of the extract.
const Delimitador = ';'

// ErrEncodingDesconhecido is returned for an encoding name the reader cannot decode.
var ErrEncodingDesconhecido = errors.New("encoding desconhecido")

// Decodificador wraps r so it yields UTF-8. The default ("" or "utf-8") strips a leading
// BOM and drops invalid byte sequences; "latin1" and "windows-1252" are transcoded.
func Decodificador(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		descarta := runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError }))
		return transform.NewReader(r, transform.Chain(unicode.UTF8BOM.NewDecoder(), descarta)), nil
	case "latin1", "latin-1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrEncodingDesconhecido, encoding)
}

// Reader yields the data rows of an extract after skipping its header lines.
type Reader struct {
	buf     *bufio.Reader
	csv     *csv.Reader
	pular   int
	pulado  bool
	linhaDe int
}

// NewReader decodes r with the given encoding; the first pular physical lines are
// discarded before parsing starts.
func NewReader(r io.Reader, encoding string, pular int) (*Reader, error) {
	dec, err := Decodificador(r, encoding)
	if err != nil {
		return nil, err
	}
	if pular < 0 {
		pular = 0
	}
	return &Reader{buf: bufio.NewReader(dec), pular: pular}, nil
}

func (r *Reader) pularCabecalho() error {
	for i := 0; i < r.pular; i++ {
		_, err := r.buf.ReadString('\n')
		if errors.Is(err, io.EOF) {
			r.linhaDe = i + 1
			return nil
		}
		if err != nil {
			return fmt.Errorf("lendo cabeçalho: %w", err)
		}
	}
	r.linhaDe = r.pular

	r.csv = csv.NewReader(r.buf)
	r.csv.Comma = Delimitador
	r.csv.FieldsPerRecord = -1
	r.csv.LazyQuotes = true
	return nil
}

// Ler returns the next data row, or io.EOF at the end of input.
func (r *Reader) Ler() (Linha, error) {
	if !r.pulado {
		r.pulado = true
		if err := r.pularCabecalho(); err != nil {
			return Linha{}, err
		}
	}
	if r.csv == nil {
		return Linha{}, io.EOF
	}

	campos, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Linha{}, io.EOF
		}
		return Linha{}, fmt.Errorf("lendo linha: %w", err)
	}
	numero, _ := r.csv.FieldPos(0)
	return Linha{Numero: r.linhaDe + numero, Campos: campos}, nil
}
