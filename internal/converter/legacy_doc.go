package converter

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Word 97-2003 File Information Block offsets
const (
	fibIdent      = 0x0000
	fibFlags      = 0x000A
	fibCcpText    = 0x004C
	fibFcClx      = 0x01A2
	fibLcbClx     = 0x01A6
	fibMinLength  = 0x01AA
	wordIdent     = 0xA5EC
	flagEncrypted = 0x0100
	flagTable1    = 0x0200
	pcdCompressed = 0x40000000
)

var (
	errNotWordBinary  = errors.New("not a Word 97-2003 document")
	errEncryptedWord  = errors.New("encrypted documents are not supported")
	errCorruptPieces  = errors.New("corrupt piece table")
	errMissingStreams = errors.New("WordDocument or table stream missing")
)

// LegacyDocConverter recovers the main text of a binary .doc file and writes it as docx.
// Formatting is not preserved.
type LegacyDocConverter struct {
	fs afero.Fs
}

// NewLegacyDocConverter creates a doc to docx converter
func NewLegacyDocConverter(fsys afero.Fs) *LegacyDocConverter {
	return &LegacyDocConverter{fs: fsys}
}

func (c *LegacyDocConverter) Name() string { return "mscfb text recovery" }

func (c *LegacyDocConverter) Available() error { return nil }

func (c *LegacyDocConverter) Convert(_ context.Context, source, dest string) error {
	f, _, err := openSource(c.fs, source)
	if err != nil {
		return err
	}
	defer f.Close()

	content, err := extractWordText(f)
	if err != nil {
		return &ConversionError{OriginalError: err, Path: source, Hint: "failed to read legacy Word document"}
	}
	return writeLines(c.fs, dest, content)
}

// extractWordText reads the WordDocument and table streams from the OLE container
func extractWordText(r io.ReaderAt) (string, error) {
	doc, err := mscfb.New(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errNotWordBinary, err)
	}

	streams := make(map[string][]byte)
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "WordDocument", "0Table", "1Table":
			buf := make([]byte, entry.Size)
			if _, err := io.ReadFull(entry, buf); err != nil {
				return "", fmt.Errorf("read %s stream: %w", entry.Name, err)
			}
			streams[entry.Name] = buf
		}
	}

	wordDocument := streams["WordDocument"]
	if len(wordDocument) < fibMinLength {
		return "", errMissingStreams
	}
	table := streams["0Table"]
	if binary.LittleEndian.Uint16(wordDocument[fibFlags:])&flagTable1 != 0 {
		table = streams["1Table"]
	}
	if table == nil {
		return "", errMissingStreams
	}
	return wordText(wordDocument, table)
}

// wordText walks the piece table in the Clx structure and decodes the main document text
func wordText(wordDocument, table []byte) (string, error) {
	if len(wordDocument) < fibMinLength || binary.LittleEndian.Uint16(wordDocument[fibIdent:]) != wordIdent {
		return "", errNotWordBinary
	}
	if binary.LittleEndian.Uint16(wordDocument[fibFlags:])&flagEncrypted != 0 {
		return "", errEncryptedWord
	}

	ccpText := int(binary.LittleEndian.Uint32(wordDocument[fibCcpText:]))
	fcClx := int(binary.LittleEndian.Uint32(wordDocument[fibFcClx:]))
	lcbClx := int(binary.LittleEndian.Uint32(wordDocument[fibLcbClx:]))
	if fcClx < 0 || lcbClx <= 0 || fcClx+lcbClx > len(table) {
		return "", errCorruptPieces
	}
	clx := table[fcClx : fcClx+lcbClx]

	// skip Prc entries
	pos := 0
	for pos < len(clx) && clx[pos] == 0x01 {
		if pos+3 > len(clx) {
			return "", errCorruptPieces
		}
		cb := int(binary.LittleEndian.Uint16(clx[pos+1:]))
		if pos+3+cb > len(clx) {
			return "", errCorruptPieces
		}
		pos += 3 + cb
	}
	if pos+5 > len(clx) || clx[pos] != 0x02 {
		return "", errCorruptPieces
	}
	lcb := int(binary.LittleEndian.Uint32(clx[pos+1:]))
	plc := clx[pos+5:]
	if lcb < 4 || lcb > len(plc) || (lcb-4)%12 != 0 {
		return "", errCorruptPieces
	}
	plc = plc[:lcb]
	pieces := (lcb - 4) / 12

	cp1252 := charmap.Windows1252.NewDecoder()
	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

	var sb strings.Builder
	remaining := ccpText
	for i := 0; i < pieces && remaining > 0; i++ {
		cpStart := int(binary.LittleEndian.Uint32(plc[i*4:]))
		cpEnd := int(binary.LittleEndian.Uint32(plc[(i+1)*4:]))
		pcd := plc[4*(pieces+1)+i*8:]
		fc := binary.LittleEndian.Uint32(pcd[2:])

		count := min(cpEnd-cpStart, remaining)
		if count <= 0 {
			continue
		}
		remaining -= count

		var raw []byte
		var err error
		if fc&pcdCompressed != 0 {
			offset := int(fc&^pcdCompressed) / 2
			if offset+count > len(wordDocument) {
				return "", errCorruptPieces
			}
			raw, err = cp1252.Bytes(wordDocument[offset : offset+count])
		} else {
			offset := int(fc)
			if offset+2*count > len(wordDocument) {
				return "", errCorruptPieces
			}
			raw, err = utf16.Bytes(wordDocument[offset : offset+2*count])
		}
		if err != nil {
			return "", fmt.Errorf("decode piece %d: %w", i, err)
		}
		sb.Write(raw)
	}
	return cleanWordText(sb.String()), nil
}

// cleanWordText maps Word control characters to plain text and drops field codes
func cleanWordText(s string) string {
	var sb strings.Builder
	var fields []bool // true while inside a field's code part
	hidden := func() bool {
		for _, inCode := range fields {
			if inCode {
				return true
			}
		}
		return false
	}

	for _, r := range s {
		switch r {
		case 0x13:
			fields = append(fields, true)
			continue
		case 0x14:
			if len(fields) > 0 {
				fields[len(fields)-1] = false
			}
			continue
		case 0x15:
			if len(fields) > 0 {
				fields = fields[:len(fields)-1]
			}
			continue
		}
		if hidden() {
			continue
		}
		switch {
		case r == '\r' || r == 0x0B || r == 0x0C:
			sb.WriteByte('\n')
		case r == 0x07:
			sb.WriteByte('\t')
		case r == 0x1E:
			sb.WriteByte('-')
		case r == '\t':
			sb.WriteByte('\t')
		case r < 0x20:
			// other control characters carry no text
		default:
			sb.WriteRune(r)
		}
	}
	return strings.TrimRight(sb.String(), "\n\t ")
}
