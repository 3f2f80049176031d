package smpp

import (
	"sync"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// ErrorMode controls how a Codec reacts to an unmappable codepoint (Encode)
// or byte (Decode).
type ErrorMode int

const (
	// ErrorStrict fails the call with a CodecError.
	ErrorStrict ErrorMode = iota
	// ErrorIgnore silently drops the unmappable unit.
	ErrorIgnore
	// ErrorReplace substitutes '?' when encoding and when decoding GSM,
	// and U+FFFD when decoding other alphabets.
	ErrorReplace
)

// Codec converts between application text and the bytes SMPP transmits in
// a PDU's string fields, per the alphabet named by a submit_sm/deliver_sm
// body's data_coding byte.
type Codec interface {
	Encode(s string, mode ErrorMode) ([]byte, error)
	Decode(b []byte, mode ErrorMode) (string, error)
}

// DataCoding values from SMPP v3.4 section 5.2.19 for the alphabets this
// core supports.
const (
	DataCodingGSM7      byte = 0x00
	DataCodingASCII     byte = 0x01
	DataCodingLatin1    byte = 0x03
	DataCodingJIS       byte = 0x05
	DataCodingISO8859_5 byte = 0x06
	DataCodingISO8859_8 byte = 0x07
	DataCodingUCS2      byte = 0x08
)

// registry maps both alphabet name and data_coding byte to a Codec, so a
// custom codec can be registered under a new name and/or data_coding value
// (spec.md section 4.1's "registration hook").
type registry struct {
	mu       sync.RWMutex
	byName   map[string]Codec
	byCoding map[byte]string
}

var defaultRegistry = newRegistry()

func newRegistry() *registry {
	r := &registry{
		byName:   make(map[string]Codec),
		byCoding: make(map[byte]string),
	}
	r.register("gsm0338", DataCodingGSM7, gsm7Codec{})
	r.register("ascii", DataCodingASCII, asciiCodec{})
	r.register("latin_1", DataCodingLatin1, charmapCodec{cm: charmap.ISO8859_1, name: "latin_1"})
	r.register("ucs2", DataCodingUCS2, ucs2Codec{})
	r.register("shift_jis", DataCodingJIS, xtextCodec{enc: japanese.ShiftJIS, name: "shift_jis"})
	r.register("iso8859_5", DataCodingISO8859_5, charmapCodec{cm: charmap.ISO8859_5, name: "iso8859_5"})
	r.register("iso8859_8", DataCodingISO8859_8, charmapCodec{cm: charmap.ISO8859_8, name: "iso8859_8"})
	return r
}

func (r *registry) register(name string, dataCoding byte, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = c
	r.byCoding[dataCoding] = name
}

func (r *registry) byAlphabetName(name string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

func (r *registry) byDataCoding(dataCoding byte) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byCoding[dataCoding]
	if !ok {
		return nil, false
	}
	c, ok := r.byName[name]
	return c, ok
}

func (r *registry) nameToDataCoding(name string) (byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for dc, n := range r.byCoding {
		if n == name {
			return dc, true
		}
	}
	return 0, false
}

// RegisterCodec lets an application override or extend an alphabet by
// name, optionally binding it to a data_coding byte.
func RegisterCodec(name string, dataCoding byte, c Codec) {
	defaultRegistry.register(name, dataCoding, c)
}

// CodecForName resolves a Codec by alphabet name (e.g. "gsm0338", "ucs2").
func CodecForName(name string) (Codec, bool) {
	return defaultRegistry.byAlphabetName(name)
}

// CodecForDataCoding resolves a Codec by the wire data_coding byte.
func CodecForDataCoding(dataCoding byte) (Codec, bool) {
	return defaultRegistry.byDataCoding(dataCoding)
}

// DataCodingForName maps an alphabet name to its SMPP data_coding byte.
func DataCodingForName(name string) (byte, bool) {
	return defaultRegistry.nameToDataCoding(name)
}

// ucs2Codec treats UCS-2 as UTF-16BE, per spec.md section 4.1.
type ucs2Codec struct{}

func (ucs2Codec) Encode(s string, mode ErrorMode) ([]byte, error) {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		out = append(out, byte(u>>8), byte(u))
	}
	return out, nil
}

func (ucs2Codec) Decode(b []byte, mode ErrorMode) (string, error) {
	oddTail := false
	if len(b)%2 != 0 {
		if mode == ErrorStrict {
			return "", &CodecError{Alphabet: "ucs2", Reason: "odd byte length"}
		}
		b = b[:len(b)-1]
		oddTail = true
	}
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	if oddTail && mode == ErrorReplace {
		units = append(units, 0xFFFD)
	}
	return string(utf16.Decode(units)), nil
}

// asciiCodec maps code points 0-127 directly; anything outside that range
// is an encode/decode error subject to mode.
type asciiCodec struct{}

func (asciiCodec) Encode(s string, mode ErrorMode) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 127 {
			switch mode {
			case ErrorStrict:
				return nil, &CodecError{Alphabet: "ascii", Reason: "non-ASCII rune"}
			case ErrorIgnore:
				continue
			case ErrorReplace:
				out = append(out, '?')
				continue
			}
		}
		out = append(out, byte(r))
	}
	return out, nil
}

func (asciiCodec) Decode(b []byte, mode ErrorMode) (string, error) {
	out := make([]rune, 0, len(b))
	for _, c := range b {
		if c > 127 {
			switch mode {
			case ErrorStrict:
				return "", &CodecError{Alphabet: "ascii", Reason: "byte out of ASCII range"}
			case ErrorIgnore:
				continue
			case ErrorReplace:
				out = append(out, '�')
				continue
			}
		}
		out = append(out, rune(c))
	}
	return string(out), nil
}

// charmapCodec adapts golang.org/x/text/encoding/charmap single-byte
// encodings (Latin-1, ISO-8859-5, ISO-8859-8) to the Codec interface.
type charmapCodec struct {
	cm   *charmap.Charmap
	name string
}

func (c charmapCodec) Encode(s string, mode ErrorMode) ([]byte, error) {
	return xtextEncode(c.cm.NewEncoder(), s, mode, c.name)
}

func (c charmapCodec) Decode(b []byte, mode ErrorMode) (string, error) {
	return xtextDecode(c.cm.NewDecoder(), b, mode, c.name)
}

// xtextCodec adapts a multi-byte golang.org/x/text encoding.Encoding (e.g.
// Shift-JIS) to the Codec interface.
type xtextCodec struct {
	enc  encoding.Encoding
	name string
}

func (c xtextCodec) Encode(s string, mode ErrorMode) ([]byte, error) {
	return xtextEncode(c.enc.NewEncoder(), s, mode, c.name)
}

func (c xtextCodec) Decode(b []byte, mode ErrorMode) (string, error) {
	return xtextDecode(c.enc.NewDecoder(), b, mode, c.name)
}

func xtextEncode(enc *encoding.Encoder, s string, mode ErrorMode, name string) ([]byte, error) {
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		switch mode {
		case ErrorStrict:
			return nil, &CodecError{Alphabet: name, Reason: err.Error()}
		case ErrorIgnore, ErrorReplace:
			// encoding.Encoder has no built-in lossy mode and Bytes
			// returns no output on error, so encode rune by rune and drop
			// (ErrorIgnore) or replace with '?' (ErrorReplace) each rune
			// the alphabet cannot represent.
			out = nil
			for _, r := range s {
				rb, rerr := enc.Bytes([]byte(string(r)))
				if rerr != nil {
					if mode == ErrorReplace {
						out = append(out, '?')
					}
					continue
				}
				out = append(out, rb...)
			}
			return out, nil
		}
	}
	return out, nil
}

func xtextDecode(dec *encoding.Decoder, b []byte, mode ErrorMode, name string) (string, error) {
	out, err := dec.Bytes(b)
	if err != nil {
		switch mode {
		case ErrorStrict:
			return "", &CodecError{Alphabet: name, Reason: err.Error()}
		case ErrorIgnore, ErrorReplace:
			return string(out), nil
		}
	}
	return string(out), nil
}
