package smpp

import "strconv"

// gsm7BasicCharset is the GSM 03.38 default alphabet, index == GSM septet
// value. Ported from naz's nazcodec.GSM7BitCodec (itself carried over from
// vumi), which in turn follows the table published alongside GSM 03.38.
const gsm7BasicCharset = "@£$¥èéùìòÇ\nØø\rÅåΔ_ΦΓΛΩΠΨΣΘΞ\x1bÆæßÉ !\"#¤%&'()*+,-./0123456789:;" +
	"<=>?¡ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÑÜ`¿abcdefghijklmnopqrstuvwxyzäö" +
	"ñüà"

// gsm7Extension is the single escape-extension table, reached via the
// 0x1B escape byte. Unmapped positions are '`' (backtick), matching the
// source table; the basic charset also carries '`' (at 0x5F), and encoding
// looks there first, so '`' always encodes to the basic byte.
const gsm7Extension = "````````````````````^```````````````````{}`````\\````````````[~]`" +
	"|````````````````````````````````````€``````````````````````````"

var (
	gsm7BasicEncodeMap = buildRuneIndex(gsm7BasicCharset)
	gsm7ExtEncodeMap   = buildRuneIndex(gsm7Extension)
)

func buildRuneIndex(table string) map[rune]byte {
	m := make(map[rune]byte, len(table))
	for i, r := range []rune(table) {
		if _, exists := m[r]; !exists {
			m[r] = byte(i)
		}
	}
	return m
}

const gsm7EscapeByte = 0x1B

// gsm7Codec implements Codec for the GSM 7-bit default alphabet, carried
// over octet-aligned (one septet per byte on the wire, as the teacher and
// naz both do — true 7-bit packing is a transport-layer concern SMPP leaves
// to the PDU's sm_length field, not this codec).
type gsm7Codec struct{}

func (gsm7Codec) Encode(s string, mode ErrorMode) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i, r := range s {
		if idx, ok := gsm7BasicEncodeMap[r]; ok {
			out = append(out, idx)
			continue
		}
		if idx, ok := gsm7ExtEncodeMap[r]; ok {
			out = append(out, gsm7EscapeByte, idx)
			continue
		}
		switch mode {
		case ErrorStrict:
			return nil, &CodecError{Alphabet: "gsm0338", Reason: "unmappable rune at byte offset " + strconv.Itoa(i)}
		case ErrorIgnore:
			continue
		case ErrorReplace:
			out = append(out, gsm7BasicEncodeMap['?'])
		}
	}
	return out, nil
}

func (gsm7Codec) Decode(b []byte, mode ErrorMode) (string, error) {
	var out []rune
	runes := []rune(gsm7BasicCharset)
	ext := []rune(gsm7Extension)
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c == gsm7EscapeByte {
			i++
			if i >= len(b) || int(b[i]) >= len(ext) {
				switch mode {
				case ErrorStrict:
					return "", &CodecError{Alphabet: "gsm0338", Reason: "truncated or out-of-range escape sequence"}
				case ErrorIgnore:
					continue
				case ErrorReplace:
					out = append(out, '?')
					continue
				}
			}
			out = append(out, ext[b[i]])
			continue
		}
		if int(c) >= len(runes) {
			switch mode {
			case ErrorStrict:
				return "", &CodecError{Alphabet: "gsm0338", Reason: "byte out of range for gsm0338"}
			case ErrorIgnore:
				continue
			case ErrorReplace:
				out = append(out, '?')
				continue
			}
		}
		out = append(out, runes[c])
	}
	return string(out), nil
}
