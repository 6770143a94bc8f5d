// Package jsunpack reverses the "p,a,c,k,e,d" script packer: a body whose
// identifiers were replaced by base-N indices into a '|' separated word list.
package jsunpack

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrMalformedPayload = errors.New("malformed pack payload")

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	reWrapper = regexp.MustCompile(`eval\s*\(\s*function\s*\(\s*p\s*,\s*a\s*,\s*c\s*,\s*k\s*,\s*e\s*,\s*[dr]\s*\)`)
	reWord    = regexp.MustCompile(`\b\w+\b`)
)

type Payload struct {
	Body  string
	Radix int
	Count int
	Words []string
}

// IsPacked reports whether src carries a packer wrapper.
func IsPacked(src string) bool {
	return reWrapper.MatchString(src)
}

// Unpack returns the original source of a packed script.
func Unpack(src string) (string, error) {
	p, err := ParsePayload(src)
	if err != nil {
		return "", err
	}

	return p.Expand(), nil
}

// ParsePayload locates the wrapper invocation and reads its four arguments.
func ParsePayload(src string) (Payload, error) {
	loc := reWrapper.FindStringIndex(src)
	if loc == nil {
		return Payload{}, fmt.Errorf("%w: no packer wrapper", ErrMalformedPayload)
	}

	rest := src[loc[1]:]
	start := strings.Index(rest, "}(")
	if start < 0 {
		return Payload{}, fmt.Errorf("%w: no argument list", ErrMalformedPayload)
	}

	sc := &scanner{s: rest, pos: start + 2}

	body, err := sc.stringLit()
	if err != nil {
		return Payload{}, fmt.Errorf("%w: body: %v", ErrMalformedPayload, err)
	}
	if err := sc.comma(); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	radix, err := sc.intLit()
	if err != nil {
		return Payload{}, fmt.Errorf("%w: radix: %v", ErrMalformedPayload, err)
	}
	if radix < 2 || radix > len(alphabet) {
		return Payload{}, fmt.Errorf("%w: radix %d out of range", ErrMalformedPayload, radix)
	}
	if err := sc.comma(); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	count, err := sc.intLit()
	if err != nil {
		return Payload{}, fmt.Errorf("%w: count: %v", ErrMalformedPayload, err)
	}
	if count < 0 {
		return Payload{}, fmt.Errorf("%w: negative count", ErrMalformedPayload)
	}
	if err := sc.comma(); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	dict, err := sc.stringLit()
	if err != nil {
		return Payload{}, fmt.Errorf("%w: dictionary: %v", ErrMalformedPayload, err)
	}

	return Payload{
		Body:  body,
		Radix: radix,
		Count: count,
		Words: strings.Split(dict, "|"),
	}, nil
}

// Expand substitutes every encoded token of the body with its word.
// The table is filled from the highest index down; a single pass over the
// body keeps inserted words from being substituted again.
func (p Payload) Expand() string {
	if p.Count == 0 {
		return p.Body
	}

	table := make(map[string]string, p.Count)
	for i := p.Count - 1; i >= 0; i-- {
		if i >= len(p.Words) || p.Words[i] == "" {
			continue
		}
		table[Encode(i, p.Radix)] = p.Words[i]
	}

	return reWord.ReplaceAllStringFunc(p.Body, func(w string) string {
		if r, ok := table[w]; ok {
			return r
		}
		return w
	})
}

// Encode renders n in base radix the way the packer names its tokens.
func Encode(n, radix int) string {
	if n < radix {
		return string(alphabet[n])
	}

	return Encode(n/radix, radix) + string(alphabet[n%radix])
}

type scanner struct {
	s   string
	pos int
}

func (sc *scanner) skipSpace() {
	for sc.pos < len(sc.s) {
		switch sc.s[sc.pos] {
		case ' ', '\t', '\n', '\r':
			sc.pos++
		default:
			return
		}
	}
}

func (sc *scanner) comma() error {
	sc.skipSpace()
	if sc.pos >= len(sc.s) || sc.s[sc.pos] != ',' {
		return fmt.Errorf("expected ',' at offset %d", sc.pos)
	}
	sc.pos++

	return nil
}

func (sc *scanner) intLit() (int, error) {
	sc.skipSpace()
	start := sc.pos
	for sc.pos < len(sc.s) && sc.s[sc.pos] >= '0' && sc.s[sc.pos] <= '9' {
		sc.pos++
	}
	if start == sc.pos {
		return 0, fmt.Errorf("expected integer at offset %d", start)
	}

	return strconv.Atoi(sc.s[start:sc.pos])
}

func (sc *scanner) stringLit() (string, error) {
	sc.skipSpace()
	if sc.pos >= len(sc.s) {
		return "", errors.New("unexpected end of input")
	}

	quote := sc.s[sc.pos]
	if quote != '\'' && quote != '"' {
		return "", fmt.Errorf("expected quote at offset %d", sc.pos)
	}
	sc.pos++

	var b strings.Builder
	for sc.pos < len(sc.s) {
		c := sc.s[sc.pos]
		switch {
		case c == quote:
			sc.pos++
			return b.String(), nil
		case c == '\\' && sc.pos+1 < len(sc.s):
			sc.pos++
			switch e := sc.s[sc.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
		sc.pos++
	}

	return "", errors.New("unterminated string")
}
