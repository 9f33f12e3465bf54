package chat

import (
	"encoding/json"
	"fmt"
	"io"
)

// TokenKind enumerates the JSON events the driver consumes. The driver
// is written against this closed set rather than against
// encoding/json.Decoder directly, so a different tokenizer could be
// substituted without touching the pushdown automaton.
type TokenKind int

const (
	TokNull TokenKind = iota
	TokBool
	TokInteger
	TokDouble
	TokString
	TokStartObject
	TokEndObject
	TokStartArray
	TokEndArray
	TokKey
)

// Token is one event from a Tokenizer.
type Token struct {
	Kind    TokenKind
	Bool    bool
	Integer uint64
	Double  float64
	String  string
}

// Tokenizer produces the JSON event stream the driver consumes. The
// underlying tokenizer itself — turning bytes into these events — is
// treated as an external collaborator the driver does not implement;
// jsonTokenizer below adapts the standard library's streaming decoder,
// since no third-party streaming JSON tokenizer is available to wire in
// its place.
type Tokenizer interface {
	Next() (Token, error)
}

type containerFrame int

const (
	frameArray  containerFrame = iota // arrays never hold keys
	frameObjKey                       // object, next string is a key
	frameObjVal                       // object, key consumed, next token is its value
)

// jsonTokenizer adapts encoding/json.Decoder.Token to the Tokenizer
// interface. encoding/json reports both object keys and string values
// as a bare Go string; this tracks container context to tell them
// apart and report TokKey only for the former.
type jsonTokenizer struct {
	dec   *json.Decoder
	stack []containerFrame
}

// NewJSONTokenizer wraps r as a Tokenizer backed by the standard
// library's incremental decoder.
func NewJSONTokenizer(r io.Reader) Tokenizer {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonTokenizer{dec: dec}
}

func (t *jsonTokenizer) top() containerFrame {
	if len(t.stack) == 0 {
		return frameArray
	}
	return t.stack[len(t.stack)-1]
}

func (t *jsonTokenizer) setTop(f containerFrame) {
	if len(t.stack) > 0 {
		t.stack[len(t.stack)-1] = f
	}
}

// consumedValue flips an open object from "expect value" back to
// "expect key" after a primitive or nested value has been consumed.
func (t *jsonTokenizer) consumedValue() {
	if t.top() == frameObjVal {
		t.setTop(frameObjKey)
	}
}

func (t *jsonTokenizer) Next() (Token, error) {
	tok, err := t.dec.Token()
	if err != nil {
		return Token{}, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			t.consumedValue()
			t.stack = append(t.stack, frameObjKey)
			return Token{Kind: TokStartObject}, nil
		case '}':
			if len(t.stack) > 0 {
				t.stack = t.stack[:len(t.stack)-1]
			}
			t.consumedValue()
			return Token{Kind: TokEndObject}, nil
		case '[':
			t.consumedValue()
			t.stack = append(t.stack, frameArray)
			return Token{Kind: TokStartArray}, nil
		case ']':
			if len(t.stack) > 0 {
				t.stack = t.stack[:len(t.stack)-1]
			}
			t.consumedValue()
			return Token{Kind: TokEndArray}, nil
		}
		return Token{}, fmt.Errorf("chat: unexpected delimiter %v", v)
	case string:
		if t.top() == frameObjKey {
			t.setTop(frameObjVal)
			return Token{Kind: TokKey, String: v}, nil
		}
		t.consumedValue()
		return Token{Kind: TokString, String: v}, nil
	case bool:
		t.consumedValue()
		return Token{Kind: TokBool, Bool: v}, nil
	case json.Number:
		t.consumedValue()
		if i, err := v.Int64(); err == nil {
			return Token{Kind: TokInteger, Integer: uint64(i)}, nil
		}
		f, err := v.Float64()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokDouble, Double: f}, nil
	case nil:
		t.consumedValue()
		return Token{Kind: TokNull}, nil
	}
	return Token{}, fmt.Errorf("chat: unrecognized token %T", tok)
}
