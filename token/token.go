// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package token

// Kind is the closed enumeration of DTS lexical categories. Unlike the
// teacher's tagged-union token types, the DTS surface grammar is regular
// enough that a single Token struct carrying a Kind discriminator is
// sufficient and keeps the parser's lookahead buffer homogeneous.
type Kind int

const (
	Slash Kind = iota
	LBrace
	RBrace
	LAngle
	RAngle
	LBracket
	RBracket
	Semicolon
	Comma
	Equals
	Ampersand
	At
	Colon
	Identifier
	Number
	String
	Comment
	Directive
	Whitespace
	Eof
	Unknown
)

var kindNames = map[Kind]string{
	Slash:      "Slash",
	LBrace:     "LBrace",
	RBrace:     "RBrace",
	LAngle:     "LAngle",
	RAngle:     "RAngle",
	LBracket:   "LBracket",
	RBracket:   "RBracket",
	Semicolon:  "Semicolon",
	Comma:      "Comma",
	Equals:     "Equals",
	Ampersand:  "Ampersand",
	At:         "At",
	Colon:      "Colon",
	Identifier: "Identifier",
	Number:     "Number",
	String:     "String",
	Comment:    "Comment",
	Directive:  "Directive",
	Whitespace: "Whitespace",
	Eof:        "Eof",
	Unknown:    "Unknown",
}

// String renders the Kind's name, used by diagnostic templates and tests.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return "Unknown"
}

// Token is a single lexeme with its resolved position. Whitespace and
// comment tokens are retained in the stream (needed for positional
// diagnostics like NODE_NAME_ADDRESS_WHITE_SPACE) and skipped only by the
// parser's lookahead, never by the lexer itself.
type Token struct {
	Kind  Kind
	Pos   Pos
	Value string

	// Unterminated is set on a String token that reached end-of-line
	// before its closing quote. The parser decides what diagnostic, if
	// any, that warrants.
	Unterminated bool
}

// Zero returns a synthetic, zero-length token of the given kind anchored
// at pos, used by the parser when recovering from a missing token (e.g. a
// missing trailing semicolon) that never existed in the source.
func Zero(kind Kind, pos Pos) Token {
	return Token{Kind: kind, Pos: Pos{Line: pos.Line, Col: pos.Col, Len: 0}}
}
