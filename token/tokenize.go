// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package token

// TokenizeAll drains a Lexer into a slice, terminated by a single Eof
// token. parser.NewParser uses it to tokenize a whole file before
// parsing.
func TokenizeAll(text string) []Token {
	lex := NewLexer(text)

	var toks []Token

	for {
		tok := lex.Next()
		toks = append(toks, tok)

		if tok.Kind == Eof {
			break
		}
	}

	return toks
}
