package parser

import (
	"strconv"
	"strings"

	"github.com/golangee/dts/ast"
	"github.com/golangee/dts/diag"
	"github.com/golangee/dts/token"
)

// parsePropertyRest finishes a property declaration once its name has
// already been consumed: either a valueless boolean property ("name;")
// or "name = value, value, ...;".
func (p *Parser) parsePropertyRest(nameTok token.Token, labels []*ast.LabelAssign) ast.Node {
	prop := &ast.DtcProperty{
		Base:         ast.Base{First: nameTok, Last: nameTok},
		PropertyName: nameTok.Value,
	}

	if p.peek().Kind == token.Equals {
		p.next()

		for {
			val := p.parseValue()
			if val != nil {
				prop.Values = append(prop.Values, val)
				prop.Last = val.LastToken()
			}

			if p.peek().Kind == token.Comma {
				p.next()
				continue
			}

			break
		}
	}

	p.expectSemicolon(prop)
	attachLabels(prop, labels)

	return prop
}

// parseValue parses one property value: a string, a cell array, a
// bytestring, a bare label reference, or a node-path reference. On an
// unrecognized token it reports UNEXPECTED_TOKEN, consumes the offending
// token, and returns nil so the caller skips it without looping forever.
func (p *Parser) parseValue() ast.PropertyValue {
	tok := p.peek()

	switch tok.Kind {
	case token.String:
		p.next()
		return &ast.StringValue{Base: ast.Base{First: tok, Last: tok}, Value: unquote(tok.Value)}
	case token.LAngle:
		return p.parseArrayValues()
	case token.LBracket:
		return p.parseByteString()
	case token.Ampersand:
		return p.parseAmpersandValue()
	default:
		p.report(diag.New(zeroNode(tok), diag.UnexpectedToken, tok.Kind.String()))
		p.next()

		return nil
	}
}

// parseAmpersandValue disambiguates "&label" from "&{/node/path}" once
// the leading '&' is known to be the next token.
func (p *Parser) parseAmpersandValue() ast.PropertyValue {
	amp := p.next()

	if p.peek().Kind == token.LBrace {
		return p.parseNodePathValue(amp)
	}

	ref := p.parseLabelRef(amp)

	return &ast.LabelRefValue{Base: ast.Base{First: amp, Last: ref.Last}, Ref: ref}
}

// parseNodePathValue parses "&{/soc/uart@1000}" once "&" and the peeked
// "{" are known; the path text between braces is captured verbatim from
// the raw token stream (Slash/Identifier/At/Number), since the DTS path
// grammar inside a node-path reference is just those four token kinds
// concatenated.
func (p *Parser) parseNodePathValue(amp token.Token) ast.PropertyValue {
	open := p.next() // consume '{'

	var sb strings.Builder

	last := open

	for {
		tok := p.peek()
		if tok.Kind == token.RBrace || tok.Kind == token.Eof {
			break
		}

		sb.WriteString(tok.Value)
		last = p.next()
	}

	npv := &ast.NodePathValue{Base: ast.Base{First: amp}, Path: sb.String()}

	if p.peek().Kind == token.RBrace {
		npv.Last = p.next()
	} else {
		p.report(diag.New(zeroNode(last), diag.MissingBrace))
		npv.Last = last
	}

	return npv
}

// parseArrayValues parses a "<...>" cell array. Each cell is either a
// literal integer or a "&label" phandle reference occupying that cell's
// slot (§3.2's ArrayValues/CellRefs pairing).
func (p *Parser) parseArrayValues() ast.PropertyValue {
	open := p.next() // consume '<'

	av := &ast.ArrayValues{Base: ast.Base{First: open, Last: open}}

	for {
		tok := p.peek()
		if tok.Kind == token.RAngle || tok.Kind == token.Eof {
			break
		}

		switch tok.Kind {
		case token.Ampersand:
			amp := p.next()
			ref := p.parseLabelRef(amp)
			av.Cells = append(av.Cells, 0)
			av.CellRefs = append(av.CellRefs, ref)
			av.Last = ref.Last
		case token.Number:
			p.next()
			av.Cells = append(av.Cells, parseCellNumber(tok.Value))
			av.CellRefs = append(av.CellRefs, nil)
			av.Last = tok
		default:
			p.report(diag.New(zeroNode(tok), diag.UnexpectedToken, tok.Kind.String()))
			p.next()
		}
	}

	if p.peek().Kind == token.RAngle {
		av.Last = p.next()
	} else {
		p.report(diag.New(av, diag.MissingBrace))
	}

	return av
}

// parseByteString parses a "[ab cd ef]" hex-byte literal. Hex pairs
// lexed without a leading digit (e.g. "ab") come through as Identifier
// tokens, not Number tokens, so both kinds are accepted here.
func (p *Parser) parseByteString() ast.PropertyValue {
	open := p.next() // consume '['

	bs := &ast.ByteString{Base: ast.Base{First: open, Last: open}}

	for {
		tok := p.peek()
		if tok.Kind == token.RBracket || tok.Kind == token.Eof {
			break
		}

		if tok.Kind != token.Identifier && tok.Kind != token.Number {
			p.report(diag.New(zeroNode(tok), diag.UnexpectedToken, tok.Kind.String()))
			p.next()

			continue
		}

		p.next()

		b, err := strconv.ParseUint(tok.Value, 16, 8)
		if err != nil {
			p.report(diag.New(zeroNode(tok), diag.UnexpectedToken, tok.Value))
		} else {
			bs.Bytes = append(bs.Bytes, byte(b))
		}

		bs.Last = tok
	}

	if p.peek().Kind == token.RBracket {
		bs.Last = p.next()
	} else {
		p.report(diag.New(bs, diag.MissingBrace))
	}

	return bs
}

// parseCellNumber parses one <...> cell literal with parseUnitAddress's
// numeral rules ("0x" hex, decimal, octal) and returns it as int64. A
// leading '-' is not part of a Number token, so a negative cell such as
// "<-1>" is reported as UNEXPECTED_TOKEN and never reaches this function.
func parseCellNumber(lexeme string) int64 {
	v := strings.TrimRight(lexeme, "uUlL")
	return int64(parseUnitAddress(v))
}

// unquote strips the surrounding double quotes from a String token's raw
// lexeme, leaving C-style escapes untouched (interpreting escapes is not
// needed by anything downstream of the AST).
func unquote(lexeme string) string {
	if len(lexeme) >= 2 && strings.HasPrefix(lexeme, `"`) && strings.HasSuffix(lexeme, `"`) {
		return lexeme[1 : len(lexeme)-1]
	}

	return lexeme
}
