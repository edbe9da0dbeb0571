package parser

import (
	"strconv"
	"strings"

	"github.com/golangee/dts/ast"
	"github.com/golangee/dts/diag"
	"github.com/golangee/dts/token"
)

// parseDtcRootNode parses "/{ ... };" once the leading '/' has already
// been consumed and the next token is known to be '{'.
func (p *Parser) parseDtcRootNode(slash token.Token, labels []*ast.LabelAssign) ast.Node {
	p.next() // consume '{'

	node := &ast.DtcRootNode{Base: ast.Base{First: slash}}
	node.Children = p.parseBlockBody()
	node.Last = p.closeBlock(node)

	p.expectSemicolon(node)
	attachLabels(node, labels)

	return node
}

// parseRefNode parses "&label { ... };", usable both at the top level
// and nested (DTS allows reference nodes anywhere a child node can
// occur).
func (p *Parser) parseRefNode(labels []*ast.LabelAssign) ast.Node {
	amp := p.next() // consume '&'
	ref := p.parseLabelRef(amp)

	node := &ast.DtcRefNode{Base: ast.Base{First: amp}, Ref: ref}

	if p.peek().Kind != token.LBrace {
		p.report(diag.New(zeroNode(p.peek()), diag.UnexpectedToken, "LBrace"))
		p.recoverTo(token.Semicolon, token.RBrace)
		node.Last = ref.Last
		attachLabels(node, labels)

		return node
	}

	p.next() // consume '{'
	node.Children = p.parseBlockBody()
	node.Last = p.closeBlock(node)

	p.expectSemicolon(node)
	attachLabels(node, labels)

	return node
}

// parseLabelRef consumes the identifier following an already-consumed
// '&' and builds the LabelRef node.
func (p *Parser) parseLabelRef(amp token.Token) *ast.LabelRef {
	if p.peek().Kind != token.Identifier {
		p.report(diag.New(zeroNode(p.peek()), diag.UnexpectedToken, "Identifier"))

		return &ast.LabelRef{Base: ast.Base{First: amp, Last: amp}}
	}

	id := p.next()

	return &ast.LabelRef{Base: ast.Base{First: amp, Last: id}, Value: id.Value}
}

// parseBlockBody parses declarations until the next significant token is
// '}' or Eof, without consuming the closing brace (the caller does that
// via closeBlock, since what happens on a missing brace differs per
// caller only in which diagnostic anchor to use).
func (p *Parser) parseBlockBody() []ast.Node {
	var children []ast.Node

	for {
		tok := p.peek()
		if tok.Kind == token.RBrace || tok.Kind == token.Eof {
			return children
		}

		child := p.parseNestedDecl()
		if child != nil {
			children = append(children, child)
		}
	}
}

// closeBlock consumes a '}' if present; on catastrophic EOF it closes
// the construct with a synthetic end-of-file token instead of hanging
// (§4.3 rule 4) and reports MISSING_BRACE.
func (p *Parser) closeBlock(anchor ast.Node) token.Token {
	if p.peek().Kind == token.RBrace {
		return p.next()
	}

	synthetic := token.Zero(token.RBrace, p.eofPos())
	p.report(diag.New(anchor, diag.MissingBrace))

	return synthetic
}

// parseIdentifierDecl disambiguates a leading Identifier into either a
// child node ("name[@addr]{...};") or a property ("name[=values];") by
// looking one token ahead.
func (p *Parser) parseIdentifierDecl(labels []*ast.LabelAssign) ast.Node {
	nameTok := p.next()

	after := p.peek()
	if after.Kind == token.At || after.Kind == token.LBrace {
		return p.parseChildNode(nameTok, labels)
	}

	return p.parsePropertyRest(nameTok, labels)
}

// adjacent reports whether b immediately follows a in the source, with
// no characters (including whitespace) between them.
func adjacent(a, b token.Token) bool {
	end := a.Pos.End()
	return end.Line == b.Pos.Line && end.Col == b.Pos.Col
}

func (p *Parser) parseChildNode(nameTok token.Token, labels []*ast.LabelAssign) ast.Node {
	nn := &ast.NodeName{Base: ast.Base{First: nameTok, Last: nameTok}, Name: nameTok.Value}

	if p.peek().Kind == token.At {
		atTok := p.next()
		spaceBeforeAt := !adjacent(nameTok, atTok)

		addrTok := p.peek()
		if addrTok.Kind == token.Number {
			p.next()

			nn.HasAddress = true

			// A unit address is hexadecimal with or without a "0x"
			// prefix: "node1@20" is address 0x20.
			hexDigits := strings.TrimPrefix(strings.TrimPrefix(addrTok.Value, "0x"), "0X")
			nn.Address = parseUnitAddress("0x" + hexDigits)
			nn.Last = addrTok

			if spaceBeforeAt || !adjacent(atTok, addrTok) {
				issue := diag.New(nn, diag.NodeNameAddressWhiteSpace)
				nn.First = nameTok
				p.report(issue)
			}
		} else {
			nn.HasAddress = false
			nn.Last = atTok
			p.report(diag.New(nn, diag.NodeAddress))
		}
	}

	child := &ast.DtcChildNode{Base: ast.Base{First: nameTok}, Name: nn}

	if p.peek().Kind != token.LBrace {
		p.report(diag.New(zeroNode(p.peek()), diag.UnexpectedToken, "LBrace"))
		p.recoverTo(token.Semicolon, token.RBrace)
		child.Last = nn.Last
		attachLabels(child, labels)

		return child
	}

	p.next() // consume '{'
	child.Children = p.parseBlockBody()
	child.Last = p.closeBlock(child)

	p.expectSemicolon(child)
	attachLabels(child, labels)

	return child
}

// parseUnitAddress accepts hex ("0x" prefixed), decimal, or octal
// literals, same numeral forms the tokenizer recognizes for Number
// tokens (§4.1). Unparseable text (should not happen given the lexer's
// own rules) yields 0 rather than propagating an error, keeping the
// parser total.
func parseUnitAddress(lexeme string) uint64 {
	v := strings.TrimRight(lexeme, "uUlL")

	base := 10
	if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
		base = 16
		v = v[2:]
	} else if strings.HasPrefix(v, "0") && len(v) > 1 {
		base = 8
		v = v[1:]
	}

	n, err := strconv.ParseUint(v, base, 64)
	if err != nil {
		return 0
	}

	return n
}
