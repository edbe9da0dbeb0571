package parser

import (
	"github.com/golangee/dts/ast"
	"github.com/golangee/dts/diag"
	"github.com/golangee/dts/token"
)

// parseTopLevelDecl implements the TOP state of §4.3's state machine:
// TOP -> RootBlock | RefBlock | DeleteNode | Property | DeleteProperty,
// plus child nodes and '#' directives. A file may hold any number of
// root blocks. Nested blocks go through parseNestedDecl.
func (p *Parser) parseTopLevelDecl() ast.Node {
	labels := p.collectLabels()

	tok := p.peek()

	switch tok.Kind {
	case token.Slash:
		return p.parseSlashDecl(labels)
	case token.Ampersand:
		return p.parseRefNode(labels)
	case token.Identifier:
		return p.parseIdentifierDecl(labels)
	case token.Directive:
		p.next()
		return p.finishDirective(tok, labels)
	case token.Eof:
		return nil
	default:
		p.report(diag.New(zeroNode(tok), diag.UnexpectedToken, tok.Kind.String()))
		p.next()
		p.recoverTo(token.Semicolon, token.Slash)

		return nil
	}
}

// parseNestedDecl implements the nested-block state:
// Property | ChildNode | DeleteNode | DeleteProperty, plus reference
// nodes and '#' directives. A nested "/{" is not rejected: parseSlashDecl
// parses it as a DtcRootNode inside the enclosing block.
func (p *Parser) parseNestedDecl() ast.Node {
	labels := p.collectLabels()

	tok := p.peek()

	switch tok.Kind {
	case token.Slash:
		return p.parseSlashDecl(labels)
	case token.Ampersand:
		return p.parseRefNode(labels)
	case token.Identifier:
		return p.parseIdentifierDecl(labels)
	case token.Directive:
		p.next()
		return p.finishDirective(tok, labels)
	default:
		p.report(diag.New(zeroNode(tok), diag.UnexpectedToken, tok.Kind.String()))
		p.next()
		p.recoverTo(token.Semicolon, token.RBrace)

		return nil
	}
}

// zeroNode wraps a bare token into a minimal ast.Node so diagnostics
// always reference a concrete AST element (§4.3 deliverable), even when
// recovering from a token that never started any real production.
type zeroElement struct {
	ast.Base
}

func (z *zeroElement) Walk(v ast.Visitor) { v.Enter(z); v.Exit(z) }

func zeroNode(tok token.Token) ast.Node {
	return &zeroElement{ast.Base{First: tok, Last: tok}}
}

// parseSlashDecl handles every "/xxx/" bracketed directive as well as
// the bare root block "/{ ... };". DTS writes delete-node, delete-property
// and include directives wrapped in slashes, so after the identifier we
// require (and recover around) a second Slash before the directive's
// argument.
func (p *Parser) parseSlashDecl(labels []*ast.LabelAssign) ast.Node {
	slash := p.next() // consume '/'

	next := p.peek()

	if next.Kind == token.LBrace {
		return p.parseDtcRootNode(slash, labels)
	}

	if next.Kind != token.Identifier {
		p.report(diag.New(zeroNode(slash), diag.UnexpectedToken, next.Kind.String()))
		p.recoverTo(token.Semicolon, token.Slash)

		return nil
	}

	nameTok := p.next()

	if p.peek().Kind == token.Slash {
		p.next()
	} else {
		p.report(diag.New(zeroNode(nameTok), diag.UnexpectedToken, "Slash"))
	}

	switch nameTok.Value {
	case "delete-node":
		return p.finishDeleteNode(slash, labels)
	case "delete-property":
		return p.finishDeleteProperty(slash, labels)
	case "include":
		return p.finishInclude(slash, nameTok, labels)
	default:
		p.report(diag.New(zeroNode(nameTok), diag.UnexpectedToken, nameTok.Value))
		p.recoverTo(token.Semicolon, token.Slash)

		return nil
	}
}

func (p *Parser) finishDeleteNode(slash token.Token, labels []*ast.LabelAssign) ast.Node {
	dn := &ast.DeleteNode{Base: ast.Base{First: slash, Last: slash}}

	target := p.peek()

	switch target.Kind {
	case token.Ampersand:
		p.next()
		dn.Ref = p.parseLabelRef(target)
		dn.Last = dn.Ref.Last
	case token.Identifier:
		p.next()
		dn.Name = target.Value
		dn.Last = target
	default:
		p.report(diag.New(zeroNode(target), diag.UnexpectedToken, target.Kind.String()))
	}

	p.expectSemicolon(dn)
	attachLabels(dn, labels)

	return dn
}

func (p *Parser) finishDeleteProperty(slash token.Token, labels []*ast.LabelAssign) ast.Node {
	dp := &ast.DeleteProperty{Base: ast.Base{First: slash, Last: slash}}

	target := p.peek()
	if target.Kind == token.Identifier {
		p.next()
		dp.Name = target.Value
		dp.Last = target
	} else {
		p.report(diag.New(zeroNode(target), diag.UnexpectedToken, target.Kind.String()))
	}

	p.expectSemicolon(dp)
	attachLabels(dp, labels)

	return dp
}

// finishInclude consumes the include directive's string argument but
// does not resolve or inline it: include-path resolution is modeled by
// a SourceProvider owned by the caller, out of scope for this module
// (§1). The directive is kept in the tree purely so its range and any
// syntax issues around it are still observable.
func (p *Parser) finishInclude(slash, nameTok token.Token, labels []*ast.LabelAssign) ast.Node {
	inc := &ast.Directive{Base: ast.Base{First: slash, Last: nameTok}, Text: "/include/"}

	if p.peek().Kind == token.String {
		str := p.next()
		inc.Last = str
		inc.Text = inc.Text + " " + str.Value
	}

	p.expectSemicolon(inc)
	attachLabels(inc, labels)

	return inc
}

// finishDirective wraps a '#'-prefixed preprocessor line (e.g.
// "#include <foo.dtsi>") as an inert pass-through node. Evaluating macro
// preprocessor directives beyond tokenization is a non-goal (§1).
func (p *Parser) finishDirective(tok token.Token, labels []*ast.LabelAssign) ast.Node {
	node := &ast.Directive{Base: ast.Base{First: tok, Last: tok}, Text: tok.Value}
	attachLabels(node, labels)

	return node
}
