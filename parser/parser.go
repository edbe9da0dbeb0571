// Package parser implements the recursive-descent, panic-mode-recovering
// DTS parser. It generalizes the teacher's buffered next()/peek() token
// queue (parser2/parser.go) from dyml's G1/G2 grammar to the DTS surface
// grammar described by the module's own spec: root nodes, reference
// nodes, child nodes with optional unit addresses, properties with typed
// value lists, and node/property deletions.
package parser

import (
	gocontext "context"

	"github.com/golangee/dts/ast"
	"github.com/golangee/dts/diag"
	"github.com/golangee/dts/token"
)

// Result is everything a single file's parse produces: always a usable
// (possibly degraded) tree plus whatever diagnostics were collected along
// the way. Parsing never fails outright (§7: every stage is total).
type Result struct {
	Root   *ast.RootDoc
	Issues []diag.Diagnostic
}

// Parser parses exactly one file's token stream into a RootDoc.
type Parser struct {
	uri  string
	toks []token.Token
	idx  int

	issues  []diag.Diagnostic
	lastTok token.Token // last significant (non-trivia) token actually consumed
}

// NewParser creates a parser for the given URI's text. Tokenization
// happens eagerly here (DTS files are small enough that a two-pass
// lex-then-parse is simpler than interleaving). The token slice stays
// private to the parser; cache.DocumentCache stores only the parse
// Result.
func NewParser(uri string, text string) *Parser {
	return &Parser{
		uri:  uri,
		toks: token.TokenizeAll(text),
	}
}

// Parse runs the parser to completion. ctx is checked for cancellation
// between top-level declarations only (§6: cancellation is cooperative,
// not preemptive).
func (p *Parser) Parse(ctx gocontext.Context) *Result {
	root := &ast.RootDoc{URI: p.uri}

	if first := p.peek(); first.Kind != token.Eof {
		root.First = first
	}

	for {
		if ctx != nil && ctx.Err() != nil {
			break
		}

		if p.peek().Kind == token.Eof {
			break
		}

		decl := p.parseTopLevelDecl()
		if decl != nil {
			root.Children = append(root.Children, decl)
		}
	}

	root.Last = p.lastTok

	return &Result{Root: root, Issues: p.issues}
}

// --- token cursor -----------------------------------------------------

func (p *Parser) isTrivia(k token.Kind) bool {
	return k == token.Whitespace || k == token.Comment
}

// skipTrivia advances past whitespace/comment tokens without consuming
// them as part of the grammar; they remain in p.toks and so remain
// available to anything that wants the raw stream, satisfying the
// "retained but skipped by lookahead" rule.
func (p *Parser) skipTrivia() {
	for p.idx < len(p.toks) && p.isTrivia(p.toks[p.idx].Kind) {
		p.idx++
	}
}

// peek returns the next significant token without consuming it.
func (p *Parser) peek() token.Token {
	p.skipTrivia()

	if p.idx >= len(p.toks) {
		return token.Token{Kind: token.Eof}
	}

	return p.toks[p.idx]
}

// peekN returns the n-th significant token from the current position (0
// == peek()), without consuming anything.
func (p *Parser) peekN(n int) token.Token {
	idx := p.idx
	count := -1

	for idx < len(p.toks) {
		if p.isTrivia(p.toks[idx].Kind) {
			idx++
			continue
		}

		count++

		if count == n {
			return p.toks[idx]
		}

		idx++
	}

	return token.Token{Kind: token.Eof}
}

// next consumes and returns the next significant token.
func (p *Parser) next() token.Token {
	p.skipTrivia()

	if p.idx >= len(p.toks) {
		return token.Token{Kind: token.Eof}
	}

	tok := p.toks[p.idx]
	p.idx++
	p.lastTok = tok

	return tok
}

// eofPos returns a synthetic zero-length position at end of file, used
// to close constructs that never terminated.
func (p *Parser) eofPos() token.Pos {
	if len(p.toks) == 0 {
		return token.Pos{}
	}

	return p.toks[len(p.toks)-1].Pos
}

// --- diagnostics & recovery --------------------------------------------

func (p *Parser) report(d diag.Diagnostic) {
	p.issues = append(p.issues, d)
}

// expectSemicolon requires a ';' immediately after a completed
// declaration. anchor must already have its Last token set to the
// declaration's true last token (e.g. the closing brace), since a
// missing semicolon is reported against that position, not against
// whatever token happens to follow (§4.3 rule 2). If the semicolon is
// absent, it is NOT treated as consumed: the caller that encloses this
// declaration gets a chance to see the following token (e.g. a parent's
// closing brace), matching scenario 2/3 of the distilled spec.
func (p *Parser) expectSemicolon(anchor ast.Node) {
	if p.peek().Kind == token.Semicolon {
		p.next()
		return
	}

	p.report(diag.New(anchor, diag.EndStatement))
}

// recoverTo skips tokens until one of kinds (or Eof) is the next
// significant token, implementing the panic-mode "skip forward until a
// synchronization token" rule (§4.3).
func (p *Parser) recoverTo(kinds ...token.Kind) {
	for {
		tok := p.peek()
		if tok.Kind == token.Eof {
			return
		}

		for _, k := range kinds {
			if tok.Kind == k {
				return
			}
		}

		p.next()
	}
}

// --- labels -------------------------------------------------------------

// collectLabels consumes zero or more "name:" prefixes, returning them in
// source order. Labels are always attached to whatever follows, even in
// a position where that turns out to be a forbidden context — the
// caller is responsible for flagging misuse; collectLabels just grabs
// them (§3.2 invariant: a label is never dropped).
func (p *Parser) collectLabels() []*ast.LabelAssign {
	var labels []*ast.LabelAssign

	for p.peek().Kind == token.Identifier && p.peekN(1).Kind == token.Colon {
		nameTok := p.next()
		colonTok := p.next()

		labels = append(labels, &ast.LabelAssign{
			Base: ast.Base{First: nameTok, Last: colonTok},
			Name: nameTok.Value,
		})
	}

	return labels
}

// attachLabels assigns labels to node (if node supports carrying labels,
// which every concrete AST node does via the embedded Base) and
// back-fills each label's Owner.
func attachLabels(node ast.Node, labels []*ast.LabelAssign) {
	type labelable interface {
		AddLabel(*ast.LabelAssign)
	}

	lbl, ok := node.(labelable)
	if !ok {
		return
	}

	for _, l := range labels {
		lbl.AddLabel(l)
		l.Owner = node
	}
}
