// Package diag is the shared diagnostic vocabulary produced by the
// parser, the context builder, and the validator. It generalizes the
// teacher's token.PosError/ErrDetail chain (a root message plus an
// ordered list of related positions) into a structured, severity-and-tag
// carrying Diagnostic that downstream tooling (not part of this module)
// can render.
package diag

import "github.com/golangee/dts/ast"

// Severity mirrors an LSP-style severity ladder.
type Severity int

const (
	Error Severity = iota
	Warning
	Hint
	Information
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "Error"
	case Warning:
		return "Warning"
	case Hint:
		return "Hint"
	case Information:
		return "Information"
	default:
		return "Unknown"
	}
}

// Tag is a supplementary marker, e.g. greying out "unnecessary" ranges in
// an editor.
type Tag int

const (
	Unnecessary Tag = iota
	Deprecated
)

// IssueKind is implemented by the three closed enumerations below so a
// Diagnostic's Kinds field can mix at most one stage's vocabulary while
// still being a single Go type.
type IssueKind interface {
	IssueStage() string
	String() string
}

// SyntaxIssue is produced by the parser.
type SyntaxIssue int

const (
	EndStatement SyntaxIssue = iota
	NodeAddress
	NodeNameAddressWhiteSpace
	MissingBrace
	UnexpectedToken
	UnterminatedString
)

var syntaxNames = map[SyntaxIssue]string{
	EndStatement:              "END_STATMENT",
	NodeAddress:               "NODE_ADDRESS",
	NodeNameAddressWhiteSpace: "NODE_NAME_ADDRESS_WHITE_SPACE",
	MissingBrace:              "MISSING_BRACE",
	UnexpectedToken:           "UNEXPECTED_TOKEN",
	UnterminatedString:        "UNTERMINATED_STRING",
}

func (SyntaxIssue) IssueStage() string { return "SyntaxIssue" }
func (k SyntaxIssue) String() string   { return syntaxNames[k] }

// ContextIssue is produced by the context builder while merging files
// into a RuntimeTree.
type ContextIssue int

const (
	DuplicateNodeName ContextIssue = iota
	DuplicatePropertyName
	NodeDoesNotExist
	PropertyDoesNotExist
	UnableToResolveChildNode
	LabelAlreadyInUse
)

var contextNames = map[ContextIssue]string{
	DuplicateNodeName:       "DUPLICATE_NODE_NAME",
	DuplicatePropertyName:   "DUPLICATE_PROPERTY_NAME",
	NodeDoesNotExist:        "NODE_DOES_NOT_EXIST",
	PropertyDoesNotExist:    "PROPERTY_DOES_NOT_EXIST",
	UnableToResolveChildNode: "UNABLE_TO_RESOLVE_CHILD_NODE",
	LabelAlreadyInUse:       "LABEL_ALREADY_IN_USE",
}

func (ContextIssue) IssueStage() string { return "ContextIssue" }
func (k ContextIssue) String() string   { return contextNames[k] }

// StandardTypeIssue is produced by the validator.
type StandardTypeIssue int

const (
	Required StandardTypeIssue = iota
	Omitted
	ExpectedEmpty
	ExpectedString
	ExpectedStringList
	ExpectedU32
	ExpectedU64
	ExpectedPropEncodedArray
	ExpectedOne
	ExpectedCompositeLength
	ExpectedEnum
	Ignored
	PropertyRequiresOtherPropertyInNode
	InterruptsParentNodeNotFound
	InterruptsValueCellMissMatch
)

var typeNames = map[StandardTypeIssue]string{
	Required:                 "REQUIRED",
	Omitted:                  "OMITTED",
	ExpectedEmpty:             "EXPECTED_EMPTY",
	ExpectedString:            "EXPECTED_STRING",
	ExpectedStringList:        "EXPECTED_STRINGLIST",
	ExpectedU32:               "EXPECTED_U32",
	ExpectedU64:               "EXPECTED_U64",
	ExpectedPropEncodedArray:  "EXPECTED_PROP_ENCODED_ARRAY",
	ExpectedOne:               "EXPECTED_ONE",
	ExpectedCompositeLength:   "EXPECTED_COMPOSITE_LENGTH",
	ExpectedEnum:              "EXPECTED_ENUM",
	Ignored:                   "IGNORED",
	PropertyRequiresOtherPropertyInNode: "PROPERTY_REQUIRES_OTHER_PROPERTY_IN_NODE",
	InterruptsParentNodeNotFound:        "INTERRUPTS_PARENT_NODE_NOT_FOUND",
	InterruptsValueCellMissMatch:        "INTERRUPTS_VALUE_CELL_MISS_MATCH",
}

func (StandardTypeIssue) IssueStage() string { return "StandardTypeIssue" }
func (k StandardTypeIssue) String() string   { return typeNames[k] }

// Diagnostic is the unit of feedback emitted by every stage.
type Diagnostic struct {
	Kinds        []IssueKind
	Element      ast.Node
	Severity     Severity
	LinkedTo     []ast.Node
	Tags         []Tag
	TemplateArgs []string
}

// New creates a Diagnostic anchored at element with the stage-appropriate
// default severity: SyntaxIssue and REQUIRED are Error,
// DUPLICATE_PROPERTY_NAME is Hint, every other ContextIssue and
// StandardTypeIssue is Warning. WithSeverity overrides the default.
func New(element ast.Node, kind IssueKind, args ...string) Diagnostic {
	return Diagnostic{
		Kinds:        []IssueKind{kind},
		Element:      element,
		Severity:     defaultSeverity(kind),
		TemplateArgs: args,
	}
}

func defaultSeverity(kind IssueKind) Severity {
	switch k := kind.(type) {
	case SyntaxIssue:
		return Error
	case StandardTypeIssue:
		if k == Required {
			return Error
		}

		return Warning
	case ContextIssue:
		if k == DuplicatePropertyName {
			return Hint
		}

		return Warning
	default:
		return Error
	}
}

// WithSeverity overrides the default severity, builder-style.
func (d Diagnostic) WithSeverity(s Severity) Diagnostic {
	d.Severity = s
	return d
}

// WithTags attaches tags, builder-style.
func (d Diagnostic) WithTags(tags ...Tag) Diagnostic {
	d.Tags = append(d.Tags, tags...)
	return d
}

// WithLinked attaches related ranges, builder-style.
func (d Diagnostic) WithLinked(nodes ...ast.Node) Diagnostic {
	d.LinkedTo = append(d.LinkedTo, nodes...)
	return d
}
