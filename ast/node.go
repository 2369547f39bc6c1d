// Package ast defines the tagged-variant syntax tree shape the analyzer is
// handed by the parser: translation-unit, declaration, function-definition,
// and every expression/statement/declarator kind. This is the interface to
// an external producer, not a parser; nothing in this module constructs a
// Node from source text.
package ast

import "github.com/ripleymj/ecc/ctype"

// Kind tags the variant a Node represents.
type Kind int

const (
	KindTranslationUnit Kind = iota
	KindDeclaration
	KindFunctionDefinition
	KindInitDeclarator
	KindDeclaratorIdentifier
	KindArrayDeclarator
	KindFunctionDeclarator
	KindParameterDeclaration
	KindStorageClassSpecifier
	KindBasicTypeSpecifier
	KindStructUnionSpecifier
	KindStructDeclarator
	KindEnumSpecifier
	KindEnumerator
	KindTypedefName
	KindTypeName
	KindAbstractDeclarator
	KindDesignation

	KindIdentifier
	KindEnumerationConstant
	KindPrimaryExpressionIdentifier
	KindPrimaryExpressionEnumerationConstant
	KindStringLiteral
	KindFloatingConstant
	KindIntegerConstant
	KindCompoundLiteral

	KindSubscriptExpression
	KindFunctionCallExpression
	KindIntrinsicCallExpression
	KindMemberExpression
	KindDereferenceMemberExpression
	KindPostfixIncrementExpression
	KindPostfixDecrementExpression
	KindPrefixIncrementExpression
	KindPrefixDecrementExpression
	KindReferenceExpression
	KindDereferenceExpression
	KindPlusExpression
	KindMinusExpression
	KindComplementExpression
	KindNotExpression
	KindSizeofExpression
	KindSizeofTypeExpression
	KindCastExpression
	KindMultiplicationExpression
	KindDivisionExpression
	KindModularExpression
	KindAdditionExpression
	KindSubtractionExpression
	KindBitwiseLeftExpression
	KindBitwiseRightExpression
	KindLessExpression
	KindGreaterExpression
	KindLessEqualExpression
	KindGreaterEqualExpression
	KindEqualityExpression
	KindInequalityExpression
	KindBitwiseAndExpression
	KindBitwiseXorExpression
	KindBitwiseOrExpression
	KindLogicalAndExpression
	KindLogicalOrExpression
	KindConditionalExpression
	KindAssignmentExpression
	KindMultiplicationAssignmentExpression
	KindDivisionAssignmentExpression
	KindModularAssignmentExpression
	KindAdditionAssignmentExpression
	KindSubtractionAssignmentExpression
	KindBitwiseLeftAssignmentExpression
	KindBitwiseRightAssignmentExpression
	KindBitwiseAndAssignmentExpression
	KindBitwiseXorAssignmentExpression
	KindBitwiseOrAssignmentExpression
	KindExpression // comma expression

	KindInitializerList

	KindLabeledStatement
	KindIfStatement
	KindSwitchStatement
	KindWhileStatement
	KindDoStatement
	KindForStatement
	KindContinueStatement
	KindBreakStatement
	KindReturnStatement
	KindCompoundStatement
	KindGotoStatement
)

func (k Kind) String() string {
	return kindNames[k]
}

var kindNames = map[Kind]string{
	KindTranslationUnit:     "TranslationUnit",
	KindDeclaration:         "Declaration",
	KindFunctionDefinition:  "FunctionDefinition",
	KindIdentifier:          "Identifier",
	KindStringLiteral:       "StringLiteral",
	KindFloatingConstant:    "FloatingConstant",
	KindIntegerConstant:     "IntegerConstant",
	KindCompoundLiteral:     "CompoundLiteral",
	KindSubscriptExpression: "SubscriptExpression",
}

// Node is the tagged-variant syntax node. Only the fields relevant to one
// Kind are populated; the zero value of the rest is never consulted.
// Decoration slots (Type, InitializerOffset, ...) are written in place by
// the analyzer.
type Node struct {
	Kind Kind
	Row  int
	Col  int

	// Decoration written by the analyzer.
	Type               *ctype.Type
	InitializerOffset  int64
	InitializerCtype   *ctype.Type
	InlistHasSemantics bool

	// Identifiers
	ID string

	// Literals
	StringValue   []byte
	StringIsWide  bool
	FloatValue    float64
	IntValue      int64
	IntIsUnsigned bool

	// Binary/unary expressions
	LHS, RHS, Operand *Node

	// Subscript / member / call
	Primary  *Node
	Index    *Node
	Member   string
	Arrow    bool
	Args     []*Node
	TypeName *Node

	// Conditional
	Cond, Then, Else *Node

	// Assignment
	Target, Value *Node

	// Cast / sizeof-type / compound literal
	CastType *Node

	// Compound literal / initializer list
	Designators     []*Node
	Initializers    []*Node
	DesignatorChain []*Designator

	// Declarations
	DeclSpecifiers  []*Node
	InitDeclarators []*Node
	Declarator      *Node
	Initializer     *Node
	FunctionBody    *Node
	Params          []*Node
	Variadic        bool

	// Struct/union/enum specifiers
	Tag            string
	Members        []*Node
	BitWidthExpr   *Node // struct-declarator ": width", nil when absent
	Enumerators    []*Node
	EnumeratorInit *Node

	// Statements
	Body, Body2 *Node
	Init        *Node // for init clause: a declaration or an expression, or nil
	Post        *Node // for post expression, or nil
	Label       string
	CaseValue   *Node
	IsDefault   bool
	Children    []*Node

	// Parent link, used by ancestor queries (enclosing loop/switch/function).
	Parent *Node
}

// Designator is one element of a designation list ("{.b = 7}" or
// "{[2] = 1}").
type Designator struct {
	IsMember bool
	Member   string
	Index    *Node
}

// EnclosingOfKind walks Parent links looking for the nearest ancestor of
// one of the given kinds, stopping the search at any node matching stopAt
// (used to bound case-duplicate detection to the immediately enclosing
// switch).
func EnclosingOfKind(n *Node, stopAt Kind, kinds ...Kind) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == stopAt {
			return nil
		}
		for _, k := range kinds {
			if p.Kind == k {
				return p
			}
		}
	}
	return nil
}

// NearestLoopOrSwitch returns the nearest enclosing loop or switch
// statement ancestor, used by break/continue validation.
func NearestLoopOrSwitch(n *Node) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		switch p.Kind {
		case KindWhileStatement, KindDoStatement, KindForStatement, KindSwitchStatement:
			return p
		}
	}
	return nil
}

func NearestLoop(n *Node) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		switch p.Kind {
		case KindWhileStatement, KindDoStatement, KindForStatement:
			return p
		}
	}
	return nil
}

func NearestFunctionDefinition(n *Node) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == KindFunctionDefinition {
			return p
		}
	}
	return nil
}
