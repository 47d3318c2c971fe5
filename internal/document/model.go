// Package document compiles operation files into location-free documents.
//
// The document model mirrors the graphql-js DocumentNode JSON shape (kind
// first, empty lists kept as []), so the same bytes can be embedded in a
// TypeScript module or handed to a bundler loader.
package document

// Node kinds.
const (
	KindDocument            = "Document"
	KindOperationDefinition = "OperationDefinition"
	KindFragmentDefinition  = "FragmentDefinition"
	KindVariableDefinition  = "VariableDefinition"
	KindSelectionSet        = "SelectionSet"
	KindField               = "Field"
	KindFragmentSpread      = "FragmentSpread"
	KindInlineFragment      = "InlineFragment"
	KindArgument            = "Argument"
	KindDirective           = "Directive"
	KindName                = "Name"
	KindVariable            = "Variable"
	KindIntValue            = "IntValue"
	KindFloatValue          = "FloatValue"
	KindStringValue         = "StringValue"
	KindBooleanValue        = "BooleanValue"
	KindNullValue           = "NullValue"
	KindEnumValue           = "EnumValue"
	KindListValue           = "ListValue"
	KindObjectValue         = "ObjectValue"
	KindObjectField         = "ObjectField"
	KindNamedType           = "NamedType"
	KindListType            = "ListType"
	KindNonNullType         = "NonNullType"
)

// Node is any document node.
type Node interface {
	NodeKind() string
}

type Document struct {
	Kind        string `json:"kind"`
	Definitions []Node `json:"definitions"`
}

type Name struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type OperationDefinition struct {
	Kind                string                `json:"kind"`
	Operation           string                `json:"operation"`
	Name                *Name                 `json:"name,omitempty"`
	VariableDefinitions []*VariableDefinition `json:"variableDefinitions"`
	Directives          []*Directive          `json:"directives"`
	SelectionSet        *SelectionSet         `json:"selectionSet"`
}

type FragmentDefinition struct {
	Kind                string                `json:"kind"`
	Name                *Name                 `json:"name"`
	VariableDefinitions []*VariableDefinition `json:"variableDefinitions,omitempty"`
	TypeCondition       *NamedType            `json:"typeCondition"`
	Directives          []*Directive          `json:"directives"`
	SelectionSet        *SelectionSet         `json:"selectionSet"`
}

type VariableDefinition struct {
	Kind         string       `json:"kind"`
	Variable     *Variable    `json:"variable"`
	Type         Node         `json:"type"`
	DefaultValue Node         `json:"defaultValue,omitempty"`
	Directives   []*Directive `json:"directives"`
}

type SelectionSet struct {
	Kind       string `json:"kind"`
	Selections []Node `json:"selections"`
}

type Field struct {
	Kind         string        `json:"kind"`
	Alias        *Name         `json:"alias,omitempty"`
	Name         *Name         `json:"name"`
	Arguments    []*Argument   `json:"arguments"`
	Directives   []*Directive  `json:"directives"`
	SelectionSet *SelectionSet `json:"selectionSet,omitempty"`
}

type FragmentSpread struct {
	Kind       string       `json:"kind"`
	Name       *Name        `json:"name"`
	Directives []*Directive `json:"directives"`
}

type InlineFragment struct {
	Kind          string        `json:"kind"`
	TypeCondition *NamedType    `json:"typeCondition,omitempty"`
	Directives    []*Directive  `json:"directives"`
	SelectionSet  *SelectionSet `json:"selectionSet"`
}

type Argument struct {
	Kind  string `json:"kind"`
	Name  *Name  `json:"name"`
	Value Node   `json:"value"`
}

type Directive struct {
	Kind      string      `json:"kind"`
	Name      *Name       `json:"name"`
	Arguments []*Argument `json:"arguments"`
}

type Variable struct {
	Kind string `json:"kind"`
	Name *Name  `json:"name"`
}

// ScalarValue covers IntValue, FloatValue and EnumValue.
type ScalarValue struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type StringValue struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
	Block bool   `json:"block"`
}

type BooleanValue struct {
	Kind  string `json:"kind"`
	Value bool   `json:"value"`
}

type NullValue struct {
	Kind string `json:"kind"`
}

type ListValue struct {
	Kind   string `json:"kind"`
	Values []Node `json:"values"`
}

type ObjectValue struct {
	Kind   string         `json:"kind"`
	Fields []*ObjectField `json:"fields"`
}

type ObjectField struct {
	Kind  string `json:"kind"`
	Name  *Name  `json:"name"`
	Value Node   `json:"value"`
}

type NamedType struct {
	Kind string `json:"kind"`
	Name *Name  `json:"name"`
}

type ListType struct {
	Kind string `json:"kind"`
	Type Node   `json:"type"`
}

type NonNullType struct {
	Kind string `json:"kind"`
	Type Node   `json:"type"`
}

func (*Document) NodeKind() string            { return KindDocument }
func (*Name) NodeKind() string                { return KindName }
func (*OperationDefinition) NodeKind() string { return KindOperationDefinition }
func (*FragmentDefinition) NodeKind() string  { return KindFragmentDefinition }
func (*VariableDefinition) NodeKind() string  { return KindVariableDefinition }
func (*SelectionSet) NodeKind() string        { return KindSelectionSet }
func (*Field) NodeKind() string               { return KindField }
func (*FragmentSpread) NodeKind() string      { return KindFragmentSpread }
func (*InlineFragment) NodeKind() string      { return KindInlineFragment }
func (*Argument) NodeKind() string            { return KindArgument }
func (*Directive) NodeKind() string           { return KindDirective }
func (*Variable) NodeKind() string            { return KindVariable }
func (v *ScalarValue) NodeKind() string       { return v.Kind }
func (*StringValue) NodeKind() string         { return KindStringValue }
func (*BooleanValue) NodeKind() string        { return KindBooleanValue }
func (*NullValue) NodeKind() string           { return KindNullValue }
func (*ListValue) NodeKind() string           { return KindListValue }
func (*ObjectValue) NodeKind() string         { return KindObjectValue }
func (*ObjectField) NodeKind() string         { return KindObjectField }
func (*NamedType) NodeKind() string           { return KindNamedType }
func (*ListType) NodeKind() string            { return KindListType }
func (*NonNullType) NodeKind() string         { return KindNonNullType }
