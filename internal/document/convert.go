package document

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
)

// FromAST converts a parsed query document into the location-free model.
// Definitions keep their source order, operations and fragments
// interleaved as written.
func FromAST(doc *ast.QueryDocument) *Document {
	type positioned struct {
		start int
		node  Node
	}
	defs := make([]positioned, 0, len(doc.Operations)+len(doc.Fragments))
	for _, op := range doc.Operations {
		defs = append(defs, positioned{posStart(op.Position), convertOperation(op)})
	}
	for _, fr := range doc.Fragments {
		defs = append(defs, positioned{posStart(fr.Position), convertFragment(fr)})
	}
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].start < defs[j].start })

	out := &Document{Kind: KindDocument, Definitions: make([]Node, len(defs))}
	for i, d := range defs {
		out.Definitions[i] = d.node
	}
	return out
}

func posStart(p *ast.Position) int {
	if p == nil {
		return 0
	}
	return p.Start
}

func name(s string) *Name { return &Name{Kind: KindName, Value: s} }

func convertOperation(op *ast.OperationDefinition) *OperationDefinition {
	def := &OperationDefinition{
		Kind:                KindOperationDefinition,
		Operation:           string(op.Operation),
		VariableDefinitions: convertVariableDefinitions(op.VariableDefinitions),
		Directives:          convertDirectives(op.Directives),
		SelectionSet:        convertSelectionSet(op.SelectionSet),
	}
	if def.Operation == "" {
		def.Operation = string(ast.Query)
	}
	if op.Name != "" {
		def.Name = name(op.Name)
	}
	return def
}

func convertFragment(fr *ast.FragmentDefinition) *FragmentDefinition {
	def := &FragmentDefinition{
		Kind:          KindFragmentDefinition,
		Name:          name(fr.Name),
		TypeCondition: namedType(fr.TypeCondition),
		Directives:    convertDirectives(fr.Directives),
		SelectionSet:  convertSelectionSet(fr.SelectionSet),
	}
	if len(fr.VariableDefinition) > 0 {
		def.VariableDefinitions = convertVariableDefinitions(fr.VariableDefinition)
	}
	return def
}

func convertVariableDefinitions(list ast.VariableDefinitionList) []*VariableDefinition {
	out := make([]*VariableDefinition, 0, len(list))
	for _, v := range list {
		vd := &VariableDefinition{
			Kind:       KindVariableDefinition,
			Variable:   &Variable{Kind: KindVariable, Name: name(v.Variable)},
			Type:       convertType(v.Type),
			Directives: convertDirectives(v.Directives),
		}
		if v.DefaultValue != nil {
			vd.DefaultValue = convertValue(v.DefaultValue)
		}
		out = append(out, vd)
	}
	return out
}

func convertType(t *ast.Type) Node {
	if t == nil {
		return nil
	}
	var inner Node
	if t.Elem != nil {
		inner = &ListType{Kind: KindListType, Type: convertType(t.Elem)}
	} else {
		inner = namedType(t.NamedType)
	}
	if t.NonNull {
		return &NonNullType{Kind: KindNonNullType, Type: inner}
	}
	return inner
}

func namedType(n string) *NamedType {
	return &NamedType{Kind: KindNamedType, Name: name(n)}
}

func convertSelectionSet(set ast.SelectionSet) *SelectionSet {
	out := &SelectionSet{Kind: KindSelectionSet, Selections: make([]Node, 0, len(set))}
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			f := &Field{
				Kind:       KindField,
				Name:       name(s.Name),
				Arguments:  convertArguments(s.Arguments),
				Directives: convertDirectives(s.Directives),
			}
			if s.Alias != "" && s.Alias != s.Name {
				f.Alias = name(s.Alias)
			}
			if len(s.SelectionSet) > 0 {
				f.SelectionSet = convertSelectionSet(s.SelectionSet)
			}
			out.Selections = append(out.Selections, f)
		case *ast.FragmentSpread:
			out.Selections = append(out.Selections, &FragmentSpread{
				Kind:       KindFragmentSpread,
				Name:       name(s.Name),
				Directives: convertDirectives(s.Directives),
			})
		case *ast.InlineFragment:
			in := &InlineFragment{
				Kind:         KindInlineFragment,
				Directives:   convertDirectives(s.Directives),
				SelectionSet: convertSelectionSet(s.SelectionSet),
			}
			if s.TypeCondition != "" {
				in.TypeCondition = namedType(s.TypeCondition)
			}
			out.Selections = append(out.Selections, in)
		}
	}
	return out
}

func convertArguments(list ast.ArgumentList) []*Argument {
	out := make([]*Argument, 0, len(list))
	for _, a := range list {
		out = append(out, &Argument{Kind: KindArgument, Name: name(a.Name), Value: convertValue(a.Value)})
	}
	return out
}

func convertDirectives(list ast.DirectiveList) []*Directive {
	out := make([]*Directive, 0, len(list))
	for _, d := range list {
		out = append(out, &Directive{Kind: KindDirective, Name: name(d.Name), Arguments: convertArguments(d.Arguments)})
	}
	return out
}

func convertValue(v *ast.Value) Node {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case ast.Variable:
		return &Variable{Kind: KindVariable, Name: name(v.Raw)}
	case ast.IntValue:
		return &ScalarValue{Kind: KindIntValue, Value: v.Raw}
	case ast.FloatValue:
		return &ScalarValue{Kind: KindFloatValue, Value: v.Raw}
	case ast.EnumValue:
		return &ScalarValue{Kind: KindEnumValue, Value: v.Raw}
	case ast.StringValue:
		return &StringValue{Kind: KindStringValue, Value: v.Raw}
	case ast.BlockValue:
		return &StringValue{Kind: KindStringValue, Value: v.Raw, Block: true}
	case ast.BooleanValue:
		return &BooleanValue{Kind: KindBooleanValue, Value: v.Raw == "true"}
	case ast.NullValue:
		return &NullValue{Kind: KindNullValue}
	case ast.ListValue:
		lv := &ListValue{Kind: KindListValue, Values: make([]Node, 0, len(v.Children))}
		for _, c := range v.Children {
			lv.Values = append(lv.Values, convertValue(c.Value))
		}
		return lv
	case ast.ObjectValue:
		ov := &ObjectValue{Kind: KindObjectValue, Fields: make([]*ObjectField, 0, len(v.Children))}
		for _, c := range v.Children {
			ov.Fields = append(ov.Fields, &ObjectField{Kind: KindObjectField, Name: name(c.Name), Value: convertValue(c.Value)})
		}
		return ov
	}
	return &NullValue{Kind: KindNullValue}
}
