package sema

import (
	"strings"

	"nesc/internal/analyze"
	"nesc/internal/ast"
	"nesc/internal/binding"
	"nesc/internal/diag"
	"nesc/internal/tags"
	"nesc/internal/types"
)

func (r *resolver) builtinTypes() map[string]types.TypeID {
	m := map[string]types.TypeID{
		"void": r.in.Void,
		"int":  r.in.Int,
	}
	for _, name := range []string{
		"char", "short", "long", "signed", "unsigned", "long long",
		"unsigned char", "unsigned short", "unsigned int", "unsigned long",
		"signed char", "short int", "long int", "unsigned long long",
	} {
		m[name] = r.in.Scalar(types.KindInt, name)
	}
	for _, name := range types.IntTypedefs {
		m[name] = r.in.Scalar(types.KindInt, name)
	}
	m["bool"] = r.in.Scalar(types.KindBool, "bool")
	m["float"] = r.in.Scalar(types.KindFloat, "float")
	m["double"] = r.in.Scalar(types.KindFloat, "double")
	m["message_t"] = r.in.Aggregate(types.KindStruct, "message_t", nil)
	return m
}

// specInfo is what a declaration-specifier list contributes.
type specInfo struct {
	base    types.TypeID
	typedef bool
	fnKind  tags.Tag // Command, Event or Task
	async   bool
}

var intWords = map[string]bool{"unsigned": true, "signed": true, "short": true, "long": true, "int": true, "char": true}

func (r *resolver) specsOf(id ast.NodeID) specInfo {
	info := specInfo{}
	var words []ast.NodeID
	for _, c := range r.tree.Children(id) {
		switch r.tree.Kind(c) {
		case ast.KindModifier:
			r.enter(c)
			switch r.tree.Name(c) {
			case "typedef":
				info.typedef = true
			case "command":
				info.fnKind = tags.Command
			case "event":
				info.fnKind = tags.Event
			case "task":
				info.fnKind = tags.Task
			case "async":
				info.async = true
			}
		case ast.KindTypeName:
			r.enter(c)
			words = append(words, c)
		case ast.KindStructSpec:
			r.enter(c)
			info.base = r.structType(c)
		case ast.KindEnumSpec:
			r.enter(c)
			info.base = r.enumType(c)
		case ast.KindAttribute:
			r.resolve(c)
		}
	}
	if len(words) > 0 {
		info.base = r.typeName(words)
	}
	if !info.base.IsValid() {
		info.base = r.in.Int
	}
	return info
}

// typeName resolves a run of type-name words such as "unsigned long".
func (r *resolver) typeName(words []ast.NodeID) types.TypeID {
	parts := make([]string, len(words))
	allInt := true
	for i, w := range words {
		parts[i] = r.tree.Name(w)
		allInt = allInt && intWords[parts[i]]
	}
	spelled := strings.Join(parts, " ")
	if ty, ok := r.base[spelled]; ok {
		return ty
	}
	if allInt {
		return r.in.Scalar(types.KindInt, spelled)
	}
	last := words[len(words)-1]
	if bid, ok := r.st.Lookup(parts[len(parts)-1]); ok {
		if b, _ := r.bs.Get(bid); b.Namespace == binding.NSType {
			r.bs.Refer(last, bid)
			r.tree.Tag(last, tags.Reference, tags.TypeTag)
			return b.Type
		}
	}
	r.tree.Tag(last, tags.Unresolved)
	r.st.Warnf(diag.SemaUnknownType, r.tree.Span(last), "unknown type name %q", spelled).Emit()
	return r.in.Unknown
}

// structType resolves "struct|union [tag] [{ fields }]".
func (r *resolver) structType(id ast.NodeID) types.TypeID {
	kind := types.KindStruct
	if r.tree.Op(id) == "union" {
		kind = types.KindUnion
	}
	var tagID, fieldsID ast.NodeID
	for _, c := range r.tree.Children(id) {
		switch r.tree.Kind(c) {
		case ast.KindIdent:
			tagID = c
		case ast.KindFieldList:
			fieldsID = c
		}
	}
	r.enter(tagID)
	name := r.tree.Name(tagID)
	key := r.tree.Op(id) + " " + name

	if !fieldsID.IsValid() && name != "" {
		r.tree.Tag(tagID, tags.Reference, tags.TypeTag)
		if bid, ok := r.st.Lookup(key); ok {
			b, _ := r.bs.Get(bid)
			r.bs.Refer(tagID, bid)
			r.tree.SetType(id, b.Type)
			return b.Type
		}
	}

	ty := r.in.Aggregate(kind, name, nil)
	if name != "" {
		if fieldsID.IsValid() {
			r.tree.Tag(tagID, tags.Declaration, tags.Definition, tags.TypeTag)
		}
		bid := r.bs.Declare(binding.Binding{
			Namespace: binding.NSType,
			Decl:      r.ident(tagID),
			Global:    key,
			Unit:      r.unitName(),
			Scope:     r.st.ScopeKind(),
			Type:      ty,
		})
		r.st.Declare(key, bid)
	}
	if fieldsID.IsValid() {
		r.enter(fieldsID)
		r.st.With(analyze.InStruct, func() {
			r.in.SetFields(ty, r.fields(fieldsID))
		})
	}
	r.tree.SetType(id, ty)
	return ty
}

// enumType resolves "enum [tag] [{ A, B = 2 }]". Enumerators are constants
// of the enclosing scope.
func (r *resolver) enumType(id ast.NodeID) types.TypeID {
	var tagID, listID ast.NodeID
	for _, c := range r.tree.Children(id) {
		switch r.tree.Kind(c) {
		case ast.KindIdent:
			tagID = c
		case ast.KindEnumeratorList:
			listID = c
		}
	}
	r.enter(tagID)
	name := r.tree.Name(tagID)
	key := "enum " + name

	if !listID.IsValid() && name != "" {
		r.tree.Tag(tagID, tags.Reference, tags.TypeTag)
		if bid, ok := r.st.Lookup(key); ok {
			b, _ := r.bs.Get(bid)
			r.bs.Refer(tagID, bid)
			r.tree.SetType(id, b.Type)
			return b.Type
		}
	}

	ty := r.in.Enum(name)
	if name != "" {
		if listID.IsValid() {
			r.tree.Tag(tagID, tags.Declaration, tags.Definition, tags.TypeTag)
		}
		bid := r.bs.Declare(binding.Binding{
			Namespace: binding.NSType,
			Decl:      r.ident(tagID),
			Global:    key,
			Unit:      r.unitName(),
			Scope:     r.st.ScopeKind(),
			Type:      ty,
		})
		r.st.Declare(key, bid)
	}
	if listID.IsValid() {
		r.enter(listID)
		for _, e := range r.tree.Children(listID) {
			r.enter(e)
			nameID, valueID := r.tree.Child(e, 0), r.tree.Child(e, 1)
			if valueID.IsValid() {
				r.resolve(valueID)
			}
			r.declareName(declResult{name: nameID, ty: ty}, specInfo{base: ty}, true)
			r.tree.Tag(nameID, tags.Constant)
		}
	}
	r.tree.SetType(id, ty)
	return ty
}

func (r *resolver) fields(list ast.NodeID) []types.Field {
	var out []types.Field
	for _, declID := range r.tree.Children(list) {
		r.enter(declID)
		specsID, initsID := r.tree.Child(declID, 0), r.tree.Child(declID, 1)
		r.enter(specsID)
		info := r.specsOf(specsID)
		if !initsID.IsValid() {
			continue
		}
		r.enter(initsID)
		for _, d := range r.tree.Children(initsID) {
			r.enter(d)
			res := r.declarator(r.tree.Child(d, 0), info.base)
			for _, extra := range r.tree.Children(d)[1:] {
				r.resolve(extra)
			}
			r.tree.Tag(res.name, tags.Declaration, tags.Field)
			out = append(out, types.Field{Name: r.tree.Name(res.name), Type: res.ty})
		}
	}
	return out
}

func (r *resolver) declaration(id ast.NodeID) {
	specsID, initsID := r.tree.Child(id, 0), r.tree.Child(id, 1)
	r.enter(specsID)
	info := r.specsOf(specsID)
	r.tree.Tag(id, tags.Declaration)
	if !initsID.IsValid() {
		return
	}
	r.enter(initsID)
	for _, d := range r.tree.Children(initsID) {
		r.enter(d)
		r.initDeclarator(d, info)
	}
}

func (r *resolver) initDeclarator(id ast.NodeID, info specInfo) {
	children := r.tree.Children(id)
	res := r.declarator(children[0], info.base)
	r.declareName(res, info, false)
	for _, c := range children[1:] {
		if r.tree.Kind(c) == ast.KindAttribute {
			r.resolve(c)
			continue
		}
		r.tree.Tag(c, tags.Initializer)
		r.st.With(analyze.InInitializer, func() {
			r.st.WithExpected(res.ty, func() { r.resolve(c) })
		})
	}
}

type param struct {
	name ast.NodeID
	ty   types.TypeID
}

type declResult struct {
	name   ast.NodeID // Ident or QualifiedName
	ty     types.TypeID
	fn     bool
	params []param
}

// declarator computes the declared type. Suffix contents are resolved left
// to right; the type is then built inside out as C reads it.
func (r *resolver) declarator(id ast.NodeID, base types.TypeID) declResult {
	r.enter(id)
	children := r.tree.Children(id)
	res := declResult{name: children[0]}
	ty := base
	for i := int64(0); i < r.tree.Get(id).Value; i++ {
		ty = r.in.Pointer(ty)
	}

	type suffix struct {
		array  bool
		n      int
		params []param
	}
	suffixes := make([]suffix, 0, len(children)-1)
	for _, s := range children[1:] {
		r.enter(s)
		switch r.tree.Kind(s) {
		case ast.KindArraySuffix:
			n := -1
			if size := r.tree.Child(s, 0); size.IsValid() {
				r.resolve(size)
				if r.tree.Kind(size) == ast.KindIntLit {
					n = int(r.tree.Get(size).Value)
				}
			}
			suffixes = append(suffixes, suffix{array: true, n: n})
		case ast.KindParamList:
			suffixes = append(suffixes, suffix{params: r.params(s)})
		}
	}
	for i := len(suffixes) - 1; i >= 0; i-- {
		s := suffixes[i]
		if s.array {
			ty = r.in.Array(ty, s.n)
			continue
		}
		pts := make([]types.TypeID, len(s.params))
		for j, p := range s.params {
			pts[j] = p.ty
		}
		ty = r.in.Function(ty, pts)
	}
	if len(suffixes) > 0 && !suffixes[0].array {
		res.fn = true
		res.params = suffixes[0].params
	}
	res.ty = ty
	r.tree.SetType(id, ty)
	return res
}

func (r *resolver) params(list ast.NodeID) []param {
	var out []param
	r.st.With(analyze.InParameterList, func() {
		for _, p := range r.tree.Children(list) {
			r.enter(p)
			specsID, declID := r.tree.Child(p, 0), r.tree.Child(p, 1)
			r.enter(specsID)
			info := r.specsOf(specsID)
			if !declID.IsValid() {
				if info.base == r.in.Void {
					continue
				}
				out = append(out, param{ty: info.base})
				continue
			}
			res := r.declarator(declID, info.base)
			r.tree.Tag(res.name, tags.Declaration, tags.Variable, tags.Parameter)
			out = append(out, param{name: res.name, ty: res.ty})
		}
	})
	return out
}

// declareName binds the declarator's name in the current scope and in the
// unit tables.
func (r *resolver) declareName(res declResult, info specInfo, definition bool) binding.BindingID {
	ns := binding.NSVariable
	kindTag := tags.Variable
	switch {
	case info.typedef:
		ns, kindTag = binding.NSType, tags.TypeTag
	case res.fn:
		ns, kindTag = binding.NSFunction, tags.Function
	}

	nameID := res.name
	decl := r.ident(nameID)
	global := decl.Name
	qualified := r.tree.Kind(nameID) == ast.KindQualifiedName
	if qualified {
		r.enter(nameID)
		ifaceID, memberID := r.tree.Child(nameID, 0), r.tree.Child(nameID, 1)
		r.enter(ifaceID)
		r.enter(memberID)
		r.qualifier(ifaceID)
		decl = r.ident(memberID)
		global = r.tree.Name(ifaceID) + "." + decl.Name
		nameID = memberID
	} else {
		r.enter(nameID)
	}

	r.tree.Tag(nameID, tags.Declaration, kindTag)
	if definition {
		r.tree.Tag(nameID, tags.Definition)
	}
	if info.fnKind.IsValid() {
		r.tree.Tag(nameID, info.fnKind)
	}
	if r.dir.IsValid() {
		r.tree.Tag(nameID, r.dir)
	}
	scope := r.st.ScopeKind()
	if scope == binding.ScopeFile {
		r.tree.Tag(nameID, tags.Global)
	} else if ns == binding.NSVariable {
		r.tree.Tag(nameID, tags.Local)
	}

	if !qualified {
		if prevID, here := r.st.DeclaredHere(decl.Name); here {
			prev, _ := r.bs.Get(prevID)
			if prev.Namespace == binding.NSFunction && ns == binding.NSFunction {
				r.bs.Refer(nameID, prevID)
				return prevID
			}
			r.st.Errorf(diag.SemaDuplicateSymbol, decl.Span, "redeclaration of %q", decl.Name).
				WithNote(prev.Decl.Span, "previous declaration").
				Emit()
		} else if r.st.Shadows(decl.Name) && (scope == binding.ScopeFunction || scope == binding.ScopeBlock) {
			r.st.Warnf(diag.SemaShadowSymbol, decl.Span, "declaration of %q shadows an outer declaration", decl.Name).Emit()
		}
	}

	bid := r.bs.Declare(binding.Binding{
		Namespace: ns,
		Decl:      decl,
		Global:    global,
		Unit:      r.unitName(),
		Scope:     scope,
		Type:      res.ty,
	})
	if !qualified {
		r.st.Declare(decl.Name, bid)
	}
	if r.unit != nil && r.st.Active(analyze.InImplementation) {
		switch ns {
		case binding.NSVariable:
			r.unit.ImplementationVariables().Put(decl, global)
		case binding.NSFunction:
			r.unit.Functions().Put(decl, global)
		}
	}
	return bid
}

// qualifier resolves the interface part of "Iface.member".
func (r *resolver) qualifier(ifaceID ast.NodeID) {
	r.tree.Tag(ifaceID, tags.Reference, tags.Interface)
	name := r.tree.Name(ifaceID)
	if r.unit == nil {
		return
	}
	if local, ok := binding.ExistsLocalName(r.unit.InterfaceLocalNames(), name); ok {
		r.referLocal(ifaceID, local)
		return
	}
	r.tree.Tag(ifaceID, tags.Unresolved)
	r.st.Errorf(diag.SemaUnknownInterface, r.tree.Span(ifaceID), "%s has no interface %q in its specification", r.unitName(), name).Emit()
}

func (r *resolver) functionDef(id ast.NodeID) {
	specsID, declID, bodyID := r.tree.Child(id, 0), r.tree.Child(id, 1), r.tree.Child(id, 2)
	r.enter(specsID)
	info := r.specsOf(specsID)
	res := r.declarator(declID, info.base)
	res.fn = true
	r.declareName(res, info, true)
	r.tree.Tag(id, tags.Definition, tags.Function)
	if info.fnKind.IsValid() {
		r.tree.Tag(id, info.fnKind)
	}

	r.st.With(analyze.InFunctionBody, func() {
		r.st.WithScope(binding.ScopeFunction, func() {
			for _, p := range res.params {
				if !p.name.IsValid() {
					continue
				}
				r.declareParam(p)
			}
			r.enter(bodyID)
			r.children(bodyID)
		})
	})
}

func (r *resolver) declareParam(p param) {
	decl := r.ident(p.name)
	if prevID, here := r.st.DeclaredHere(decl.Name); here {
		prev, _ := r.bs.Get(prevID)
		r.st.Errorf(diag.SemaDuplicateSymbol, decl.Span, "duplicate parameter %q", decl.Name).
			WithNote(prev.Decl.Span, "previous parameter").
			Emit()
		return
	}
	bid := r.bs.Declare(binding.Binding{
		Namespace: binding.NSVariable,
		Decl:      decl,
		Global:    decl.Name,
		Unit:      r.unitName(),
		Scope:     binding.ScopeFunction,
		Type:      p.ty,
	})
	r.st.Declare(decl.Name, bid)
	if r.unit != nil && r.st.Active(analyze.InImplementation) {
		r.unit.ImplementationVariables().Put(decl, decl.Name)
	}
}

func (r *resolver) attribute(id ast.NodeID) {
	r.st.With(analyze.InAttribute, func() {
		nameID := r.tree.Child(id, 0)
		r.enter(nameID)
		r.tree.Tag(nameID, tags.Reference, tags.Attribute)
		r.tree.Tag(id, tags.Attribute)
		for _, c := range r.tree.Children(id)[1:] {
			r.resolve(c)
		}
	})
}
