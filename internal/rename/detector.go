package rename

import (
	"nesc/internal/binding"
	"nesc/internal/diag"
	"nesc/internal/source"
)

// Detector finds the local names a rename would collide with. Checks only
// append to the caller's Status; an old name that is not declared in the
// unit is silently ignored.
type Detector struct{}

// ComponentRename checks renaming the component-local name oldName of a
// configuration against its component and interface local names.
func (d Detector) ComponentRename(cfg binding.ConfigurationAnalyzer, file source.FileID, oldName, newName string, st *Status) {
	toRename, ok := binding.ExistsLocalName(cfg.ComponentLocalNames(), oldName)
	if !ok {
		return
	}
	d.configurationScope(cfg, file, toRename, newName, st)
}

// InterfaceRename checks renaming the interface-local name oldName of a
// configuration against its component and interface local names.
func (d Detector) InterfaceRename(cfg binding.ConfigurationAnalyzer, file source.FileID, oldName, newName string, st *Status) {
	toRename, ok := binding.ExistsLocalName(cfg.InterfaceLocalNames(), oldName)
	if !ok {
		return
	}
	d.configurationScope(cfg, file, toRename, newName, st)
}

func (d Detector) configurationScope(cfg binding.ConfigurationAnalyzer, file source.FileID, toRename binding.Identifier, newName string, st *Status) {
	d.NewNameWithLocalComponentNameIdent(cfg, file, toRename, newName, st)
	d.NewNameWithLocalInterfaceName(cfg, file, toRename, newName, st)
}

// NewNameWithLocalComponentName checks newName against the component-local
// names of cfg, provided oldName is one of them.
func (d Detector) NewNameWithLocalComponentName(cfg binding.ConfigurationAnalyzer, file source.FileID, oldName, newName string, st *Status) {
	toRename, ok := binding.ExistsLocalName(cfg.ComponentLocalNames(), oldName)
	if !ok {
		return
	}
	d.NewNameWithLocalComponentNameIdent(cfg, file, toRename, newName, st)
}

func (d Detector) NewNameWithLocalComponentNameIdent(cfg binding.ConfigurationAnalyzer, file source.FileID, toRename binding.Identifier, newName string, st *Status) {
	if !toRename.IsValid() {
		return
	}
	check(cfg.ComponentLocalNames(), file, toRename, newName, st)
}

// NewInterfaceNameWithLocalInterfaceName checks newName against the
// interface-local names of comp, provided oldName is one of them.
func (d Detector) NewInterfaceNameWithLocalInterfaceName(comp binding.ComponentAnalyzer, file source.FileID, oldName, newName string, st *Status) {
	toRename, ok := binding.ExistsLocalName(comp.InterfaceLocalNames(), oldName)
	if !ok {
		return
	}
	d.NewNameWithLocalInterfaceName(comp, file, toRename, newName, st)
}

func (d Detector) NewNameWithLocalInterfaceName(comp binding.ComponentAnalyzer, file source.FileID, toRename binding.Identifier, newName string, st *Status) {
	if !toRename.IsValid() {
		return
	}
	check(comp.InterfaceLocalNames(), file, toRename, newName, st)
}

// VariableRename checks renaming an implementation variable of a module
// against the other implementation variables.
func (d Detector) VariableRename(mod binding.ModuleAnalyzer, file source.FileID, oldName, newName string, st *Status) {
	toRename, ok := binding.ExistsLocalName(mod.ImplementationVariables(), oldName)
	if !ok {
		return
	}
	check(mod.ImplementationVariables(), file, toRename, newName, st)
}

func check(table *binding.Table, file source.FileID, toRename binding.Identifier, newName string, st *Status) {
	sameName, ok := binding.ExistsLocalName(table, newName)
	if !ok || sameName.Span == toRename.Span {
		return
	}
	addCollision(toRename, sameName, file, st)
}

// addCollision records the linked pair of messages for one collision.
func addCollision(toRename, sameName binding.Identifier, file source.FileID, st *Status) {
	group := st.NewGroup()
	st.add(diag.SevError, diag.RenCollision,
		"You intended to rename the alias "+toRename.Name+" to "+sameName.Name,
		Context{File: file, Region: toRename.Region()}, group)
	st.add(diag.SevError, diag.RenCollisionTarget,
		"This would lead to a collision with this identifier: "+sameName.Name,
		Context{File: file, Region: sameName.Region()}, group)
}
