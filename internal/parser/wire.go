// Package parser implements procedure.DocLoader for on-disk procedure
// files (spec.md §6's "Procedure file format"): JSON and YAML
// serializations of the same tree ("Procedure" root, RegisterType/
// Plugin/Workspace preamble children, one or more instructions), plus
// the file-system-backed loader cmd front ends hand to a
// procedure.Store.
package parser

import (
	"github.com/lyzr/sequencer/internal/procedure"
)

// wireVariable is one Workspace child in the on-disk tree.
type wireVariable struct {
	Name  string            `json:"name" yaml:"name"`
	Type  string            `json:"type" yaml:"type"`
	Kind  string            `json:"kind" yaml:"kind"`
	Attrs map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// wireRegisterType is one preamble RegisterType child.
type wireRegisterType struct {
	JSONFile string `json:"jsonfile,omitempty" yaml:"jsonfile,omitempty"`
	JSONType string `json:"jsontype,omitempty" yaml:"jsontype,omitempty"`
}

// wireInstruction is one instruction-tree node in the on-disk tree.
type wireInstruction struct {
	Kind     string            `json:"kind" yaml:"kind"`
	Attrs    map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children []wireInstruction `json:"children,omitempty" yaml:"children,omitempty"`
}

// wireDoc is the on-disk "Procedure" root element.
type wireDoc struct {
	Attrs         map[string]string  `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	RegisterTypes []wireRegisterType `json:"registerTypes,omitempty" yaml:"registerTypes,omitempty"`
	Plugins       []string           `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	Workspace     []wireVariable     `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	Instructions  []wireInstruction  `json:"instructions" yaml:"instructions"`
}

func (wi wireInstruction) toDoc() procedure.InstructionDoc {
	children := make([]procedure.InstructionDoc, 0, len(wi.Children))
	for _, c := range wi.Children {
		children = append(children, c.toDoc())
	}
	return procedure.InstructionDoc{Kind: wi.Kind, Attrs: wi.Attrs, Children: children}
}

func (wd wireDoc) toDoc() procedure.Doc {
	regs := make([]procedure.RegisterTypeDoc, 0, len(wd.RegisterTypes))
	for _, rt := range wd.RegisterTypes {
		regs = append(regs, procedure.RegisterTypeDoc{JSONFile: rt.JSONFile, JSONType: rt.JSONType})
	}
	vars := make([]procedure.VariableDoc, 0, len(wd.Workspace))
	for _, v := range wd.Workspace {
		vars = append(vars, procedure.VariableDoc{Name: v.Name, Type: v.Type, Kind: v.Kind, Attrs: v.Attrs})
	}
	instrs := make([]procedure.InstructionDoc, 0, len(wd.Instructions))
	for _, i := range wd.Instructions {
		instrs = append(instrs, i.toDoc())
	}
	return procedure.Doc{
		Attrs:         wd.Attrs,
		RegisterTypes: regs,
		Plugins:       wd.Plugins,
		Workspace:     vars,
		Instructions:  instrs,
	}
}
