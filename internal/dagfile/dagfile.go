/*
 * Copyright 2022 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dagfile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cloudwego/r600isel/internal/dag"
	"github.com/cloudwego/r600isel/internal/machine"
	"github.com/cloudwego/r600isel/internal/target"
)

// EntryName refers to the entry token of the graph.
const EntryName = "entry"

// File is the textual form of one function: a graph of nodes in operand
// order, its roots, and optionally the selected instructions.
type File struct {
	Function   string       `yaml:"function"`
	StackWidth int          `yaml:"stackWidth,omitempty"`
	Nodes      []NodeSpec   `yaml:"nodes"`
	Roots      []string     `yaml:"roots"`
	Machine    *MachineSpec `yaml:"machine,omitempty"`
}

// NodeSpec describes one node. Arguments name earlier nodes, "name:1"
// selects the second result.
type NodeSpec struct {
	Name      string   `yaml:"name"`
	Op        string   `yaml:"op"`
	Types     []string `yaml:"types"`
	Args      []string `yaml:"args,omitempty"`
	Imm       int64    `yaml:"imm,omitempty"`
	Fp        float64  `yaml:"fp,omitempty"`
	Reg       string   `yaml:"reg,omitempty"`
	CC        string   `yaml:"cc,omitempty"`
	Intrinsic string   `yaml:"intrinsic,omitempty"`
	Mem       *MemSpec `yaml:"mem,omitempty"`
}

type MemSpec struct {
	Space   string `yaml:"space"`
	VT      string `yaml:"vt"`
	Ext     string `yaml:"ext,omitempty"`
	Trunc   bool   `yaml:"trunc,omitempty"`
	Indexed bool   `yaml:"indexed,omitempty"`
	Const   bool   `yaml:"const,omitempty"`
}

// MachineSpec lists the selected instructions of every block, one
// instruction per line in the form printed by machine.Instr.
type MachineSpec struct {
	LiveOuts []string   `yaml:"liveOuts,omitempty"`
	Blocks   [][]string `yaml:"blocks"`
}

// Program is a loaded function.
type Program struct {
	Function *target.Function
	DAG      *dag.DAG
	Roots    []dag.Value
	Names    map[string]dag.Value
	Machine  *machine.Func
}

// Load reads a function from a YAML file.
func Load(path string, stackWidth int) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, stackWidth)
}

// Parse builds a function from its YAML form. The stack width of the file,
// when present, takes precedence over stackWidth.
func Parse(data []byte, stackWidth int) (*Program, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return f.Build(stackWidth)
}

func (f *File) Build(stackWidth int) (*Program, error) {
	if f.StackWidth != 0 {
		stackWidth = f.StackWidth
	}
	if stackWidth != 1 && stackWidth != 2 && stackWidth != 4 {
		return nil, fmt.Errorf("invalid stack width %d", stackWidth)
	}
	if f.Function == "" {
		f.Function = "main"
	}

	p := &Program{
		Function: target.NewFunction(f.Function, stackWidth),
		DAG:      dag.New(),
		Names:    make(map[string]dag.Value),
	}

	/* nodes, in order */
	p.Names[EntryName] = p.DAG.Entry()
	for i := range f.Nodes {
		if err := p.addNode(&f.Nodes[i]); err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, f.Nodes[i].Name, err)
		}
	}

	/* roots */
	for _, r := range f.Roots {
		v, err := p.lookup(r)
		if err != nil {
			return nil, fmt.Errorf("root %s: %w", r, err)
		}
		p.Roots = append(p.Roots, v)
	}

	/* selected instructions */
	if f.Machine != nil {
		mf, err := buildMachine(p.Function, f.Machine)
		if err != nil {
			return nil, fmt.Errorf("machine: %w", err)
		}
		p.Machine = mf
	}
	return p, nil
}

func (p *Program) lookup(ref string) (dag.Value, error) {
	name, res := ref, 0
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		if _, err := fmt.Sscanf(ref[i+1:], "%d", &res); err != nil || res < 0 || res > 255 {
			return dag.Value{}, fmt.Errorf("invalid result number in %q", ref)
		}
		name = ref[:i]
	}

	v, ok := p.Names[name]
	if !ok {
		return dag.Value{}, fmt.Errorf("undefined node %q", name)
	}
	if res >= len(p.DAG.NodeOf(v).Types) {
		return dag.Value{}, fmt.Errorf("node %q has no result %d", name, res)
	}
	return dag.Value{ID: v.ID, Res: uint8(res)}, nil
}

func (p *Program) addNode(ns *NodeSpec) error {
	if ns.Name == "" || ns.Name == EntryName {
		return fmt.Errorf("invalid node name %q", ns.Name)
	}
	if _, ok := p.Names[ns.Name]; ok {
		return fmt.Errorf("duplicated node name %q", ns.Name)
	}

	op, ok := dag.ParseOpcode(ns.Op)
	if !ok {
		return fmt.Errorf("unknown opcode %q", ns.Op)
	}
	if len(ns.Types) == 0 {
		return fmt.Errorf("no result types")
	}

	n := dag.Node{Op: op, Imm: ns.Imm, Fp: ns.Fp}

	/* result types */
	for _, t := range ns.Types {
		vt, ok := dag.ParseVT(t)
		if !ok {
			return fmt.Errorf("unknown type %q", t)
		}
		n.Types = append(n.Types, vt)
	}

	/* operands */
	for _, a := range ns.Args {
		v, err := p.lookup(a)
		if err != nil {
			return err
		}
		n.Args = append(n.Args, v)
	}

	/* attributes */
	if err := ns.attributes(&n); err != nil {
		return err
	}

	/* constants are normalized to their type */
	switch {
	case op == dag.OpConstant && len(n.Types) == 1:
		p.Names[ns.Name] = p.DAG.Constant(n.Imm, n.Types[0])
	case op == dag.OpConstantFP && len(n.Types) == 1:
		p.Names[ns.Name] = p.DAG.ConstantFP(n.Fp, n.Types[0])
	default:
		p.Names[ns.Name] = p.DAG.Make(n)
	}
	return nil
}

func (ns *NodeSpec) attributes(n *dag.Node) error {
	if ns.Reg != "" {
		r, ok := target.ParseReg(ns.Reg)
		if !ok {
			return fmt.Errorf("invalid register %q", ns.Reg)
		}
		n.Imm = int64(r)
	}
	if ns.CC != "" {
		cc, ok := dag.ParseCondCode(ns.CC)
		if !ok {
			return fmt.Errorf("unknown condition code %q", ns.CC)
		}
		n.CC = cc
	}
	if ns.Intrinsic != "" {
		id, ok := dag.ParseIntrinsic(ns.Intrinsic)
		if !ok {
			return fmt.Errorf("unknown intrinsic %q", ns.Intrinsic)
		}
		n.Imm = int64(id)
	}
	if ns.Mem != nil {
		mem, err := ns.Mem.operand()
		if err != nil {
			return err
		}
		n.Mem = mem
	}
	return nil
}

func (ms *MemSpec) operand() (*dag.MemOperand, error) {
	as, ok := dag.ParseAddrSpace(ms.Space)
	if !ok {
		return nil, fmt.Errorf("unknown address space %q", ms.Space)
	}
	vt, ok := dag.ParseVT(ms.VT)
	if !ok {
		return nil, fmt.Errorf("unknown memory type %q", ms.VT)
	}
	ext, ok := dag.ParseExtKind(ms.Ext)
	if !ok {
		return nil, fmt.Errorf("unknown extension %q", ms.Ext)
	}
	return &dag.MemOperand{
		Space:    as,
		MemVT:    vt,
		Ext:      ext,
		Trunc:    ms.Trunc,
		Indexed:  ms.Indexed,
		ConstSrc: ms.Const,
	}, nil
}
