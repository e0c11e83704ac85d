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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/r600isel/internal/dag"
	"github.com/cloudwego/r600isel/internal/machine"
	"github.com/cloudwego/r600isel/internal/target"
)

const shaderYAML = `
function: shader
nodes:
  - { name: idx, op: Constant, types: [i32], imm: 4 }
  - { name: in,  op: INTRINSIC_WO_CHAIN, types: [f32], intrinsic: load_input, args: [idx] }
  - { name: sin, op: fsin, types: [f32], args: [in] }
  - { name: out, op: INTRINSIC_VOID, types: [ch], intrinsic: store_output, args: [entry, sin, idx] }
  - { name: ptr, op: CopyFromReg, types: [i32, ch], reg: "%3", args: [entry] }
  - name: ld
    op: load
    types: [i32, ch]
    args: [entry, ptr]
    mem: { space: global, vt: i8, ext: sextload }
  - { name: chain, op: TokenFactor, types: [ch], args: [out, "ld:1"] }
roots: [chain]
machine:
  liveOuts: [T1.X]
  blocks:
    - - FNEG_R600 def %1, %0
      - ADD def %2, %1, killed %0
      - BRANCH_COND_f32 bb.1, %2
    - - MOV_IMM_F32 def %3, 0.5f
      - RETURN
`

func TestParse_Graph(t *testing.T) {
	p, err := Parse([]byte(shaderYAML), 1)
	require.NoError(t, err)
	require.Equal(t, "shader", p.Function.Name)
	require.Equal(t, 1, p.Function.StackWidth)
	require.Len(t, p.Roots, 1)

	/* named nodes */
	g := p.DAG
	require.Equal(t, dag.OpTokenFactor, g.Op(p.Roots[0]))
	require.Equal(t, dag.Value{ID: p.Names["ld"].ID, Res: 1}, g.Arg(p.Roots[0], 1))
	require.Equal(t, int64(target.Virtual(3)), g.NodeOf(p.Names["ptr"]).Imm)
	require.Equal(t, dag.IntrinsicStoreOutput, g.NodeOf(p.Names["out"]).Intrinsic())

	/* memory operands */
	mem := g.NodeOf(p.Names["ld"]).Mem
	require.Equal(t, dag.Global, mem.Space)
	require.Equal(t, dag.I8, mem.MemVT)
	require.Equal(t, dag.SExt, mem.Ext)
}

func TestParse_Machine(t *testing.T) {
	p, err := Parse([]byte(shaderYAML), 1)
	require.NoError(t, err)
	mf := p.Machine
	require.NotNil(t, mf)
	require.Len(t, mf.Blocks, 2)
	require.Equal(t, []target.Reg{target.T(1, 0)}, p.Function.LiveOuts)

	/* operands in every form */
	bb := mf.Blocks[0]
	require.Equal(t, machine.NewInstr(machine.OP_FNEG_R600, machine.Def(target.Virtual(1)), machine.Use(target.Virtual(0))), bb.Instrs[0])
	require.Equal(t, machine.Kill(target.Virtual(0)), bb.Instrs[1].Ops[2])
	require.Equal(t, machine.Block(1), bb.Instrs[2].Ops[0])
	require.Equal(t, machine.FPImm(0.5), mf.Blocks[1].Instrs[0].Ops[1])
	require.Empty(t, mf.Blocks[1].Instrs[1].Ops)

	/* fresh registers do not collide */
	require.Equal(t, target.Virtual(4), mf.NewVReg())
}

func TestParseInstr_RoundTrip(t *testing.T) {
	info := machine.NewInstrInfo(2)
	mi := info.DefaultInstr(machine.OP_ADD, target.Virtual(2), target.ALU_CONST, target.T(3, 2))
	info.SetImmOperand(mi, machine.NameLiteral, -17)
	v, err := ParseInstr(mi.String())
	require.NoError(t, err)
	require.Equal(t, mi, v)
}

func TestParse_Errors(t *testing.T) {
	tests := []string{
		"nodes: [{ name: a, op: nope, types: [i32] }]",
		"nodes: [{ name: a, op: add, types: [] }]",
		"nodes: [{ name: a, op: add, types: [i32], args: [b] }]",
		"nodes: [{ name: a, op: add, types: [i99] }]",
		"nodes: [{ name: entry, op: undef, types: [i32] }]",
		"nodes: [{ name: a, op: undef, types: [i32] }, { name: a, op: undef, types: [f32] }]",
		"nodes: [{ name: a, op: CopyFromReg, types: [i32, ch], reg: T9.Q, args: [entry] }]",
		"nodes: [{ name: a, op: undef, types: [i32] }]\nroots: [\"a:1\"]",
		"nodes: [{ name: a, op: setcc, types: [i1], cc: setmaybe }]",
		"nodes: [{ name: a, op: load, types: [i32, ch], mem: { space: heap, vt: i32 } }]",
		"machine: { blocks: [[ \"FOO def %1\" ]] }",
		"machine: { blocks: [[ \"MOV def %1, T1\" ]] }",
		"stackWidth: 3",
		"nodes: [",
		"nodes: 5",
	}
	for _, src := range tests {
		_, err := Parse([]byte(src), 1)
		require.Error(t, err, src)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shaderYAML), 0o644))
	p, err := Load(path, 4)
	require.NoError(t, err)
	require.Equal(t, 4, p.Function.StackWidth)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), 1)
	require.Error(t, err)
}
