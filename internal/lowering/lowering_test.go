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

package lowering

import (
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/cloudwego/r600isel/internal/dag`
    `github.com/cloudwego/r600isel/internal/target`
    `github.com/cloudwego/r600isel/internal/utils`
)

func newTestLowering(gen target.Generation, sw int) (*dag.DAG, *Lowering) {
    g := dag.New()
    fn := target.NewFunction("test", sw)
    return g, New(g, fn, target.NewInfo(gen, 2), NewTable())
}

func reg(g *dag.DAG, n int64, vt dag.VT) dag.Value {
    return g.CopyFromReg(g.Entry(), n, vt)
}

func fp(g *dag.DAG, v float64) dag.Value {
    return g.ConstantFP(v, dag.F32)
}

func i32(g *dag.DAG, v int64) dag.Value {
    return g.Constant(v, dag.I32)
}

func requireInvariant(t *testing.T, fn func()) {
    t.Helper()
    defer func() {
        v := recover()
        _, ok := utils.AsInvariant(v)
        require.True(t, ok, "expected an invariant violation, got %v", v)
    }()
    fn()
}

func TestLowering_LegalizeUnknownOpcode(t *testing.T) {
    g, l := newTestLowering(target.R700, 1)
    add := g.Get(dag.OpAdd, dag.I32, reg(g, 1, dag.I32), reg(g, 2, dag.I32))
    requireInvariant(t, func() { l.Legalize(add) })
}

func TestLowering_CombineWithoutRule(t *testing.T) {
    g, l := newTestLowering(target.R700, 1)
    add := g.Get(dag.OpAdd, dag.I32, reg(g, 1, dag.I32), reg(g, 2, dag.I32))
    _, ok := l.Combine(add)
    require.False(t, ok)
}

func TestLowering_TableCoverage(t *testing.T) {
    tab := NewTable()
    for _, op := range []dag.Opcode {
        dag.OpSelectCC,
        dag.OpStore,
        dag.OpLoad,
        dag.OpFSin,
        dag.OpFCos,
        dag.OpFpToUint,
        dag.OpIntrinsicVoid,
        dag.OpIntrinsicWOChain,
    } {
        require.True(t, tab.Handles(op), op.String())
    }
    require.False(t, tab.Handles(dag.OpAdd))
}
