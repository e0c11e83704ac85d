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

package dag

import (
    `testing`

    `github.com/davecgh/go-spew/spew`
    `github.com/stretchr/testify/require`
)

func TestDAG_HashConsing(t *testing.T) {
    g := New()
    x := g.CopyFromReg(g.Entry(), 1, I32)
    a := g.Get(OpMul, I32, x, x)
    b := g.Get(OpMul, I32, x, x)
    require.Equal(t, a, b)
    require.NotEqual(t, a, g.Get(OpMul, I64, x, x))

    /* memory operands take part in the identity */
    p := g.Load(I32, g.Entry(), x, MemOperand { Space: Global, MemVT: I32 })
    q := g.Load(I32, g.Entry(), x, MemOperand { Space: Local, MemVT: I32 })
    require.NotEqual(t, p, q, spew.Sdump(g.NodeOf(p), g.NodeOf(q)))
}

func TestDAG_ConstantFolding(t *testing.T) {
    g := New()
    x := g.CopyFromReg(g.Entry(), 1, I32)
    require.Equal(t, g.Constant(5, I32), g.Get(OpAdd, I32, g.Constant(2, I32), g.Constant(3, I32)))
    require.Equal(t, g.Constant(-1, I8), g.Constant(255, I8))
    require.Equal(t, g.Constant(0x7f, I8), g.Get(OpSrl, I8, g.Constant(-1, I8), g.Constant(1, I8)))

    /* zero identities */
    require.Equal(t, x, g.Get(OpAdd, I32, x, g.Constant(0, I32)))
    require.Equal(t, x, g.Get(OpOr, I32, g.Constant(0, I32), x))
    require.NotEqual(t, x, g.Get(OpSub, I32, g.Constant(0, I32), x))

    /* floating point stays untouched */
    f := g.CopyFromReg(g.Entry(), 2, F32)
    require.Equal(t, OpFAdd, g.Op(g.Get(OpFAdd, F32, f, g.ConstantFP(0, F32))))
}

func TestDAG_ReplaceAndResolve(t *testing.T) {
    g := New()
    x := g.CopyFromReg(g.Entry(), 1, I32)
    y := g.CopyFromReg(g.Entry(), 2, I32)
    m := g.Get(OpMul, I32, x, y)
    u := g.Get(OpSub, I32, m, x)

    /* readers see the replacement */
    require.True(t, g.Replace(m, y))
    require.False(t, g.Replace(m, y))
    require.True(t, g.IsReplaced(m.ID))
    require.Equal(t, y, g.Resolve(m))
    require.Equal(t, []Value { y, x }, g.Args(u))

    /* chains of redirects */
    require.True(t, g.Replace(y, x))
    require.Equal(t, x, g.Resolve(m))
    require.Equal(t, OpCopyFromReg, g.Op(m))
}

func TestDAG_Results(t *testing.T) {
    g := New()
    x := g.CopyFromReg(g.Entry(), 1, I32)
    ld := g.Load(F32, g.Entry(), x, MemOperand { Space: Global, MemVT: F32 })
    require.Equal(t, []Value { ld, { ID: ld.ID, Res: 1 } }, g.Results(ld))
    require.Equal(t, Other, g.TypeOf(Value { ID: ld.ID, Res: 1 }))

    /* merged values are transparent */
    mv := g.MergeValues(x, Value { ID: ld.ID, Res: 1 })
    require.Equal(t, []Value { x, { ID: ld.ID, Res: 1 } }, g.Results(mv))
    require.Panics(t, func() { g.TypeOf(Value { ID: x.ID, Res: 2 }) })
}

func TestDAG_Bitcast(t *testing.T) {
    g := New()
    require.Equal(t, g.ConstantFP(1.0, F32), g.Bitcast(F32, g.Constant(0x3f800000, I32)))
    require.Equal(t, g.Constant(0x3f000000, I32), g.Bitcast(I32, g.ConstantFP(0.5, F32)))
    require.Equal(t, g.Undef(V4I32), g.Bitcast(V4I32, g.Undef(V4F32)))

    /* nested casts collapse */
    v := g.CopyFromReg(g.Entry(), 1, V4F32)
    require.Equal(t, v, g.Bitcast(V4F32, g.Bitcast(V4I32, v)))
}

func TestDAG_WalkAndDump(t *testing.T) {
    g := New()
    x := g.CopyFromReg(g.Entry(), 1, I32)
    c := g.Constant(7, I32)
    add := g.Get(OpAdd, I32, x, c)
    require.Equal(t, []NodeID { 1, 2, 3, 4 }, g.Walk(add))
    require.Equal(t, "t1: ch = EntryToken\n" +
        "t2: i32,ch = CopyFromReg<%1> t1\n" +
        "t3: i32 = Constant<7>\n" +
        "t4: i32 = add t2, t3", g.Dump(add))

    /* replaced nodes are skipped */
    g.Replace(add, x)
    require.Equal(t, []NodeID { 1, 2 }, g.Walk(add))
}

func TestCondCode_InverseAndSwap(t *testing.T) {
    require.Equal(t, SETLE, SETGT.Inverse(true))
    require.Equal(t, SETNE, SETEQ.Inverse(true))
    require.Equal(t, SETULE, SETOGT.Inverse(false))
    require.Equal(t, SETUNE, SETOEQ.Inverse(false))
    require.Equal(t, SETGT, SETLT.Swapped())
    require.Equal(t, SETOGE, SETOLE.Swapped())
    require.Equal(t, SETEQ, SETEQ.Swapped())
    require.True(t, SETUNE.IsNotEqual())
    require.False(t, SETUEQ.IsNotEqual())

    /* names round trip */
    for cc := SETFALSE; cc <= SETTRUE2; cc++ {
        v, ok := ParseCondCode(cc.String())
        require.True(t, ok)
        require.Equal(t, cc, v)
    }
}

func TestVT_Properties(t *testing.T) {
    require.Equal(t, 4, V4F32.Lanes())
    require.Equal(t, F32, V4F32.Elem())
    require.Equal(t, V2I32, VectorOf(I32, 2))
    require.Equal(t, int64(0xffff), I16.Mask())
    require.True(t, V4I32.IsInteger())
    require.False(t, V4I32.IsFloat())
    require.Panics(t, func() { VectorOf(F64, 4) })
}
