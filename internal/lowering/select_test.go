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
)

func TestSelect_NativeSetForm(t *testing.T) {
    g, l := newTestLowering(target.R700, 1)
    a, b := reg(g, 1, dag.F32), reg(g, 2, dag.F32)

    /* every legal f32 comparator is selected by one instruction */
    for cc := dag.SETOEQ; cc <= dag.SETUNE; cc++ {
        if !l.info.IsCondCodeLegal(cc, dag.F32) {
            continue
        }
        sel := g.SelectCC(dag.F32, a, b, fp(g, 1.0), fp(g, 0.0), cc)
        r, ok := l.Legalize(sel)
        require.True(t, ok)
        require.Equal(t, sel, r, cc.String())
    }

    /* and every legal i32 one, with the -1 / 0 sentinels */
    x, y := reg(g, 3, dag.I32), reg(g, 4, dag.I32)
    for cc := dag.SETEQ; cc <= dag.SETNE; cc++ {
        if !l.info.IsCondCodeLegal(cc, dag.I32) {
            continue
        }
        sel := g.SelectCC(dag.I32, x, y, i32(g, -1), i32(g, 0), cc)
        r, ok := l.Legalize(sel)
        require.True(t, ok)
        require.Equal(t, sel, r, cc.String())
        require.Equal(t, dag.OpSelectCC, g.Op(r))
    }
}

func TestSelect_InvertSentinels(t *testing.T) {
    g, l := newTestLowering(target.R700, 1)
    a, b := reg(g, 1, dag.F32), reg(g, 2, dag.F32)
    sel := g.SelectCC(dag.F32, a, b, fp(g, 0.0), fp(g, 1.0), dag.SETOEQ)
    r, ok := l.Legalize(sel)
    require.True(t, ok)
    require.Equal(t, g.SelectCC(dag.F32, a, b, fp(g, 1.0), fp(g, 0.0), dag.SETUNE), r)
}

func TestSelect_InvertAndSwapOperands(t *testing.T) {
    g, l := newTestLowering(target.R700, 1)
    x, y := reg(g, 1, dag.I32), reg(g, 2, dag.I32)

    /* setle is not native for i32, but setge with swapped operands is */
    sel := g.SelectCC(dag.I32, x, y, i32(g, 0), i32(g, -1), dag.SETGT)
    r, ok := l.Legalize(sel)
    require.True(t, ok)
    require.Equal(t, g.SelectCC(dag.I32, y, x, i32(g, -1), i32(g, 0), dag.SETGE), r)
}

func TestSelect_ZeroCompare(t *testing.T) {
    g, l := newTestLowering(target.R700, 1)
    a, b, c := reg(g, 1, dag.F32), reg(g, 2, dag.F32), reg(g, 3, dag.F32)

    /* already in CND form */
    sel := g.SelectCC(dag.F32, a, fp(g, 0.0), b, c, dag.SETOGE)
    r, ok := l.Legalize(sel)
    require.True(t, ok)
    require.Equal(t, sel, r)

    /* not-equal is selected through its inverse */
    sel = g.SelectCC(dag.F32, a, fp(g, 0.0), b, c, dag.SETUNE)
    r, ok = l.Legalize(sel)
    require.True(t, ok)
    require.Equal(t, g.SelectCC(dag.F32, a, fp(g, 0.0), c, b, dag.SETOEQ), r)

    /* zero on the left is moved to the right */
    sel = g.SelectCC(dag.F32, fp(g, 0.0), a, b, c, dag.SETOLT)
    r, ok = l.Legalize(sel)
    require.True(t, ok)
    require.Equal(t, g.SelectCC(dag.F32, a, fp(g, 0.0), b, c, dag.SETOGT), r)
}

func TestSelect_ZeroCompareReinterpretsValues(t *testing.T) {
    g, l := newTestLowering(target.R700, 1)
    x := reg(g, 1, dag.I32)
    a, b := reg(g, 2, dag.F32), reg(g, 3, dag.F32)
    sel := g.SelectCC(dag.F32, x, i32(g, 0), a, b, dag.SETGT)
    r, ok := l.Legalize(sel)
    require.True(t, ok)
    require.Equal(t, dag.OpBitcast, g.Op(r))
    require.Equal(t, dag.F32, g.TypeOf(r))

    /* the select itself runs on integers */
    in := g.Arg(r, 0)
    require.Equal(t, dag.OpSelectCC, g.Op(in))
    require.Equal(t, dag.I32, g.TypeOf(in))
    require.Equal(t, g.Bitcast(dag.I32, a), g.Arg(in, 2))
    require.Equal(t, g.Bitcast(dag.I32, b), g.Arg(in, 3))
}

func TestSelect_MinMax(t *testing.T) {
    g, l := newTestLowering(target.R700, 1)
    a, b := reg(g, 1, dag.F32), reg(g, 2, dag.F32)

    /* a > b ? a : b */
    r, ok := l.Legalize(g.SelectCC(dag.F32, a, b, a, b, dag.SETOGT))
    require.True(t, ok)
    require.Equal(t, g.Get(dag.OpFMaxLegacy, dag.F32, a, b), r)

    /* a < b ? b : a */
    r, ok = l.Legalize(g.SelectCC(dag.F32, a, b, b, a, dag.SETOLT))
    require.True(t, ok)
    require.Equal(t, g.Get(dag.OpFMaxLegacy, dag.F32, a, b), r)

    /* a < b ? a : b */
    r, ok = l.Legalize(g.SelectCC(dag.F32, a, b, a, b, dag.SETULT))
    require.True(t, ok)
    require.Equal(t, g.Get(dag.OpFMinLegacy, dag.F32, a, b), r)
}

func TestSelect_MinMaxDeclinesEquality(t *testing.T) {
    g, l := newTestLowering(target.R700, 1)
    a, b := reg(g, 1, dag.F32), reg(g, 2, dag.F32)
    _, ok := l.lowerMinMax(g.SelectCC(dag.F32, a, b, a, b, dag.SETOEQ))
    require.False(t, ok)
}

func TestSelect_TwoStepFallback(t *testing.T) {
    g, l := newTestLowering(target.R700, 1)
    x, y := reg(g, 1, dag.I32), reg(g, 2, dag.I32)
    p, q := reg(g, 3, dag.I32), reg(g, 4, dag.I32)
    r, ok := l.Legalize(g.SelectCC(dag.I32, x, y, p, q, dag.SETGT))
    require.True(t, ok)

    /* SET* producing the sentinels, then CND* on it */
    cond := g.SelectCC(dag.I32, x, y, i32(g, -1), i32(g, 0), dag.SETGT)
    require.Equal(t, g.SelectCC(dag.I32, cond, i32(g, 0), p, q, dag.SETNE), r)

    /* legalizing the result again only flips the not-equal */
    r2, ok := l.Legalize(r)
    require.True(t, ok)
    require.Equal(t, g.SelectCC(dag.I32, cond, i32(g, 0), q, p, dag.SETEQ), r2)
}
