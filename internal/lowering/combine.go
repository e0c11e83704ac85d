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
    `github.com/cloudwego/r600isel/internal/dag`
)

// (fp_round (uint_to_fp:f64 x)) -> (uint_to_fp x)
func (self *Lowering) combineFpRound(v dag.Value) (dag.Value, bool) {
    g := self.g
    arg := g.Arg(v, 0)

    /* only conversions to f64 */
    if g.Op(arg) != dag.OpUintToFp || g.TypeOf(arg) != dag.F64 {
        return dag.Value{}, false
    } else {
        return g.Get(dag.OpUintToFp, g.TypeOf(v), g.Arg(arg, 0)), true
    }
}

// (fp_to_sint (fneg (select_cc:f32 l, r, 1.0, 0.0, cc))) -> (select_cc l, r, -1, 0, cc)
func (self *Lowering) combineFpToSint(v dag.Value) (dag.Value, bool) {
    g := self.g
    neg := g.Arg(v, 0)

    /* match the negation */
    if g.Op(neg) != dag.OpFNeg {
        return dag.Value{}, false
    }

    /* match the select between hardware sentinels */
    sel := g.Arg(neg, 0)
    if g.Op(sel) != dag.OpSelectCC {
        return dag.Value{}, false
    }

    /* the compare and the select must both be f32 */
    l, r, t, f := g.Arg(sel, 0), g.Arg(sel, 1), g.Arg(sel, 2), g.Arg(sel, 3)
    if g.TypeOf(l) != dag.F32 || g.TypeOf(t) != dag.F32 || !self.isHWTrue(t) || !self.isHWFalse(f) {
        return dag.Value{}, false
    }

    /* select the integer sentinels directly */
    return g.SelectCC(
        g.TypeOf(v),
        l,
        r,
        g.Constant(-1, dag.I32),
        g.Constant(0, dag.I32),
        g.NodeOf(sel).CC,
    ), true
}

// (insert_vector_elt (build_vector ...), x, idx) -> (build_vector ... x ...)
func (self *Lowering) combineInsertVectorElt(v dag.Value) (dag.Value, bool) {
    var lanes []dag.Value
    g := self.g
    vec, val, idx := g.Arg(v, 0), g.Arg(v, 1), g.Arg(v, 2)

    /* inserting undef changes nothing */
    if g.IsUndef(val) {
        return vec, true
    }

    /* the result must be buildable as a vector */
    vt := g.TypeOf(vec)
    if !self.legal.IsOperationLegal(dag.OpBuildVector, vt) {
        return dag.Value{}, false
    }

    /* only constant positions */
    elt, ok := g.ConstValue(idx)
    if !ok {
        return dag.Value{}, false
    }

    /* collect the lanes of the input vector */
    switch g.Op(vec) {
        case dag.OpBuildVector: {
            lanes = g.Args(vec)
        }

        /* undefined vectors have undefined lanes */
        case dag.OpUndef: {
            lanes = make([]dag.Value, vt.Lanes())
            for i := range lanes {
                lanes[i] = g.Undef(vt.Elem())
            }
        }

        /* nothing known about the vector */
        default: {
            return dag.Value{}, false
        }
    }

    /* replace the lane, converting to the lane type */
    if elt >= 0 && elt < int64(len(lanes)) {
        if et, xt := g.TypeOf(lanes[0]), g.TypeOf(val); et != xt {
            if et.Bits() > xt.Bits() {
                val = g.Get(dag.OpAnyExtend, et, val)
            } else {
                val = g.Get(dag.OpTruncate, et, val)
            }
        }
        lanes[elt] = val
    }

    /* rebuild the vector */
    return g.BuildVector(vt, lanes...), true
}

// (extract_vector_elt (build_vector ...), idx) -> lane, also through a bitcast
func (self *Lowering) combineExtractVectorElt(v dag.Value) (dag.Value, bool) {
    g := self.g
    vec := g.Arg(v, 0)
    idx, ok := g.ConstValue(g.Arg(v, 1))

    /* only constant positions */
    if !ok || idx < 0 {
        return dag.Value{}, false
    }

    /* direct vector */
    if g.Op(vec) == dag.OpBuildVector {
        if lanes := g.Args(vec); idx < int64(len(lanes)) {
            return lanes[idx], true
        } else {
            return dag.Value{}, false
        }
    }

    /* reinterpreted vector */
    if g.Op(vec) != dag.OpBitcast || g.Op(g.Arg(vec, 0)) != dag.OpBuildVector {
        return dag.Value{}, false
    }

    /* the lane layout must survive the bitcast */
    src := g.Arg(vec, 0)
    lanes := g.Args(src)
    if g.TypeOf(vec).Lanes() != len(lanes) || idx >= int64(len(lanes)) {
        return dag.Value{}, false
    }

    /* reinterpret the lane */
    return g.Bitcast(g.TypeOf(v), lanes[idx]), true
}

// (select_cc (select_cc x, y, a, b, cc), b, a, b, setne) -> (select_cc x, y, a, b, cc)
// (select_cc (select_cc x, y, a, b, cc), b, a, b, seteq) -> (select_cc x, y, a, b, !cc)
func (self *Lowering) combineSelectCC(v dag.Value) (dag.Value, bool) {
    g := self.g
    n := g.NodeOf(v)
    lhs, rhs, t, f := g.Arg(v, 0), g.Arg(v, 1), g.Arg(v, 2), g.Arg(v, 3)

    /* match the nested select */
    if g.Op(lhs) != dag.OpSelectCC {
        return dag.Value{}, false
    }

    /* the outer select picks between the inner values */
    if g.Arg(lhs, 2) != t || g.Arg(lhs, 3) != f || rhs != f {
        return dag.Value{}, false
    }

    /* specialize on the outer condition */
    switch n.CC {
        case dag.SETNE: {
            return lhs, true
        }

        /* equal is the inverse of the inner condition */
        case dag.SETEQ: {
            x := g.Arg(lhs, 0)
            cmp := g.TypeOf(x)
            inv := g.NodeOf(lhs).CC.Inverse(cmp.IsInteger())

            /* the inverse must be native */
            if !self.legal.IsCondCodeLegal(inv, cmp) {
                return dag.Value{}, false
            } else {
                return g.SelectCC(g.TypeOf(lhs), x, g.Arg(lhs, 1), g.Arg(lhs, 2), g.Arg(lhs, 3), inv), true
            }
        }

        /* other conditions are not specialized */
        default: {
            return dag.Value{}, false
        }
    }
}

// rebuildSwizzled canonicalizes the vector at args[vec] together with the
// four selectors starting at args[swz], and rebuilds the node.
func (self *Lowering) rebuildSwizzled(v dag.Value, vec int, swz int) (dag.Value, bool) {
    g := self.g
    n := *g.NodeOf(v)
    args := g.Args(v)

    /* only constructor payloads */
    if g.Op(args[vec]) != dag.OpBuildVector || g.TypeOf(args[vec]).Lanes() != 4 {
        return dag.Value{}, false
    }

    /* rewrite the vector and its selectors */
    args[vec] = self.OptimizeSwizzle(args[vec], args[swz:swz + 4])
    n.Args = args
    return g.Make(n), true
}

// EXPORT: chain, vec, arraybase, type, swz_x, swz_y, swz_z, swz_w
func (self *Lowering) combineExport(v dag.Value) (dag.Value, bool) {
    return self.rebuildSwizzled(v, 1, 4)
}

// TEXTURE_FETCH: texop, coord, swz_x, swz_y, swz_z, swz_w, ...
func (self *Lowering) combineTextureFetch(v dag.Value) (dag.Value, bool) {
    return self.rebuildSwizzled(v, 1, 2)
}
