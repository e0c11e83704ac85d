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
    `github.com/cloudwego/r600isel/internal/utils`
)

// lowerSelectCC rewrites a select_cc into the forms the SET* and CND*
// instructions can match:
//
//     SET* : select_cc x, y, hw_true, hw_false, cc
//     CND* : select_cc x, 0, t, f, cc
//
// anything else becomes a SET* feeding a CND*.
func (self *Lowering) lowerSelectCC(v dag.Value) (dag.Value, bool) {
    g := self.g
    n := g.NodeOf(v)
    vt := n.Types[0]
    cc := n.CC
    lhs, rhs, t, f := g.Arg(v, 0), g.Arg(v, 1), g.Arg(v, 2), g.Arg(v, 3)
    cmp := g.TypeOf(lhs)

    /* move the hardware true / false values to the right operands */
    if self.isHWTrue(f) && self.isHWFalse(t) {
        if inv := cc.Inverse(cmp == dag.I32); self.legal.IsCondCodeLegal(inv, cmp) {
            t, f = f, t
            cc = inv
        } else if sw := inv.Swapped(); self.legal.IsCondCodeLegal(sw, cmp) {
            t, f = f, t
            lhs, rhs = rhs, lhs
            cc = sw
        }
    }

    /* matched by one SET* instruction */
    if self.isHWTrue(t) && self.isHWFalse(f) && (cmp == vt || vt == dag.I32) {
        return g.SelectCC(vt, lhs, rhs, t, f, cc), true
    }

    /* try to move the zero to the right hand side */
    if self.isZero(lhs) {
        if sw := cc.Swapped(); self.legal.IsCondCodeLegal(sw, cmp) {
            lhs, rhs = rhs, lhs
            cc = sw
        } else if sw = cc.Inverse(cmp.IsInteger()).Swapped(); self.legal.IsCondCodeLegal(sw, cmp) {
            t, f = f, t
            lhs, rhs = rhs, lhs
            cc = sw
        }
    }

    /* matched by one CND* instruction */
    if self.isZero(rhs) {
        if cmp != vt {
            t = g.Bitcast(cmp, t)
            f = g.Bitcast(cmp, f)
        }

        /* CND* has no not-equal form, but it has the inverse */
        if cc.IsNotEqual() {
            cc = cc.Inverse(cmp == dag.I32)
            t, f = f, t
        }

        /* build the select at the compare type */
        sel := g.SelectCC(cmp, lhs, rhs, t, f, cc)
        return g.Bitcast(vt, sel), true
    }

    /* possible min / max pattern, matched on the operands as written */
    if r, ok := self.lowerMinMax(v); ok {
        return r, true
    }

    /* no native form, lower into two selects */
    var hwt dag.Value
    var hwf dag.Value

    /* materialize the sentinels */
    switch cmp {
        case dag.F32 : hwt, hwf = g.ConstantFP(1.0, dag.F32), g.ConstantFP(0.0, dag.F32)
        case dag.I32 : hwt, hwf = g.Constant(-1, dag.I32), g.Constant(0, dag.I32)
        default      : utils.Fatalf("lowerSelectCC", "unhandled compare type %s", cmp)
    }

    /* SET* then CND* */
    cond := g.SelectCC(cmp, lhs, rhs, hwt, hwf, cc)
    return g.SelectCC(vt, cond, hwf, t, f, dag.SETNE), true
}

// lowerMinMax matches select_cc a, b, a, b, cc (or with the values swapped)
// on f32 into the legacy min / max nodes.
func (self *Lowering) lowerMinMax(v dag.Value) (dag.Value, bool) {
    g := self.g
    n := g.NodeOf(v)
    vt := n.Types[0]
    lhs, rhs, t, f := g.Arg(v, 0), g.Arg(v, 1), g.Arg(v, 2), g.Arg(v, 3)

    /* only f32 with the compared values selected */
    if vt != dag.F32 || !((lhs == t && rhs == f) || (lhs == f && rhs == t)) {
        return dag.Value{}, false
    }

    /* pick min or max depending on the direction */
    switch n.CC {
        case dag.SETULE, dag.SETULT, dag.SETOLE, dag.SETOLT, dag.SETLE, dag.SETLT: {
            if lhs == t {
                return g.Get(dag.OpFMinLegacy, vt, lhs, rhs), true
            } else {
                return g.Get(dag.OpFMaxLegacy, vt, lhs, rhs), true
            }
        }

        /* greater than family */
        case dag.SETGT, dag.SETGE, dag.SETUGE, dag.SETOGE, dag.SETUGT, dag.SETOGT: {
            if lhs == t {
                return g.Get(dag.OpFMaxLegacy, vt, lhs, rhs), true
            } else {
                return g.Get(dag.OpFMinLegacy, vt, lhs, rhs), true
            }
        }

        /* equality and constant predicates are not min / max */
        default: {
            return dag.Value{}, false
        }
    }
}
