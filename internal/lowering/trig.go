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
    `github.com/cloudwego/r600isel/internal/target`
    `github.com/cloudwego/r600isel/internal/utils`
)

const (
    _InvTwoPi = 0.15915494309
    _Pi       = 3.14159265359
)

// lowerTrig reduces the argument of sin / cos into [-0.5, 0.5) turns:
//
//     TRIG(FRACT(x / 2pi + 0.5) - 0.5)
//
// R600 expects radians in [-pi, pi), so the result is scaled back.
func (self *Lowering) lowerTrig(v dag.Value) (dag.Value, bool) {
    var op dag.Opcode
    g := self.g
    n := g.NodeOf(v)
    vt := n.Types[0]
    x := g.Arg(v, 0)

    /* select the hardware node */
    switch n.Op {
        case dag.OpFSin : op = dag.OpSinHW
        case dag.OpFCos : op = dag.OpCosHW
        default         : utils.Fatalf("lowerTrig", "wrong trig opcode %s", n.Op)
    }

    /* range reduction */
    mul := g.Get(dag.OpFMul, vt, x, g.ConstantFP(_InvTwoPi, dag.F32))
    frac := g.Get(dag.OpFract, vt, g.Get(dag.OpFAdd, vt, mul, g.ConstantFP(0.5, dag.F32)))
    trig := g.Get(op, vt, g.Get(dag.OpFAdd, vt, frac, g.ConstantFP(-0.5, dag.F32)))

    /* R700 and later take the reduced value directly */
    if self.info.Gen >= target.R700 {
        return trig, true
    } else {
        return g.Get(dag.OpFMul, vt, trig, g.ConstantFP(_Pi, dag.F32)), true
    }
}

// lowerFpToUint handles the i1 result, which is just (x != 0.0).
func (self *Lowering) lowerFpToUint(v dag.Value) (dag.Value, bool) {
    g := self.g
    if vt := g.TypeOf(v); vt != dag.I1 {
        return dag.Value{}, false
    } else {
        return g.SetCC(dag.I1, g.Arg(v, 0), g.ConstantFP(0.0, dag.F32), dag.SETNE), true
    }
}
