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

var _TextureOps = map[dag.Intrinsic]int64 {
    dag.IntrinsicTex   : 0,
    dag.IntrinsicTexc  : 1,
    dag.IntrinsicTxl   : 2,
    dag.IntrinsicTxlc  : 3,
    dag.IntrinsicTxb   : 4,
    dag.IntrinsicTxbc  : 5,
    dag.IntrinsicTxf   : 6,
    dag.IntrinsicTxq   : 7,
    dag.IntrinsicDdx   : 8,
    dag.IntrinsicDdy   : 9,
    dag.IntrinsicLdptr : 10,
}

// implicit kernel parameters, dword offsets into constant bank 0
var _ImplicitParams = map[dag.Intrinsic]int64 {
    dag.IntrinsicNGroupsX    : 0,
    dag.IntrinsicNGroupsY    : 1,
    dag.IntrinsicNGroupsZ    : 2,
    dag.IntrinsicGlobalSizeX : 3,
    dag.IntrinsicGlobalSizeY : 4,
    dag.IntrinsicGlobalSizeZ : 5,
    dag.IntrinsicLocalSizeX  : 6,
    dag.IntrinsicLocalSizeY  : 7,
    dag.IntrinsicLocalSizeZ  : 8,
}

var _LiveInRegs = map[dag.Intrinsic]target.Reg {
    dag.IntrinsicTGIDX  : target.T(1, 0),
    dag.IntrinsicTGIDY  : target.T(1, 1),
    dag.IntrinsicTGIDZ  : target.T(1, 2),
    dag.IntrinsicTIDIGX : target.T(0, 0),
    dag.IntrinsicTIDIGY : target.T(0, 1),
    dag.IntrinsicTIDIGZ : target.T(0, 2),
}

func (self *Lowering) constArg(v dag.Value, i int, where string) int64 {
    if c, ok := self.g.ConstValue(self.g.Arg(v, i)); !ok {
        utils.Fatalf(where, "operand %d of %s must be a constant", i, self.g.NodeOf(v).Intrinsic())
        return 0
    } else {
        return c
    }
}

// lowerIntrinsicVoid handles intrinsics with a chain, operand 0 is the chain.
func (self *Lowering) lowerIntrinsicVoid(v dag.Value) (dag.Value, bool) {
    g := self.g
    n := g.NodeOf(v)
    chain := g.Arg(v, 0)

    /* check for intrinsic ID */
    switch n.Intrinsic() {
        default: {
            return dag.Value{}, false
        }

        /* copy the value to an output register, which stays live */
        case dag.IntrinsicStoreOutput: {
            reg := target.TReg32(int(self.constArg(v, 2, "lowerIntrinsicVoid")))
            self.fn.AddLiveOut(reg)
            return g.CopyToReg(chain, int64(reg), g.Arg(v, 1)), true
        }

        /* export with the identity swizzle */
        case dag.IntrinsicStoreSwizzle: {
            return g.Get(dag.OpExport, n.Types[0],
                chain,
                g.Arg(v, 1),
                g.Arg(v, 2),
                g.Arg(v, 3),
                g.Constant(0, dag.I32),
                g.Constant(1, dag.I32),
                g.Constant(2, dag.I32),
                g.Constant(3, dag.I32),
            ), true
        }
    }
}

func (self *Lowering) lowerIntrinsicWOChain(v dag.Value) (dag.Value, bool) {
    g := self.g
    n := g.NodeOf(v)
    vt := n.Types[0]
    id := n.Intrinsic()

    /* texture sampling */
    if op, ok := _TextureOps[id]; ok {
        return self.lowerTexture(v, op), true
    }

    /* implicit kernel parameters */
    if dw, ok := _ImplicitParams[id]; ok {
        return self.lowerImplicitParameter(vt, dw), true
    }

    /* thread and group ids are preloaded registers */
    if reg, ok := _LiveInRegs[id]; ok {
        self.fn.AddLiveIn(reg)
        return g.CopyFromReg(g.Entry(), int64(reg), vt), true
    }

    /* check for other intrinsics */
    switch id {
        default: {
            return dag.Value{}, false
        }

        /* shader inputs */
        case dag.IntrinsicLoadInput: {
            reg := target.TReg32(int(self.constArg(v, 0, "lowerIntrinsicWOChain")))
            self.fn.AddLiveIn(reg)
            return g.CopyFromReg(g.Entry(), int64(reg), vt), true
        }

        /* 4-component dot product */
        case dag.IntrinsicDp4: {
            x, y := g.Arg(v, 0), g.Arg(v, 1)
            args := make([]dag.Value, 0, 8)

            /* interleave the lanes of both operands */
            for i := 0; i < 4; i++ {
                args = append(args, g.ExtractElt(dag.F32, x, i), g.ExtractElt(dag.F32, y, i))
            }
            return g.Get(dag.OpDot4, dag.F32, args...), true
        }
    }
}

// lowerTexture builds a TEXTURE_FETCH with the operand layout
//
//     texop, coord, srcx, srcy, srcz, srcw, rid, sid, target,
//     dstx, dsty, dstz, dstw, offx, offy, offz, ctx, cty, ctz
//
// where the swizzles start as identities.
func (self *Lowering) lowerTexture(v dag.Value, op int64) dag.Value {
    g := self.g
    args := g.Args(v)

    /* texture intrinsics take 10 operands */
    if len(args) != 10 {
        utils.Fatalf("lowerTexture", "texture intrinsic with %d operands", len(args))
    }

    /* build the fetch */
    ops := []dag.Value {
        g.Constant(op, dag.I32),
        args[0],
        g.Constant(0, dag.I32),
        g.Constant(1, dag.I32),
        g.Constant(2, dag.I32),
        g.Constant(3, dag.I32),
        args[1],
        args[2],
        args[3],
        g.Constant(0, dag.I32),
        g.Constant(1, dag.I32),
        g.Constant(2, dag.I32),
        g.Constant(3, dag.I32),
    }
    ops = append(ops, args[4:]...)
    return g.Get(dag.OpTextureFetch, dag.V4F32, ops...)
}

// lowerImplicitParameter loads a kernel parameter the driver placed in
// constant bank 0.
func (self *Lowering) lowerImplicitParameter(vt dag.VT, dword int64) dag.Value {
    g := self.g
    off := dword * 4

    /* offsets must fit in 16 bits */
    if off >= 1 << 15 {
        utils.Fatalf("lowerImplicitParameter", "offset %d too wide", off)
    }

    /* load from constant bank 0 */
    return g.Load(vt, g.Entry(), g.Constant(off, dag.I32), dag.MemOperand {
        Space    : dag.ConstantBuffer0,
        MemVT    : vt,
        ConstSrc : true,
    })
}
