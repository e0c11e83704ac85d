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

package machine

import (
    `math`
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/cloudwego/r600isel/internal/target`
)

func expandAll(fn *Func) *InstrInfo {
    info := NewInstrInfo(2)
    NewExpander(info).Run(fn)
    return info
}

func TestExpand_Modifiers(t *testing.T) {
    tests := []struct {
        op   OpCode
        name OpName
    } {
        { OP_CLAMP_R600, NameClamp },
        { OP_FNEG_R600, NameSrc0Neg },
        { OP_FABS_R600, NameSrc0Abs },
    }
    for _, tc := range tests {
        fn, bb := newTestFunc()
        fn.Append(bb, NewInstr(tc.op, Def(vreg(1)), Use(vreg(0))))
        info := expandAll(fn)

        /* a single move with the modifier set */
        require.Len(t, bb.Instrs, 1)
        mi := bb.Instrs[0]
        require.Equal(t, OP_MOV, mi.Op)
        require.Equal(t, Def(vreg(1)), operand(info, mi, NameDst))
        require.Equal(t, Use(vreg(0)), operand(info, mi, NameSrc0))
        require.Equal(t, int64(1), info.ImmOperand(mi, tc.name), tc.op.String())
    }
}

func TestExpand_MaskWrite(t *testing.T) {
    fn, bb := newTestFunc()
    info := NewInstrInfo(2)
    add := fn.Append(bb, info.DefaultInstr(OP_ADD, vreg(2), vreg(0), vreg(1)))
    fn.Append(bb, NewInstr(OP_MASK_WRITE, Use(vreg(2))))
    NewExpander(info).Run(fn)
    require.Equal(t, []*Instr { add }, bb.Instrs)
    require.Zero(t, info.ImmOperand(add, NameWrite))

    /* the masked register must be defined */
    fn, bb = newTestFunc()
    fn.Append(bb, NewInstr(OP_MASK_WRITE, Use(vreg(7))))
    requireInvariant(t, func() { expandAll(fn) })
}

func TestExpand_MovImm(t *testing.T) {
    fn, bb := newTestFunc()
    fn.Append(bb, NewInstr(OP_MOV_IMM_F32, Def(vreg(0)), FPImm(1.5)))
    fn.Append(bb, NewInstr(OP_MOV_IMM_I32, Def(vreg(1)), Imm(-3)))
    info := expandAll(fn)
    require.Len(t, bb.Instrs, 2)
    require.Equal(t, Use(target.ALU_LITERAL_X), operand(info, bb.Instrs[0], NameSrc0))
    require.Equal(t, int64(math.Float32bits(1.5)), info.ImmOperand(bb.Instrs[0], NameLiteral))
    require.Equal(t, int64(-3), info.ImmOperand(bb.Instrs[1], NameLiteral))
}

func TestExpand_ConstCopy(t *testing.T) {
    fn, bb := newTestFunc()
    fn.Append(bb, NewInstr(OP_CONST_COPY, Def(vreg(0)), Imm(517)))
    info := expandAll(fn)
    require.Equal(t, Use(target.ALU_CONST), operand(info, bb.Instrs[0], NameSrc0))
    require.Equal(t, int64(517), info.ImmOperand(bb.Instrs[0], NameSrc0Sel))
}

func TestExpand_CachelessWrite(t *testing.T) {
    fn, bb := newTestFunc()
    fn.Append(bb, NewInstr(OP_RAT_WRITE_CACHELESS_32_eg, Use(vreg(0)), Use(vreg(1))))
    fn.Append(bb, NewInstr(OP_RAT_WRITE_CACHELESS_128_eg, Use(vreg(2)), Use(vreg(3))))
    fn.Append(bb, NewInstr(OP_RETURN))
    expandAll(fn)

    /* only the write right before the return ends the program */
    require.Len(t, bb.Instrs, 3)
    require.Equal(t, []Operand { Use(vreg(0)), Use(vreg(1)), Imm(0) }, bb.Instrs[0].Ops)
    require.Equal(t, []Operand { Use(vreg(2)), Use(vreg(3)), Imm(1) }, bb.Instrs[1].Ops)

    /* expanding again changes nothing */
    expandAll(fn)
    require.Len(t, bb.Instrs[1].Ops, 3)
}

func gradientOps(ops []Operand) []int64 {
    ret := make([]int64, 0, len(ops))
    for _, v := range ops {
        ret = append(ret, v.Imm)
    }
    return ret
}

func TestExpand_GradientSample(t *testing.T) {
    for _, shadow := range []bool { false, true } {
        op, sample := OP_TXD, OP_TEX_SAMPLE_G
        if shadow {
            op, sample = OP_TXD_SHADOW, OP_TEX_SAMPLE_C_G
        }

        /* shadow rect: unnormalized x and y, compare against z */
        fn, bb := newTestFunc()
        fn.Append(bb, NewInstr(op, Def(vreg(0)), Use(vreg(1)), Use(vreg(2)), Use(vreg(3)), Imm(7), Imm(9), Imm(int64(target.TexShadowRect))))
        expandAll(fn)
        require.Len(t, bb.Instrs, 3)
        h, v, s := bb.Instrs[0], bb.Instrs[1], bb.Instrs[2]

        /* horizontal gradients come from operand 3, vertical ones from operand 2 */
        tail := []int64 { 0, 1, 2, 2, 0, 0, 0, 0, 1, 2, 3, 7, 9, 0, 0, 1, 1 }
        require.Equal(t, OP_TEX_SET_GRADIENTS_H, h.Op)
        require.Equal(t, Use(vreg(3)), h.Ops[1])
        require.Equal(t, tail, gradientOps(h.Ops[2:]))
        require.Equal(t, OP_TEX_SET_GRADIENTS_V, v.Op)
        require.Equal(t, Use(vreg(2)), v.Ops[1])
        require.Equal(t, tail, gradientOps(v.Ops[2:]))

        /* the sample reads both temporaries */
        t0, _ := h.Dst()
        t1, _ := v.Dst()
        require.NotEqual(t, t0, t1)
        require.True(t, t0.IsVirtual())
        require.Equal(t, sample, s.Op)
        require.Equal(t, []Operand { Def(vreg(0)), Use(vreg(1)) }, s.Ops[:2])
        require.Equal(t, tail, gradientOps(s.Ops[2:19]))
        require.Equal(t, []Operand { ImplicitUse(t0), ImplicitUse(t1) }, s.Ops[19:])
    }
}

func TestExpand_Branch(t *testing.T) {
    fn, bb := newTestFunc()
    fn.Append(bb, NewInstr(OP_BRANCH, Block(3)))
    expandAll(fn)
    require.Equal(t, []*Instr { NewInstr(OP_JUMP, Block(3)) }, bb.Instrs)
}

func TestExpand_CondBranch(t *testing.T) {
    tests := []struct {
        op   OpCode
        cond int64
    } {
        { OP_BRANCH_COND_f32, 0x23 },
        { OP_BRANCH_COND_i32, 0x45 },
    }
    for _, tc := range tests {
        fn, bb := newTestFunc()
        fn.Append(bb, NewInstr(tc.op, Block(2), Use(vreg(0))))
        info := expandAll(fn)
        require.Len(t, bb.Instrs, 2)

        /* set the predicate and push the stack */
        pred := bb.Instrs[0]
        require.Equal(t, OP_PRED_X, pred.Op)
        require.Equal(t, Def(target.PREDICATE_BIT), pred.Ops[0])
        require.Equal(t, Use(vreg(0)), pred.Ops[1])
        require.Equal(t, tc.cond, info.ImmOperand(pred, NameCond))
        require.Equal(t, int64(FlagPush), info.ImmOperand(pred, NameFlags))

        /* jump on it */
        require.Equal(t, NewInstr(OP_JUMP_COND, Block(2), Kill(target.PREDICATE_BIT)), bb.Instrs[1])
    }
}

func exportInstr(op OpCode, kind int64, gpr int) *Instr {
    return NewInstr(op, Use(vreg(gpr)), Imm(kind), Imm(60), Imm(0), Imm(1), Imm(2), Imm(3))
}

func TestExpand_Export(t *testing.T) {
    fn, bb := newTestFunc()
    e0 := fn.Append(bb, exportInstr(OP_EG_ExportSwz, 0, 0))
    fn.Append(bb, exportInstr(OP_EG_ExportSwz, 1, 1))
    fn.Append(bb, exportInstr(OP_EG_ExportSwz, 0, 2))
    fn.Append(bb, NewInstr(OP_RETURN))
    expandAll(fn)
    require.Len(t, bb.Instrs, 4)

    /* an export followed by one of the same kind is deferred */
    require.Equal(t, e0, bb.Instrs[0])
    require.Len(t, e0.Ops, 7)

    /* last of its kind, not the end of the program */
    require.Equal(t, int64(84), bb.Instrs[1].Ops[7].Imm)
    require.Equal(t, int64(0), bb.Instrs[1].Ops[8].Imm)

    /* right before the return */
    require.Equal(t, exportInstr(OP_EG_ExportSwz, 0, 2).Ops, bb.Instrs[2].Ops[:7])
    require.Equal(t, []Operand { Imm(84), Imm(1) }, bb.Instrs[2].Ops[7:])
}

func TestExpand_ExportR600(t *testing.T) {
    fn, bb := newTestFunc()
    fn.Append(bb, exportInstr(OP_R600_ExportSwz, 0, 0))
    fn.Append(bb, NewInstr(OP_RETURN))
    expandAll(fn)
    require.Equal(t, []Operand { Imm(40), Imm(1) }, bb.Instrs[0].Ops[7:])
}

func TestExpand_Return(t *testing.T) {
    fn, bb := newTestFunc()
    fn.Info.AddLiveOut(target.T(1, 0))
    fn.Info.AddLiveOut(target.T(1, 1))
    ret := fn.Append(bb, NewInstr(OP_RETURN))
    expandAll(fn)

    /* the return stays, with the live-outs as implicit uses */
    require.Equal(t, []*Instr { ret }, bb.Instrs)
    require.Equal(t, []Operand { ImplicitUse(target.T(1, 0)), ImplicitUse(target.T(1, 1)) }, ret.Ops)
    expandAll(fn)
    require.Len(t, ret.Ops, 2)
}

func TestExpand_LDS(t *testing.T) {
    fn, bb := newTestFunc()
    fn.Append(bb, NewInstr(OP_LDS_ADD_RET, Def(vreg(0)), Use(vreg(1)), Use(vreg(2))))
    used := fn.Append(bb, NewInstr(OP_LDS_XOR_RET, Def(vreg(3)), Use(vreg(1)), Use(vreg(2))))
    fn.Append(bb, NewInstr(OP_FNEG_R600, Def(vreg(4)), Use(vreg(3))))
    expandAll(fn)

    /* the unused result is dropped */
    require.Equal(t, NewInstr(OP_LDS_ADD, Use(vreg(1)), Use(vreg(2))), bb.Instrs[0])
    require.Equal(t, used, bb.Instrs[1])
}

func TestExpand_NotAPlaceholder(t *testing.T) {
    fn, bb := newTestFunc()
    info := NewInstrInfo(2)
    mi := fn.Append(bb, info.DefaultInstr(OP_ADD, vreg(2), vreg(0), vreg(1)))
    requireInvariant(t, func() { NewExpander(info).Expand(mi, fn.Builder(bb)) })

    /* the builder must be positioned on the instruction */
    other := fn.Append(bb, NewInstr(OP_BRANCH, Block(0)))
    requireInvariant(t, func() { NewExpander(info).Expand(other, fn.Builder(bb)) })
}
