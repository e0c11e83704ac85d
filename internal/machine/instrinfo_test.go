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

func TestInstrInfo_OperandIdx(t *testing.T) {
    info := NewInstrInfo(2)
    require.Equal(t, 0, info.OperandIdx(OP_MOV, NameDst))
    require.Equal(t, 3, info.OperandIdx(OP_MOV, NameSrc0))
    require.Equal(t, -1, info.OperandIdx(OP_MOV, NameSrc1))
    require.Equal(t, 7, info.OperandIdx(OP_ADD, NameSrc1))

    /* three-source instructions have no write mask and no abs */
    require.Equal(t, -1, info.OperandIdx(OP_MULADD, NameWrite))
    require.Equal(t, -1, info.OperandIdx(OP_MULADD, NameSrc0Abs))
    require.Equal(t, 8, info.OperandIdx(OP_MULADD, NameSrc2))
    require.Equal(t, -1, info.OperandIdx(OP_MULADD, NameNone))

    /* no layout at all */
    require.Equal(t, -1, info.OperandIdx(OP_RETURN, NameDst))
    require.Nil(t, Names(OP_RETURN))
}

func TestInstrInfo_Sources(t *testing.T) {
    info := NewInstrInfo(2)
    require.Len(t, info.Sources(OP_SIN), 1)
    require.Len(t, info.Sources(OP_ADD), 2)
    require.Len(t, info.Sources(OP_CNDE), 3)
    require.Equal(t, NameNone, info.Sources(OP_CNDE)[2].Abs)

    /* eight lanes for dot products */
    srcs := info.Sources(OP_DOT_4)
    require.Len(t, srcs, 8)
    require.Equal(t, Source { Src: NameSrc0X, Neg: NameSrc0NegX, Abs: NameSrc0AbsX, Sel: NameSrc0SelX }, srcs[0])
    require.Equal(t, Source { Src: NameSrc1W, Neg: NameSrc1NegW, Abs: NameSrc1AbsW, Sel: NameSrc1SelW }, srcs[7])
    require.Equal(t, "src1_neg_Z", NameSrc1NegZ.String())

    /* selects pair with their sources */
    require.Equal(t, info.OperandIdx(OP_ADD, NameSrc1Sel), info.SelIdx(OP_ADD, info.OperandIdx(OP_ADD, NameSrc1)))
    require.Equal(t, -1, info.SelIdx(OP_ADD, 0))
}

func TestInstrInfo_ModifierSupport(t *testing.T) {
    info := NewInstrInfo(2)
    for _, op := range []OpCode { OP_MOV, OP_ADD, OP_MULADD, OP_DOT_4 } {
        require.True(t, info.HasInstrModifiers(op), op.String())
    }
    for _, op := range []OpCode { OP_PRED_X, OP_FNEG_R600, OP_REG_SEQUENCE, OP_JUMP } {
        require.False(t, info.HasInstrModifiers(op), op.String())
    }
}

func TestInstrInfo_ConstReadLimit(t *testing.T) {
    info := NewInstrInfo(2)
    require.True(t, info.FitsConstReadLimitations(nil))
    require.True(t, info.FitsConstReadLimitations([]int64 { 0, 4 }))
    require.True(t, info.FitsConstReadLimitations([]int64 { 4, 4, 8, 8 }))
    require.False(t, info.FitsConstReadLimitations([]int64 { 0, 4, 8 }))

    /* both channels of a pair share one read */
    require.True(t, info.FitsConstReadLimitations([]int64 { 4, 5, 8 }))
    require.False(t, info.FitsConstReadLimitations([]int64 { 4, 6, 8 }))
    require.Panics(t, func() { NewInstrInfo(0) })
}

func TestInstrInfo_DefaultInstr(t *testing.T) {
    info := NewInstrInfo(2)
    mi := info.DefaultInstr(OP_ADD, vreg(0), vreg(1), vreg(2))
    require.Len(t, mi.Ops, len(Names(OP_ADD)))
    require.Equal(t, Def(vreg(0)), operand(info, mi, NameDst))
    require.Equal(t, Use(vreg(1)), operand(info, mi, NameSrc0))
    require.Equal(t, Use(vreg(2)), operand(info, mi, NameSrc1))
    require.Equal(t, Use(target.PRED_SEL_OFF), operand(info, mi, NamePredSel))
    require.Equal(t, int64(1), info.ImmOperand(mi, NameWrite))
    require.Equal(t, int64(1), info.ImmOperand(mi, NameLast))
    require.Zero(t, info.ImmOperand(mi, NameClamp))
    require.Zero(t, info.ImmOperand(mi, NameSrc1Neg))
    requireInvariant(t, func() { info.DefaultInstr(OP_JUMP, vreg(0), vreg(1), vreg(2)) })
}

func TestInstrInfo_MovImm(t *testing.T) {
    info := NewInstrInfo(2)
    mi := info.MovImm(vreg(3), int64(math.Float32bits(2.5)))
    require.Equal(t, OP_MOV, mi.Op)
    require.Equal(t, Use(target.ALU_LITERAL_X), operand(info, mi, NameSrc0))
    require.Equal(t, int64(0x40200000), info.ImmOperand(mi, NameLiteral))
}

func TestInstrInfo_AddFlag(t *testing.T) {
    info := NewInstrInfo(2)
    mi := info.DefaultInstr(OP_ADD, vreg(0), vreg(1), vreg(2))
    info.AddFlag(mi, 0, FlagClamp)
    info.AddFlag(mi, 1, FlagNeg)
    info.AddFlag(mi, 0, FlagAbs)
    info.AddFlag(mi, 0, FlagMask)
    require.Equal(t, int64(1), info.ImmOperand(mi, NameClamp))
    require.Equal(t, int64(1), info.ImmOperand(mi, NameSrc1Neg))
    require.Equal(t, int64(1), info.ImmOperand(mi, NameSrc0Abs))
    require.Zero(t, info.ImmOperand(mi, NameSrc0Neg))
    require.Zero(t, info.ImmOperand(mi, NameWrite))

    /* the third source of MULADD has no abs slot */
    mad := info.DefaultInstr(OP_MULADD, vreg(0), vreg(1), vreg(2))
    requireInvariant(t, func() { info.AddFlag(mad, 2, FlagAbs) })
    requireInvariant(t, func() { info.AddFlag(mad, 3, FlagNeg) })

    /* packed flags */
    pred := NewInstr(OP_PRED_X, Def(target.PREDICATE_BIT), Use(vreg(1)), Imm(0x23), Imm(0))
    info.AddFlag(pred, 0, FlagPush)
    info.AddFlag(pred, 1, FlagNeg)
    require.Equal(t, int64(FlagPush) | int64(FlagNeg) << NumFlags, info.ImmOperand(pred, NameFlags))
    requireInvariant(t, func() { info.AddFlag(NewInstr(OP_JUMP, Block(0)), 0, FlagPush) })
}
