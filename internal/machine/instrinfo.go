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
    `github.com/samber/lo`

    `github.com/cloudwego/r600isel/internal/target`
    `github.com/cloudwego/r600isel/internal/utils`
)

// Flag is an instruction modifier. Instructions with native modifier
// operands store each flag in its own operand, others pack them into the
// flags operand, NumFlags bits per source.
type Flag uint8

const (
    FlagClamp Flag = 1 << iota
    FlagNeg
    FlagAbs
    FlagMask
    FlagPush
    FlagNotLast
    FlagLast
)

const (
    NumFlags = 7
)

// Layout resolves operand names and the operand constraints of a target.
type Layout interface {
    OperandIdx(op OpCode, name OpName) int
    HasInstrModifiers(op OpCode) bool
    FitsConstReadLimitations(consts []int64) bool
}

// InstrInfo describes the selected instructions of one target
// configuration. It is read-only once built.
type InstrInfo struct {
    ConstReadLimit int
}

func NewInstrInfo(constReadLimit int) *InstrInfo {
    if constReadLimit <= 0 {
        panic("the constant read limit must be positive")
    } else {
        return &InstrInfo { ConstReadLimit: constReadLimit }
    }
}

func (self *InstrInfo) layoutOf(op OpCode) *layout {
    if op < _OP_count {
        return _Layouts[op]
    } else {
        return nil
    }
}

// OperandIdx returns the position of the named operand of op, or -1.
func (self *InstrInfo) OperandIdx(op OpCode, name OpName) int {
    if l := self.layoutOf(op); l == nil || !l.has(name) {
        return -1
    } else {
        return int(l.index[name])
    }
}

// HasInstrModifiers reports whether op encodes source and output modifiers
// in operands of its own.
func (self *InstrInfo) HasInstrModifiers(op OpCode) bool {
    l := self.layoutOf(op)
    return l != nil && l.mods
}

// Sources returns the foldable source positions of op.
func (self *InstrInfo) Sources(op OpCode) []Source {
    if l := self.layoutOf(op); l == nil {
        return nil
    } else {
        return l.sources
    }
}

// SelIdx returns the position of the bank-select operand paired with the
// source at position srcIdx, or -1.
func (self *InstrInfo) SelIdx(op OpCode, srcIdx int) int {
    for _, s := range self.Sources(op) {
        if self.OperandIdx(op, s.Src) == srcIdx {
            return self.OperandIdx(op, s.Sel)
        }
    }
    return -1
}

// FitsConstReadLimitations reports whether an instruction group can read the
// given constant-bank selects. The budget counts channel pairs rather than
// distinct selects: sel 2n and 2n+1 name the same pair of channels of a
// constant and share one read port, so 4 and 5 count once.
func (self *InstrInfo) FitsConstReadLimitations(consts []int64) bool {
    return len(lo.Uniq(lo.Map(consts, func(c int64, _ int) int64 { return c &^ 1 }))) <= self.ConstReadLimit
}

// DefaultInstr builds op with every modifier cleared, writing dst and
// reading src0 and src1 where the layout has them.
func (self *InstrInfo) DefaultInstr(op OpCode, dst target.Reg, src0 target.Reg, src1 target.Reg) *Instr {
    l := self.layoutOf(op)
    if l == nil {
        utils.Fatalf("DefaultInstr", "opcode %s has no operand layout", op)
    }

    /* fill every slot */
    ops := make([]Operand, len(l.names))
    for i, v := range l.names {
        switch v {
            case NameDst     : ops[i] = Def(dst)
            case NameSrc0    : ops[i] = Use(src0)
            case NameSrc1    : ops[i] = Use(src1)
            case NamePredSel : ops[i] = Use(target.PRED_SEL_OFF)
            case NameWrite   : ops[i] = Imm(1)
            case NameLast    : ops[i] = Imm(1)
            default          : ops[i] = defaultOperand(v)
        }
    }
    return NewInstr(op, ops...)
}

func defaultOperand(name OpName) Operand {
    for _, s := range _Dot4Sources {
        if s.Src == name {
            return Use(target.NoReg)
        }
    }
    if name == NameSrc2 {
        return Use(target.NoReg)
    } else {
        return Imm(0)
    }
}

// MovImm builds a move of a 32-bit literal into dst.
func (self *InstrInfo) MovImm(dst target.Reg, imm int64) *Instr {
    mi := self.DefaultInstr(OP_MOV, dst, target.ALU_LITERAL_X, target.NoReg)
    self.SetImmOperand(mi, NameLiteral, imm)
    return mi
}

// SetImmOperand sets the named immediate operand of mi.
func (self *InstrInfo) SetImmOperand(mi *Instr, name OpName, v int64) {
    idx := self.OperandIdx(mi.Op, name)
    if idx < 0 || !mi.Ops[idx].IsImm() {
        utils.Fatalf("SetImmOperand", "%s has no immediate operand %s", mi.Op, name)
    }
    mi.Ops[idx].Imm = v
}

// ImmOperand returns the value of the named immediate operand of mi.
func (self *InstrInfo) ImmOperand(mi *Instr, name OpName) int64 {
    idx := self.OperandIdx(mi.Op, name)
    if idx < 0 || !mi.Ops[idx].IsImm() {
        utils.Fatalf("ImmOperand", "%s has no immediate operand %s", mi.Op, name)
    }
    return mi.Ops[idx].Imm
}

// AddFlag sets a modifier of mi. Neg and Abs apply to the source with the
// given number, other flags to the whole instruction.
func (self *InstrInfo) AddFlag(mi *Instr, src int, flag Flag) {
    if !self.HasInstrModifiers(mi.Op) {
        self.addPackedFlag(mi, src, flag)
        return
    }

    /* native modifier operands */
    switch flag {
        case FlagClamp : self.SetImmOperand(mi, NameClamp, 1)
        case FlagMask  : self.SetImmOperand(mi, NameWrite, 0)
        case FlagNeg   : self.SetImmOperand(mi, self.sourceOf(mi, src).Neg, 1)
        case FlagAbs   : self.SetImmOperand(mi, self.sourceOf(mi, src).Abs, 1)
        default        : utils.Fatalf("AddFlag", "flag %#x has no operand in %s", flag, mi.Op)
    }
}

func (self *InstrInfo) sourceOf(mi *Instr, src int) Source {
    if srcs := self.Sources(mi.Op); src < 0 || src >= len(srcs) {
        utils.Fatalf("AddFlag", "%s has no source %d", mi.Op, src)
        panic("unreachable")
    } else {
        return srcs[src]
    }
}

func (self *InstrInfo) addPackedFlag(mi *Instr, src int, flag Flag) {
    idx := self.OperandIdx(mi.Op, NameFlags)
    if idx < 0 {
        utils.Fatalf("AddFlag", "%s has no flags operand", mi.Op)
    }
    mi.Ops[idx].Imm |= int64(flag) << (NumFlags * src)
}
