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
    `log/slog`

    `github.com/cloudwego/r600isel/internal/opts`
    `github.com/cloudwego/r600isel/internal/target`
)

type helperKind uint8

const (
    helperNeg helperKind = iota
    helperAbs
    helperConst
    helperImmInt
    helperImmFloat
    helperImmBits
)

// helper is the value computed by an instruction that can be folded into
// the operand slots of its users.
type helper struct {
    kind helperKind
    src  Operand
    val  int64
}

// slot is one foldable position of a consumer, -1 marks absent fields.
type slot struct {
    src int
    neg int
    abs int
    sel int
    imm int
}

const (
    _FP_ONE  = 0x3f800000
    _FP_HALF = 0x3f000000
)

// Folder merges the results of helper moves into the modifier, constant and
// literal slots of the instructions using them.
type Folder struct {
    info   *InstrInfo
    layout Layout
    log    *slog.Logger
}

func NewFolder(info *InstrInfo) *Folder {
    return &Folder {
        info   : info,
        layout : info,
        log    : opts.DiscardLogger(),
    }
}

// SetLayout replaces the operand layout oracle, which defaults to the
// instruction info.
func (self *Folder) SetLayout(l Layout) {
    self.layout = l
}

func (self *Folder) SetLogger(l *slog.Logger) {
    if l != nil {
        self.log = l
    }
}

// Run folds every instruction of fn until nothing changes.
func (self *Folder) Run(fn *Func) {
    for _, bb := range fn.Blocks {
        for _, mi := range append([]*Instr(nil), bb.Instrs...) {
            if !fn.contains(mi) {
                continue
            }

            /* fold until idempotent */
            for {
                if nmi, ok := self.Fold(fn, mi); !ok {
                    break
                } else {
                    mi = nmi
                }
            }
        }
    }
}

// Fold tries a single fold on mi. On success, the rewritten instruction
// replaces mi in fn and the producer is erased once it has no users left.
func (self *Folder) Fold(fn *Func, mi *Instr) (*Instr, bool) {
    switch mi.Op {
        case OP_CLAMP_R600   : return self.foldClamp(fn, mi)
        case OP_REG_SEQUENCE : return self.foldSlots(fn, mi, self.regSequenceSlots(mi))
    }

    /* only instructions with modifier slots can absorb anything else */
    if !self.layout.HasInstrModifiers(mi.Op) {
        return mi, false
    } else {
        return self.foldSlots(fn, mi, self.sourceSlots(mi.Op))
    }
}

func (self *Folder) regSequenceSlots(mi *Instr) []slot {
    var ret []slot
    for i := 1; i < len(mi.Ops); i += 2 {
        ret = append(ret, slot { src: i, neg: -1, abs: -1, sel: -1, imm: -1 })
    }
    return ret
}

func (self *Folder) sourceSlots(op OpCode) []slot {
    var ret []slot
    imm := self.layout.OperandIdx(op, NameLiteral)

    /* every source shares the literal */
    for _, s := range self.info.Sources(op) {
        ret = append(ret, slot {
            src: self.layout.OperandIdx(op, s.Src),
            neg: self.layout.OperandIdx(op, s.Neg),
            abs: self.layout.OperandIdx(op, s.Abs),
            sel: self.layout.OperandIdx(op, s.Sel),
            imm: imm,
        })
    }
    return ret
}

func (self *Folder) foldSlots(fn *Func, mi *Instr, slots []slot) (*Instr, bool) {
    for _, s := range slots {
        if nmi, ok := self.foldSlot(fn, mi, s); ok {
            return nmi, true
        }
    }
    return mi, false
}

func (self *Folder) foldSlot(fn *Func, mi *Instr, s slot) (*Instr, bool) {
    var ok bool
    var hp helper
    var pi *Instr

    /* only virtual registers have a single producer */
    if v := mi.Ops[s.src]; !v.IsUse() || !v.Reg.IsVirtual() {
        return mi, false
    } else if pi = fn.DefOf(v.Reg); pi == nil {
        return mi, false
    } else if hp, ok = self.helperOf(pi); !ok {
        return mi, false
    }

    /* apply to a copy, mi is left untouched on failure */
    reg := mi.Ops[s.src].Reg
    nmi := mi.Clone()
    if !self.apply(nmi, s, hp) {
        return mi, false
    }

    /* commit the rewritten instruction */
    fn.Replace(mi, nmi)
    self.log.Debug("operand folded", "instr", nmi.String(), "from", pi.String())

    /* the producer may be dead now */
    if !fn.HasUses(reg) {
        fn.Erase(pi)
    }
    return nmi, true
}

func (self *Folder) apply(mi *Instr, s slot, hp helper) bool {
    switch hp.kind {
        case helperNeg   : return !isSet(mi, s.abs) && self.applyModifier(mi, s.src, s.neg, hp.src)
        case helperAbs   : return self.applyModifier(mi, s.src, s.abs, hp.src)
        case helperConst : return self.applyConst(mi, s, hp.val)
        default          : return self.applyImm(mi, s, hp)
    }
}

// isSet reports whether the modifier operand at idx exists and is set. The
// hardware applies abs before neg, so a negated producer cannot be folded
// under an abs.
func isSet(mi *Instr, idx int) bool {
    return idx >= 0 && mi.Ops[idx].Imm != 0
}

func (self *Folder) applyModifier(mi *Instr, src int, mod int, val Operand) bool {
    if mod < 0 || mi.Ops[mod].Imm != 0 {
        return false
    } else {
        mi.Ops[src] = Use(val.Reg)
        mi.Ops[mod].Imm = 1
        return true
    }
}

func (self *Folder) applyConst(mi *Instr, s slot, sel int64) bool {
    if s.sel < 0 {
        return false
    }

    /* every constant read by the instruction, plus the new one */
    var consts []int64
    for _, v := range self.info.Sources(mi.Op) {
        si := self.layout.OperandIdx(mi.Op, v.Src)
        if mi.Ops[si].IsReg() && mi.Ops[si].Reg == target.ALU_CONST {
            consts = append(consts, mi.Ops[self.layout.OperandIdx(mi.Op, v.Sel)].Imm)
        }
    }

    /* check for the read port limit */
    if !self.layout.FitsConstReadLimitations(append(consts, sel)) {
        return false
    }

    /* read from the constant bank */
    mi.Ops[s.src] = Use(target.ALU_CONST)
    mi.Ops[s.sel].Imm = sel
    return true
}

func (self *Folder) applyImm(mi *Instr, s slot, hp helper) bool {
    if r, ok := inlineConst(hp); ok {
        mi.Ops[s.src] = Use(r)
        return true
    }

    /* the literal slot must be free or hold the same value */
    if s.imm < 0 {
        return false
    } else if cur := mi.Ops[s.imm].Imm; cur != 0 && cur != hp.val {
        return false
    }

    /* use the literal */
    mi.Ops[s.src] = Use(target.ALU_LITERAL_X)
    mi.Ops[s.imm].Imm = hp.val
    return true
}

// inlineConst maps an immediate to one of the hardware constant registers.
func inlineConst(hp helper) (target.Reg, bool) {
    switch hp.kind {
        case helperImmFloat: {
            switch hp.val {
                case 0        : return target.ZERO, true
                case _FP_ONE  : return target.ONE, true
                case _FP_HALF : return target.HALF, true
            }
        }
        case helperImmInt: {
            switch hp.val {
                case 0 : return target.ZERO, true
                case 1 : return target.ONE_INT, true
            }
        }
        case helperImmBits: {
            switch hp.val {
                case 0        : return target.ZERO, true
                case 1        : return target.ONE_INT, true
                case _FP_ONE  : return target.ONE, true
                case _FP_HALF : return target.HALF, true
            }
        }
    }
    return target.NoReg, false
}

// helperOf recognises a foldable producer, either as a placeholder or as
// the MOV it expands to.
func (self *Folder) helperOf(pi *Instr) (helper, bool) {
    switch pi.Op {
        case OP_FNEG_R600   : return helper { kind: helperNeg, src: pi.Operand(1) }, pi.Operand(1).IsReg()
        case OP_FABS_R600   : return helper { kind: helperAbs, src: pi.Operand(1) }, pi.Operand(1).IsReg()
        case OP_CONST_COPY  : return helper { kind: helperConst, val: pi.Operand(1).Imm }, pi.Operand(1).IsImm()
        case OP_MOV_IMM_I32 : return helper { kind: helperImmInt, val: pi.Operand(1).Imm }, pi.Operand(1).IsImm()
        case OP_MOV_IMM_F32 : return self.fpHelper(pi.Operand(1))
        case OP_MOV         : return self.movHelper(pi)
        default             : return helper{}, false
    }
}

func (self *Folder) fpHelper(v Operand) (helper, bool) {
    if v.Kind != KindFPImm {
        return helper{}, false
    } else {
        return helper { kind: helperImmFloat, val: v.Bits() }, true
    }
}

func (self *Folder) movHelper(pi *Instr) (helper, bool) {
    imm := func(name OpName) int64 { return pi.Ops[self.layout.OperandIdx(pi.Op, name)].Imm }
    src := pi.Ops[self.layout.OperandIdx(pi.Op, NameSrc0)]

    /* the move must be a plain copy apart from one source modifier */
    if imm(NameClamp) != 0 || imm(NameWrite) == 0 || !src.IsReg() {
        return helper{}, false
    }

    /* classify by source */
    neg, abs := imm(NameSrc0Neg), imm(NameSrc0Abs)
    switch {
        case neg != 0 && abs != 0            : return helper{}, false
        case src.Reg == target.ALU_LITERAL_X : return helper { kind: helperImmBits, val: imm(NameLiteral) }, neg == 0 && abs == 0
        case src.Reg == target.ALU_CONST     : return helper { kind: helperConst, val: imm(NameSrc0Sel) }, neg == 0 && abs == 0
        case neg != 0                        : return helper { kind: helperNeg, src: src }, true
        case abs != 0                        : return helper { kind: helperAbs, src: src }, true
        default                              : return helper{}, false
    }
}

// foldClamp sets the clamp bit of the producer of a CLAMP placeholder, the
// clamped copy of the producer takes the place of the placeholder.
func (self *Folder) foldClamp(fn *Func, mi *Instr) (*Instr, bool) {
    v := mi.Operand(1)
    if !v.IsUse() || !v.Reg.IsVirtual() {
        return mi, false
    }

    /* the producer needs a clamp slot */
    pi := fn.DefOf(v.Reg)
    if pi == nil || !self.layout.HasInstrModifiers(pi.Op) {
        return mi, false
    }

    /* locate the slots */
    ci := self.layout.OperandIdx(pi.Op, NameClamp)
    di := self.layout.OperandIdx(pi.Op, NameDst)
    if ci < 0 || di < 0 {
        return mi, false
    }

    /* rebuild the producer writing the clamped register */
    nmi := pi.Clone()
    nmi.Ops[ci] = Imm(1)
    nmi.Ops[di] = Def(regOperand(mi, 0))
    fn.Replace(mi, nmi)
    self.log.Debug("clamp folded", "instr", nmi.String())

    /* the unclamped result may be dead now */
    if !fn.HasUses(v.Reg) {
        fn.Erase(pi)
    }
    return nmi, true
}
