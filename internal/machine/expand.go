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

    `github.com/samber/lo`

    `github.com/cloudwego/r600isel/internal/opts`
    `github.com/cloudwego/r600isel/internal/target`
    `github.com/cloudwego/r600isel/internal/utils`
)

const (
    _OPCODE_IS_NOT_ZERO     = 0x23
    _OPCODE_IS_NOT_ZERO_INT = 0x45
)

const (
    _CF_EXPORT_EG   = 84
    _CF_EXPORT_R600 = 40
)

const (
    _ExportOperands = 7
)

// Expander rewrites the placeholder instructions left by selection into
// real instruction sequences.
type Expander struct {
    info *InstrInfo
    log  *slog.Logger
}

func NewExpander(info *InstrInfo) *Expander {
    return &Expander {
        info : info,
        log  : opts.DiscardLogger(),
    }
}

func (self *Expander) SetLogger(l *slog.Logger) {
    if l != nil {
        self.log = l
    }
}

// Run expands every placeholder of every block of fn.
func (self *Expander) Run(fn *Func) {
    for _, bb := range fn.Blocks {
        b := fn.Builder(bb)

        /* scan the block, the builder skips what was inserted */
        for b.Valid() {
            if mi := b.Current(); mi.Op.NeedsExpansion() {
                self.log.Debug("expanding instruction", "block", bb.Id, "instr", mi.String())
                self.Expand(mi, b)
            }
            b.Advance()
        }
    }
}

// Expand rewrites mi, which must be the current instruction of b. Every
// placeholder is replaced and erased, except returns which gain implicit
// uses, and exports which are left alone when neither the last of their
// kind in the block nor at the end of the program.
func (self *Expander) Expand(mi *Instr, b *Builder) {
    if b.Current() != mi {
        utils.Fatalf("Expand", "%s is not the current instruction of the builder", mi.Op)
    }

    /* select by opcode */
    switch mi.Op {
        case OP_CLAMP_R600                 : self.expandModifier(mi, b, FlagClamp)
        case OP_FABS_R600                  : self.expandModifier(mi, b, FlagAbs)
        case OP_FNEG_R600                  : self.expandModifier(mi, b, FlagNeg)
        case OP_MASK_WRITE                 : self.expandMaskWrite(mi, b)
        case OP_MOV_IMM_F32                : self.expandMovImm(mi, b)
        case OP_MOV_IMM_I32                : self.expandMovImm(mi, b)
        case OP_CONST_COPY                 : self.expandConstCopy(mi, b)
        case OP_RAT_WRITE_CACHELESS_32_eg  : self.expandRatWrite(mi, b)
        case OP_RAT_WRITE_CACHELESS_64_eg  : self.expandRatWrite(mi, b)
        case OP_RAT_WRITE_CACHELESS_128_eg : self.expandRatWrite(mi, b)
        case OP_TXD                        : self.expandGradientSample(mi, b, OP_TEX_SAMPLE_G)
        case OP_TXD_SHADOW                 : self.expandGradientSample(mi, b, OP_TEX_SAMPLE_C_G)
        case OP_BRANCH                     : self.expandBranch(mi, b)
        case OP_BRANCH_COND_f32            : self.expandCondBranch(mi, b, _OPCODE_IS_NOT_ZERO)
        case OP_BRANCH_COND_i32            : self.expandCondBranch(mi, b, _OPCODE_IS_NOT_ZERO_INT)
        case OP_EG_ExportSwz               : self.expandExport(mi, b, _CF_EXPORT_EG)
        case OP_R600_ExportSwz             : self.expandExport(mi, b, _CF_EXPORT_R600)
        case OP_RETURN                     : self.expandReturn(mi, b)
        default                            : self.expandDefault(mi, b)
    }
}

func (self *Expander) expandDefault(mi *Instr, b *Builder) {
    if mi.Op.IsLDSReturn() {
        self.expandLDS(mi, b)
    } else {
        utils.Fatalf("Expand", "no expansion for %s", mi.Op)
    }
}

func (self *Expander) replace(b *Builder, mi ...*Instr) {
    for _, v := range mi {
        b.InsertBefore(v)
    }
    b.Erase()
}

func regOperand(mi *Instr, i int) target.Reg {
    if v := mi.Operand(i); !v.IsReg() {
        utils.Fatalf("Expand", "operand %d of %s is not a register", i, mi.Op)
        panic("unreachable")
    } else {
        return v.Reg
    }
}

func immOperand(mi *Instr, i int) int64 {
    if v := mi.Operand(i); !v.IsImm() {
        utils.Fatalf("Expand", "operand %d of %s is not an immediate", i, mi.Op)
        panic("unreachable")
    } else {
        return v.Imm
    }
}

func boolImm(v bool) Operand {
    if v {
        return Imm(1)
    } else {
        return Imm(0)
    }
}

func (self *Expander) expandModifier(mi *Instr, b *Builder, flag Flag) {
    nmi := self.info.DefaultInstr(OP_MOV, regOperand(mi, 0), regOperand(mi, 1), target.NoReg)
    self.info.AddFlag(nmi, 0, flag)
    self.replace(b, nmi)
}

func (self *Expander) expandMaskWrite(mi *Instr, b *Builder) {
    r := regOperand(mi, 0)
    def := b.Func().DefOf(r)

    /* the masked value must be defined in this function */
    if def == nil {
        utils.Fatalf("Expand", "masked register %s has no definition", r)
    }

    /* disable the write of the producer */
    self.info.AddFlag(def, 0, FlagMask)
    b.Erase()
}

func (self *Expander) expandMovImm(mi *Instr, b *Builder) {
    switch v := mi.Operand(1); v.Kind {
        case KindImm, KindFPImm : self.replace(b, self.info.MovImm(regOperand(mi, 0), v.Bits()))
        default                 : utils.Fatalf("Expand", "%s without an immediate", mi.Op)
    }
}

func (self *Expander) expandConstCopy(mi *Instr, b *Builder) {
    nmi := self.info.DefaultInstr(OP_MOV, regOperand(mi, 0), target.ALU_CONST, target.NoReg)
    self.info.SetImmOperand(nmi, NameSrc0Sel, immOperand(mi, 1))
    self.replace(b, nmi)
}

func (self *Expander) expandRatWrite(mi *Instr, b *Builder) {
    if len(mi.Ops) == 2 {
        eop := b.NextOpcode() == OP_RETURN
        self.replace(b, NewInstr(mi.Op, mi.Ops[0], mi.Ops[1], boolImm(eop)))
    }
}

func (self *Expander) expandGradientSample(mi *Instr, b *Builder, sample OpCode) {
    fn := b.Func()
    rid := immOperand(mi, 4)
    sid := immOperand(mi, 5)
    lay := target.LayoutOf(target.TextureShape(immOperand(mi, 6)))

    /* operands shared by all three instructions */
    tail := func(dst Operand, src Operand) []Operand {
        ret := []Operand { dst, src }
        for _, v := range lay.Src {
            ret = append(ret, Imm(v))
        }
        ret = append(ret, Imm(0), Imm(0), Imm(0), Imm(0), Imm(1), Imm(2), Imm(3), Imm(rid), Imm(sid))
        for _, v := range lay.CT {
            ret = append(ret, Imm(v))
        }
        return ret
    }

    /* set both gradients, then sample with them */
    t0, t1 := fn.NewVReg(), fn.NewVReg()
    hs := NewInstr(OP_TEX_SET_GRADIENTS_H, tail(Def(t0), Use(regOperand(mi, 3)))...)
    vs := NewInstr(OP_TEX_SET_GRADIENTS_V, tail(Def(t1), Use(regOperand(mi, 2)))...)
    tx := NewInstr(sample, append(tail(mi.Operand(0), mi.Operand(1)), ImplicitUse(t0), ImplicitUse(t1))...)
    self.replace(b, hs, vs, tx)
}

func (self *Expander) expandBranch(mi *Instr, b *Builder) {
    self.replace(b, NewInstr(OP_JUMP, mi.Operand(0)))
}

func (self *Expander) expandCondBranch(mi *Instr, b *Builder, cond int64) {
    pred := NewInstr(OP_PRED_X, Def(target.PREDICATE_BIT), Use(regOperand(mi, 1)), Imm(cond), Imm(0))
    self.info.AddFlag(pred, 0, FlagPush)
    self.replace(b, pred, NewInstr(OP_JUMP_COND, mi.Operand(0), Kill(target.PREDICATE_BIT)))
}

func (self *Expander) expandExport(mi *Instr, b *Builder, cf int64) {
    if len(mi.Ops) != _ExportOperands {
        return
    }

    /* the last export of a kind is marked */
    kind := immOperand(mi, 1)
    last := !lo.ContainsBy(b.Following(), func(v *Instr) bool {
        return v.Op.IsExport() && len(v.Ops) > 1 && v.Ops[1].IsImm() && v.Ops[1].Imm == kind
    })

    /* neither the last one nor the end of the program */
    eop := b.NextOpcode() == OP_RETURN
    if !eop && !last {
        return
    }

    /* add the control flow fields */
    ops := append(append([]Operand(nil), mi.Ops...), Imm(cf), boolImm(eop))
    self.replace(b, NewInstr(mi.Op, ops...))
}

func (self *Expander) expandReturn(mi *Instr, b *Builder) {
    if lo.SomeBy(mi.Ops, func(v Operand) bool { return v.Implicit }) {
        return
    }

    /* keep the live-outs alive up to the return */
    mi.Ops = append(mi.Ops, lo.Map(b.Func().Info.LiveOuts, func(r target.Reg, _ int) Operand {
        return ImplicitUse(r)
    })...)
}

func (self *Expander) expandLDS(mi *Instr, b *Builder) {
    if !b.Func().HasUses(regOperand(mi, 0)) {
        self.replace(b, NewInstr(mi.Op.LDSNoReturn(), mi.Ops[1:]...))
    }
}
