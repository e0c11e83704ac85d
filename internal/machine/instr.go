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
    `fmt`
    `math`
    `strings`

    `github.com/cloudwego/r600isel/internal/target`
)

type OperandKind uint8

const (
    KindReg OperandKind = iota
    KindImm
    KindFPImm
    KindBlock
)

// Operand is one slot of a selected instruction. Register operands may be
// definitions, implicit (not part of the encoding) or killed (last use).
type Operand struct {
    Kind     OperandKind
    Reg      target.Reg
    Imm      int64
    FP       float32
    Def      bool
    Implicit bool
    Kill     bool
}

func Use(r target.Reg) Operand {
    return Operand { Kind: KindReg, Reg: r }
}

func Def(r target.Reg) Operand {
    return Operand { Kind: KindReg, Reg: r, Def: true }
}

func Kill(r target.Reg) Operand {
    return Operand { Kind: KindReg, Reg: r, Kill: true }
}

func ImplicitUse(r target.Reg) Operand {
    return Operand { Kind: KindReg, Reg: r, Implicit: true }
}

func Imm(v int64) Operand {
    return Operand { Kind: KindImm, Imm: v }
}

func FPImm(v float32) Operand {
    return Operand { Kind: KindFPImm, FP: v }
}

// Block refers to the basic block with the given id.
func Block(id int) Operand {
    return Operand { Kind: KindBlock, Imm: int64(id) }
}

func (self Operand) IsReg() bool {
    return self.Kind == KindReg
}

func (self Operand) IsImm() bool {
    return self.Kind == KindImm
}

func (self Operand) IsUse() bool {
    return self.Kind == KindReg && !self.Def
}

// Bits returns the raw 32-bit encoding of an immediate operand.
func (self Operand) Bits() int64 {
    switch self.Kind {
        case KindImm   : return self.Imm
        case KindFPImm : return int64(math.Float32bits(self.FP))
        default        : panic("not an immediate operand")
    }
}

func (self Operand) String() string {
    switch self.Kind {
        case KindImm   : return fmt.Sprintf("%d", self.Imm)
        case KindFPImm : return fmt.Sprintf("%gf", self.FP)
        case KindBlock : return fmt.Sprintf("bb.%d", self.Imm)
    }

    /* register flags */
    var pfx string
    switch {
        case self.Def      : pfx = "def "
        case self.Implicit : pfx = "implicit "
        case self.Kill     : pfx = "killed "
    }
    return pfx + self.Reg.String()
}

// Instr is a selected instruction. The meaning of each operand position is
// given by the opcode's layout in InstrInfo.
type Instr struct {
    Op  OpCode
    Ops []Operand
}

func NewInstr(op OpCode, ops ...Operand) *Instr {
    return &Instr {
        Op  : op,
        Ops : ops,
    }
}

func (self *Instr) Clone() *Instr {
    return &Instr {
        Op  : self.Op,
        Ops : append([]Operand(nil), self.Ops...),
    }
}

// Dst returns the first register defined by the instruction.
func (self *Instr) Dst() (target.Reg, bool) {
    for _, v := range self.Ops {
        if v.Kind == KindReg && v.Def {
            return v.Reg, true
        }
    }
    return target.NoReg, false
}

// Operand returns operand i, which must exist.
func (self *Instr) Operand(i int) Operand {
    if i < 0 || i >= len(self.Ops) {
        panic(fmt.Sprintf("operand %d out of range for %s", i, self.Op))
    } else {
        return self.Ops[i]
    }
}

func (self *Instr) String() string {
    ops := make([]string, len(self.Ops))
    for i, v := range self.Ops {
        ops[i] = v.String()
    }
    return fmt.Sprintf("%s %s", self.Op, strings.Join(ops, ", "))
}
