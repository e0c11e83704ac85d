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

package target

import (
    `fmt`
    `strconv`
    `strings`
)

// Reg is a register reference.
//
//     bit 31     : virtual register flag
//     bit 28..30 : register kind (physical only)
//     bit 2..27  : register index
//     bit 0..1   : channel (temp registers only)
//
type Reg uint32

const (
    _B_virt  = 31
    _B_kind  = 28
    _B_index = 2
)

const (
    _M_kind  = 0x07
    _M_index = (1 << (_B_kind - _B_index)) - 1
    _M_chan  = 0x03
)

const (
    _K_none    = 0
    _K_special = 1
    _K_temp    = 2
)

const (
    NoReg Reg = 0
)

const (
    ALU_CONST Reg = (_K_special << _B_kind) | (iota << _B_index)
    ALU_LITERAL_X
    ZERO
    ONE
    ONE_INT
    HALF
    PREDICATE_BIT
    PRED_SEL_OFF
)

var _SpecialNames = map[Reg]string {
    ALU_CONST     : "ALU_CONST",
    ALU_LITERAL_X : "ALU_LITERAL_X",
    ZERO          : "ZERO",
    ONE           : "ONE",
    ONE_INT       : "ONE_INT",
    HALF          : "HALF",
    PREDICATE_BIT : "PREDICATE_BIT",
    PRED_SEL_OFF  : "PRED_SEL_OFF",
}

// T returns the channel chan of the 128-bit temp register index.
func T(index int, chan_ int) Reg {
    if index < 0 || index > _M_index || chan_ < 0 || chan_ > _M_chan {
        panic(fmt.Sprintf("invalid temp register T%d.%d", index, chan_))
    } else {
        return Reg((_K_temp << _B_kind) | (index << _B_index) | chan_)
    }
}

// TReg32 returns the i-th 32-bit temp register, T0.X, T0.Y, T0.Z, T0.W, T1.X, ...
func TReg32(i int) Reg {
    return T(i / 4, i % 4)
}

// Virtual returns the n-th virtual register.
func Virtual(n int) Reg {
    if n < 0 || n >= 1 << _B_virt {
        panic(fmt.Sprintf("invalid virtual register %d", n))
    } else {
        return Reg((1 << _B_virt) | n)
    }
}

func (self Reg) IsVirtual() bool {
    return self & (1 << _B_virt) != 0
}

func (self Reg) kind() int {
    if self.IsVirtual() {
        return _K_none
    } else {
        return int(self >> _B_kind) & _M_kind
    }
}

func (self Reg) IsTemp() bool {
    return !self.IsVirtual() && self.kind() == _K_temp
}

func (self Reg) IsSpecial() bool {
    return !self.IsVirtual() && self.kind() == _K_special
}

// Index returns the register index, or the number of a virtual register.
func (self Reg) Index() int {
    if self.IsVirtual() {
        return int(self &^ (1 << _B_virt))
    } else {
        return int(self >> _B_index) & _M_index
    }
}

func (self Reg) Chan() int {
    return int(self & _M_chan)
}

func (self Reg) String() string {
    switch {
        case self == NoReg     : return "$noreg"
        case self.IsVirtual()  : return fmt.Sprintf("%%%d", self.Index())
        case self.IsTemp()     : return fmt.Sprintf("T%d.%c", self.Index(), "XYZW"[self.Chan()])
        case self.IsSpecial()  : return _SpecialNames[self]
        default                : return fmt.Sprintf("$reg(%#x)", uint32(self))
    }
}

// ParseReg parses a register in the form printed by String.
func ParseReg(s string) (Reg, bool) {
    if s == "$noreg" {
        return NoReg, true
    }

    /* special registers */
    for r, name := range _SpecialNames {
        if name == s {
            return r, true
        }
    }

    /* virtual registers */
    if strings.HasPrefix(s, "%") {
        if n, err := strconv.Atoi(s[1:]); err != nil || n < 0 || n >= 1 << _B_virt {
            return NoReg, false
        } else {
            return Virtual(n), true
        }
    }

    /* temp registers, T<index>.<chan> */
    p := strings.IndexByte(s, '.')
    if !strings.HasPrefix(s, "T") || p < 0 || p != len(s) - 2 {
        return NoReg, false
    }

    /* parse both parts */
    idx, err := strconv.Atoi(s[1:p])
    ch := strings.IndexByte("XYZW", s[p + 1])
    if err != nil || idx < 0 || idx > _M_index || ch < 0 {
        return NoReg, false
    } else {
        return T(idx, ch), true
    }
}
