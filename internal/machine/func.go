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
    `strings`

    `github.com/cloudwego/r600isel/internal/target`
)

type BasicBlock struct {
    Id     int
    Instrs []*Instr
}

func (self *BasicBlock) String() string {
    var sb strings.Builder
    sb.WriteString(fmt.Sprintf("bb.%d:\n", self.Id))

    /* dump every instruction */
    for _, v := range self.Instrs {
        sb.WriteString("    ")
        sb.WriteString(v.String())
        sb.WriteByte('\n')
    }
    return sb.String()
}

// Func is the selected form of one function.
type Func struct {
    Info   *target.Function
    Blocks []*BasicBlock
    nvreg  int
}

func NewFunc(info *target.Function) *Func {
    return &Func { Info: info }
}

func (self *Func) NewBlock() *BasicBlock {
    bb := &BasicBlock { Id: len(self.Blocks) }
    self.Blocks = append(self.Blocks, bb)
    return bb
}

// Append adds mi to the end of bb.
func (self *Func) Append(bb *BasicBlock, mi *Instr) *Instr {
    self.reserve(mi)
    bb.Instrs = append(bb.Instrs, mi)
    return mi
}

// NewVReg allocates a virtual register not used anywhere in the function.
func (self *Func) NewVReg() target.Reg {
    self.nvreg++
    return target.Virtual(self.nvreg - 1)
}

func (self *Func) reserve(mi *Instr) {
    for _, v := range mi.Ops {
        if v.IsReg() && v.Reg.IsVirtual() && v.Reg.Index() >= self.nvreg {
            self.nvreg = v.Reg.Index() + 1
        }
    }
}

// DefOf returns the instruction defining r, or nil.
func (self *Func) DefOf(r target.Reg) *Instr {
    for _, bb := range self.Blocks {
        for _, mi := range bb.Instrs {
            for _, v := range mi.Ops {
                if v.IsReg() && v.Def && v.Reg == r {
                    return mi
                }
            }
        }
    }
    return nil
}

// HasUses reports whether any instruction reads r.
func (self *Func) HasUses(r target.Reg) bool {
    for _, bb := range self.Blocks {
        for _, mi := range bb.Instrs {
            for _, v := range mi.Ops {
                if v.IsUse() && v.Reg == r {
                    return true
                }
            }
        }
    }
    return false
}

// Erase removes mi from the function, it returns false if mi is not found.
func (self *Func) Erase(mi *Instr) bool {
    for _, bb := range self.Blocks {
        for i, v := range bb.Instrs {
            if v == mi {
                bb.Instrs = append(bb.Instrs[:i], bb.Instrs[i + 1:]...)
                return true
            }
        }
    }
    return false
}

// Replace puts mi in place of old, it returns false if old is not found.
func (self *Func) Replace(old *Instr, mi *Instr) bool {
    for _, bb := range self.Blocks {
        for i, v := range bb.Instrs {
            if v == old {
                self.reserve(mi)
                bb.Instrs[i] = mi
                return true
            }
        }
    }
    return false
}

func (self *Func) String() string {
    var sb strings.Builder
    for _, bb := range self.Blocks {
        sb.WriteString(bb.String())
    }
    return sb.String()
}

func (self *Func) contains(mi *Instr) bool {
    for _, bb := range self.Blocks {
        for _, v := range bb.Instrs {
            if v == mi {
                return true
            }
        }
    }
    return false
}
