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

// Builder edits one basic block around a current instruction.
type Builder struct {
    fn     *Func
    bb     *BasicBlock
    pos    int
    erased bool
}

func (self *Func) Builder(bb *BasicBlock) *Builder {
    return &Builder {
        fn : self,
        bb : bb,
    }
}

func (self *Builder) Func() *Func {
    return self.fn
}

// Valid reports whether the builder is positioned on an instruction.
func (self *Builder) Valid() bool {
    return self.pos < len(self.bb.Instrs)
}

func (self *Builder) Current() *Instr {
    if self.erased || !self.Valid() {
        return nil
    } else {
        return self.bb.Instrs[self.pos]
    }
}

// InsertBefore inserts mi right before the current instruction.
func (self *Builder) InsertBefore(mi *Instr) *Instr {
    self.fn.reserve(mi)
    self.bb.Instrs = append(self.bb.Instrs, nil)
    copy(self.bb.Instrs[self.pos + 1:], self.bb.Instrs[self.pos:])
    self.bb.Instrs[self.pos] = mi
    self.pos++
    return mi
}

// Following returns the instructions after the current one.
func (self *Builder) Following() []*Instr {
    if self.erased {
        return self.bb.Instrs[self.pos:]
    } else if self.Valid() {
        return self.bb.Instrs[self.pos + 1:]
    } else {
        return nil
    }
}

// NextOpcode returns the opcode of the instruction after the current one,
// or OP_invalid at the end of the block.
func (self *Builder) NextOpcode() OpCode {
    if next := self.Following(); len(next) == 0 {
        return OP_invalid
    } else {
        return next[0].Op
    }
}

// Erase removes the current instruction.
func (self *Builder) Erase() {
    if !self.erased && self.Valid() {
        self.erased = true
        self.bb.Instrs = append(self.bb.Instrs[:self.pos], self.bb.Instrs[self.pos + 1:]...)
    }
}

// Advance moves to the next instruction.
func (self *Builder) Advance() bool {
    if self.erased {
        self.erased = false
    } else if self.Valid() {
        self.pos++
    }
    return self.Valid()
}
