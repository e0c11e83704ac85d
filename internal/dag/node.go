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

package dag

import (
    `fmt`
    `math`
    `strings`
)

type AddrSpace uint8

const (
    Private AddrSpace = iota
    Global
    Constant
    Local
    Region
)

const (
    ConstantBuffer0 AddrSpace = 8 + iota
    ConstantBuffer1
    ConstantBuffer2
    ConstantBuffer3
    ConstantBuffer4
    ConstantBuffer5
    ConstantBuffer6
    ConstantBuffer7
    ConstantBuffer8
    ConstantBuffer9
    ConstantBuffer10
    ConstantBuffer11
    ConstantBuffer12
    ConstantBuffer13
    ConstantBuffer14
    ConstantBuffer15
)

// ConstantBank returns the bank index of a constant buffer address space.
func (self AddrSpace) ConstantBank() (int, bool) {
    if self >= ConstantBuffer0 && self <= ConstantBuffer15 {
        return int(self - ConstantBuffer0), true
    } else {
        return -1, false
    }
}

func ParseAddrSpace(s string) (AddrSpace, bool) {
    switch s {
        case "private"  : return Private, true
        case "global"   : return Global, true
        case "constant" : return Constant, true
        case "local"    : return Local, true
        case "region"   : return Region, true
    }
    var bank int
    if n, err := fmt.Sscanf(s, "cb%d", &bank); err == nil && n == 1 && bank >= 0 && bank < 16 {
        return ConstantBuffer0 + AddrSpace(bank), true
    }
    return Private, false
}

func (self AddrSpace) String() string {
    switch self {
        case Private  : return "private"
        case Global   : return "global"
        case Constant : return "constant"
        case Local    : return "local"
        case Region   : return "region"
    }
    if bank, ok := self.ConstantBank(); ok {
        return fmt.Sprintf("cb%d", bank)
    } else {
        return fmt.Sprintf("as(%d)", self)
    }
}

type ExtKind uint8

const (
    NonExt ExtKind = iota
    AnyExt
    SExt
    ZExt
)

func (self ExtKind) String() string {
    switch self {
        case NonExt : return ""
        case AnyExt : return "extload"
        case SExt   : return "sextload"
        case ZExt   : return "zextload"
        default     : panic("unreachable")
    }
}

func ParseExtKind(s string) (ExtKind, bool) {
    switch s {
        case ""         : return NonExt, true
        case "extload"  : return AnyExt, true
        case "sextload" : return SExt, true
        case "zextload" : return ZExt, true
        default         : return NonExt, false
    }
}

// MemOperand describes the memory access of a load, store or a memory
// intrinsic node.
type MemOperand struct {
    Space    AddrSpace
    MemVT    VT
    Ext      ExtKind
    Trunc    bool
    Indexed  bool
    ConstSrc bool
}

func (self *MemOperand) String() string {
    var ret []string
    if self.Ext != NonExt {
        ret = append(ret, self.Ext.String())
    }
    if self.Trunc {
        ret = append(ret, "trunc")
    }
    if self.Indexed {
        ret = append(ret, "indexed")
    }
    if self.ConstSrc {
        ret = append(ret, "const")
    }
    ret = append(ret, self.MemVT.String(), self.Space.String())
    return strings.Join(ret, " ")
}

type NodeID uint32

// Value is one result of a node.
type Value struct {
    ID  NodeID
    Res uint8
}

func (self Value) Valid() bool {
    return self.ID != 0
}

func (self Value) String() string {
    if self.Res == 0 {
        return fmt.Sprintf("t%d", self.ID)
    } else {
        return fmt.Sprintf("t%d:%d", self.ID, self.Res)
    }
}

// Node is an immutable operation in the graph. Nodes are only created through
// the DAG, which hash-conses them.
type Node struct {
    Op    Opcode
    Types []VT
    Args  []Value
    Imm   int64
    Fp    float64
    CC    CondCode
    Mem   *MemOperand
}

func (self *Node) Intrinsic() Intrinsic {
    return Intrinsic(self.Imm)
}

func (self *Node) IsConstant() bool {
    return self.Op == OpConstant
}

// IsZero reports whether the node is the integer or floating point zero.
func (self *Node) IsZero() bool {
    switch self.Op {
        case OpConstant   : return self.Imm == 0
        case OpConstantFP : return self.Fp == 0
        default           : return false
    }
}

func (self *Node) key() string {
    var sb strings.Builder
    fmt.Fprintf(&sb, "%d|", self.Op)
    for _, t := range self.Types {
        fmt.Fprintf(&sb, "%d,", t)
    }
    sb.WriteByte('|')
    for _, a := range self.Args {
        fmt.Fprintf(&sb, "%d.%d,", a.ID, a.Res)
    }
    fmt.Fprintf(&sb, "|%d|%x|%d", self.Imm, math.Float64bits(self.Fp), self.CC)
    if self.Mem != nil {
        fmt.Fprintf(&sb, "|%+v", *self.Mem)
    }
    return sb.String()
}
