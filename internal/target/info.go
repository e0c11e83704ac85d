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

    `github.com/cloudwego/r600isel/internal/dag`
)

type Generation uint8

const (
    R600 Generation = iota
    R700
    Evergreen
    Cayman
)

func ParseGeneration(s string) (Generation, bool) {
    switch s {
        case "r600"      : return R600, true
        case "r700"      : return R700, true
        case "evergreen" : return Evergreen, true
        case "cayman"    : return Cayman, true
        default          : return R600, false
    }
}

func (self Generation) String() string {
    switch self {
        case R600      : return "r600"
        case R700      : return "r700"
        case Evergreen : return "evergreen"
        case Cayman    : return "cayman"
        default        : return fmt.Sprintf("gen(%d)", self)
    }
}

type Action uint8

const (
    Legal Action = iota
    Expand
    Custom
)

func (self Action) String() string {
    switch self {
        case Legal  : return "legal"
        case Expand : return "expand"
        case Custom : return "custom"
        default     : panic("unreachable")
    }
}

// Legality answers whether an operation or a comparison is natively
// supported by the hardware.
type Legality interface {
    IsCondCodeLegal(cc dag.CondCode, vt dag.VT) bool
    IsOperationLegal(op dag.Opcode, vt dag.VT) bool
}

type opKey struct {
    op dag.Opcode
    vt dag.VT
}

type ccKey struct {
    cc dag.CondCode
    vt dag.VT
}

type extKey struct {
    ext dag.ExtKind
    vt  dag.VT
}

type truncKey struct {
    val dag.VT
    mem dag.VT
}

// Info is the read-only action table of one target configuration. It is built
// once and can be shared by any number of functions being lowered.
type Info struct {
    Gen            Generation
    ConstReadLimit int
    regs           map[dag.VT]bool
    ops            map[opKey]Action
    ccs            map[ccKey]Action
    exts           map[extKey]Action
    truncs         map[truncKey]Action
}

func NewInfo(gen Generation, constReadLimit int) *Info {
    ret := &Info {
        Gen            : gen,
        ConstReadLimit : constReadLimit,
        regs           : make(map[dag.VT]bool),
        ops            : make(map[opKey]Action),
        ccs            : make(map[ccKey]Action),
        exts           : make(map[extKey]Action),
        truncs         : make(map[truncKey]Action),
    }
    ret.init()
    return ret
}

func (self *Info) init() {
    for _, vt := range []dag.VT { dag.V4F32, dag.F32, dag.V4I32, dag.I32, dag.V2F32, dag.V2I32 } {
        self.regs[vt] = true
    }

    /* comparisons with no native form */
    for _, cc := range []dag.CondCode {
        dag.SETO,
        dag.SETUO,
        dag.SETLT,
        dag.SETLE,
        dag.SETOLT,
        dag.SETOLE,
        dag.SETONE,
        dag.SETUEQ,
        dag.SETUGE,
        dag.SETUGT,
        dag.SETULT,
        dag.SETULE,
    } {
        self.ccs[ccKey { cc, dag.F32 }] = Expand
    }
    for _, cc := range []dag.CondCode { dag.SETLE, dag.SETLT, dag.SETULE, dag.SETULT } {
        self.ccs[ccKey { cc, dag.I32 }] = Expand
    }

    /* custom lowered operations */
    self.setOp(dag.OpFCos, dag.F32, Custom)
    self.setOp(dag.OpFSin, dag.F32, Custom)
    self.setOp(dag.OpIntrinsicVoid, dag.Other, Custom)
    self.setOp(dag.OpIntrinsicWOChain, dag.Other, Custom)
    self.setOp(dag.OpIntrinsicWOChain, dag.I1, Custom)
    self.setOp(dag.OpSelectCC, dag.F32, Custom)
    self.setOp(dag.OpSelectCC, dag.I32, Custom)
    self.setOp(dag.OpFpToUint, dag.I1, Custom)

    /* expanded by the generic legalizer */
    self.setOp(dag.OpSetCC, dag.V4I32, Expand)
    self.setOp(dag.OpSetCC, dag.V2I32, Expand)
    self.setOp(dag.OpSetCC, dag.I32, Expand)
    self.setOp(dag.OpSetCC, dag.F32, Expand)
    self.setOp(dag.OpFSub, dag.F32, Expand)

    /* memory operations, floats go through the same paths as integers */
    for _, vt := range []dag.VT { dag.I32, dag.V2I32, dag.V4I32, dag.F32, dag.V2F32, dag.V4F32 } {
        self.setOp(dag.OpLoad, vt, Custom)
        self.setOp(dag.OpStore, vt, Custom)
    }
    self.setOp(dag.OpStore, dag.I8, Custom)
    for _, ext := range []dag.ExtKind { dag.SExt, dag.ZExt, dag.AnyExt } {
        self.exts[extKey { ext, dag.I8 }] = Custom
        self.exts[extKey { ext, dag.I16 }] = Custom
    }
    self.truncs[truncKey { dag.I32, dag.I8 }] = Custom
    self.truncs[truncKey { dag.I32, dag.I16 }] = Custom
}

func (self *Info) setOp(op dag.Opcode, vt dag.VT, act Action) {
    self.ops[opKey { op, vt }] = act
}

// IsTypeLegal reports whether a register class holds values of vt.
func (self *Info) IsTypeLegal(vt dag.VT) bool {
    return self.regs[vt]
}

func (self *Info) OperationAction(op dag.Opcode, vt dag.VT) Action {
    return self.ops[opKey { op, vt }]
}

func (self *Info) CondCodeAction(cc dag.CondCode, vt dag.VT) Action {
    return self.ccs[ccKey { cc, vt }]
}

func (self *Info) LoadExtAction(ext dag.ExtKind, mem dag.VT) Action {
    return self.exts[extKey { ext, mem }]
}

func (self *Info) TruncStoreAction(val dag.VT, mem dag.VT) Action {
    return self.truncs[truncKey { val, mem }]
}

func (self *Info) IsCondCodeLegal(cc dag.CondCode, vt dag.VT) bool {
    return self.CondCodeAction(cc, vt) == Legal
}

func (self *Info) IsOperationLegal(op dag.Opcode, vt dag.VT) bool {
    return (vt == dag.Other || self.IsTypeLegal(vt)) && self.OperationAction(op, vt) == Legal
}

// NodeAction returns how the node must be legalized. Memory operations are
// keyed by their extension or truncation, intrinsics by the chain type.
func (self *Info) NodeAction(n *dag.Node) Action {
    switch n.Op {
        case dag.OpLoad: {
            if n.Mem.Ext != dag.NonExt {
                return self.LoadExtAction(n.Mem.Ext, n.Mem.MemVT)
            } else {
                return self.OperationAction(dag.OpLoad, n.Types[0])
            }
        }

        /* stores are keyed by the stored value type */
        case dag.OpStore: {
            if n.Mem.Trunc {
                return self.TruncStoreAction(dag.I32, n.Mem.MemVT)
            } else {
                return self.OperationAction(dag.OpStore, n.Mem.MemVT)
            }
        }

        /* intrinsics */
        case dag.OpIntrinsicVoid, dag.OpIntrinsicWOChain: {
            if act := self.OperationAction(n.Op, n.Types[0]); act != Legal {
                return act
            } else {
                return self.OperationAction(n.Op, dag.Other)
            }
        }

        /* everything else is keyed by the first result */
        default: {
            if len(n.Types) == 0 {
                return Legal
            } else {
                return self.OperationAction(n.Op, n.Types[0])
            }
        }
    }
}
