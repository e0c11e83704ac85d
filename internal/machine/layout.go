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
)

// OpName names an operand slot independently of its position.
type OpName uint8

const (
    NameNone OpName = iota
    NameDst
    NameWrite
    NameClamp
    NameSrc0
    NameSrc0Neg
    NameSrc0Abs
    NameSrc0Sel
    NameSrc1
    NameSrc1Neg
    NameSrc1Abs
    NameSrc1Sel
    NameSrc2
    NameSrc2Neg
    NameSrc2Sel
    NameLast
    NamePredSel
    NameLiteral
    NameCond
    NameFlags
    NameImm

    /* per-lane sources of DOT_4, in operand order */
    NameSrc0X
    NameSrc0NegX
    NameSrc0AbsX
    NameSrc0SelX
    NameSrc1X
    NameSrc1NegX
    NameSrc1AbsX
    NameSrc1SelX
    NameSrc0Y
    NameSrc0NegY
    NameSrc0AbsY
    NameSrc0SelY
    NameSrc1Y
    NameSrc1NegY
    NameSrc1AbsY
    NameSrc1SelY
    NameSrc0Z
    NameSrc0NegZ
    NameSrc0AbsZ
    NameSrc0SelZ
    NameSrc1Z
    NameSrc1NegZ
    NameSrc1AbsZ
    NameSrc1SelZ
    NameSrc0W
    NameSrc0NegW
    NameSrc0AbsW
    NameSrc0SelW
    NameSrc1W
    NameSrc1NegW
    NameSrc1AbsW
    NameSrc1SelW

    _NameCount
)

var _NameStrings = [...]string {
    NameNone    : "none",
    NameDst     : "dst",
    NameWrite   : "write",
    NameClamp   : "clamp",
    NameSrc0    : "src0",
    NameSrc0Neg : "src0_neg",
    NameSrc0Abs : "src0_abs",
    NameSrc0Sel : "src0_sel",
    NameSrc1    : "src1",
    NameSrc1Neg : "src1_neg",
    NameSrc1Abs : "src1_abs",
    NameSrc1Sel : "src1_sel",
    NameSrc2    : "src2",
    NameSrc2Neg : "src2_neg",
    NameSrc2Sel : "src2_sel",
    NameLast    : "last",
    NamePredSel : "pred_sel",
    NameLiteral : "literal",
    NameCond    : "cond",
    NameFlags   : "flags",
    NameImm     : "imm",
}

func (self OpName) String() string {
    if self < NameSrc0X {
        return _NameStrings[self]
    } else if self < _NameCount {
        n := self - NameSrc0X
        return fmt.Sprintf("%s_%c", [...]string { "src0", "src0_neg", "src0_abs", "src0_sel", "src1", "src1_neg", "src1_abs", "src1_sel" }[n % 8], "XYZW"[n / 8])
    } else {
        return fmt.Sprintf("OpName(%d)", self)
    }
}

// Source groups the operand names of one foldable source position. Abs is
// NameNone where the position has no absolute-value modifier.
type Source struct {
    Src OpName
    Neg OpName
    Abs OpName
    Sel OpName
}

var _AluSources = [...]Source {
    { Src: NameSrc0, Neg: NameSrc0Neg, Abs: NameSrc0Abs, Sel: NameSrc0Sel },
    { Src: NameSrc1, Neg: NameSrc1Neg, Abs: NameSrc1Abs, Sel: NameSrc1Sel },
    { Src: NameSrc2, Neg: NameSrc2Neg, Abs: NameNone,    Sel: NameSrc2Sel },
}

var _Dot4Sources = func() (ret [8]Source) {
    for i := range ret {
        base := NameSrc0X + OpName(i / 2 * 8 + i % 2 * 4)
        ret[i] = Source { Src: base, Neg: base + 1, Abs: base + 2, Sel: base + 3 }
    }
    return
}()

type layout struct {
    names   []OpName
    index   [_NameCount]int8
    sources []Source
    mods    bool
}

func newLayout(mods bool, names ...OpName) *layout {
    ret := &layout {
        names : names,
        mods  : mods,
    }

    /* no name is present by default */
    for i := range ret.index {
        ret.index[i] = -1
    }

    /* index every name */
    for i, v := range names {
        ret.index[v] = int8(i)
    }

    /* collect the foldable sources */
    for _, s := range _AluSources {
        if ret.index[s.Src] >= 0 {
            ret.sources = append(ret.sources, s)
        }
    }
    for _, s := range _Dot4Sources {
        if ret.index[s.Src] >= 0 {
            ret.sources = append(ret.sources, s)
        }
    }
    return ret
}

func (self *layout) has(name OpName) bool {
    return name != NameNone && self.index[name] >= 0
}

var (
    _Alu1Layout = newLayout(true,
        NameDst, NameWrite, NameClamp,
        NameSrc0, NameSrc0Neg, NameSrc0Abs, NameSrc0Sel,
        NameLast, NamePredSel, NameLiteral,
    )
    _Alu2Layout = newLayout(true,
        NameDst, NameWrite, NameClamp,
        NameSrc0, NameSrc0Neg, NameSrc0Abs, NameSrc0Sel,
        NameSrc1, NameSrc1Neg, NameSrc1Abs, NameSrc1Sel,
        NameLast, NamePredSel, NameLiteral,
    )
    _Alu3Layout = newLayout(true,
        NameDst, NameClamp,
        NameSrc0, NameSrc0Neg, NameSrc0Sel,
        NameSrc1, NameSrc1Neg, NameSrc1Sel,
        NameSrc2, NameSrc2Neg, NameSrc2Sel,
        NameLast, NamePredSel, NameLiteral,
    )
    _Dot4Layout = newLayout(true, func() []OpName {
        ret := []OpName { NameDst, NameWrite, NameClamp }
        for v := NameSrc0X; v <= NameSrc1SelW; v++ {
            ret = append(ret, v)
        }
        return append(ret, NameLast, NamePredSel, NameLiteral)
    }()...)
    _PredLayout   = newLayout(false, NameDst, NameSrc0, NameCond, NameFlags)
    _UnaryLayout  = newLayout(false, NameDst, NameSrc0)
    _ImmLayout    = newLayout(false, NameDst, NameImm)
)

var _Layouts = [_OP_count]*layout {
    OP_MOV         : _Alu1Layout,
    OP_FRACT       : _Alu1Layout,
    OP_SIN         : _Alu1Layout,
    OP_COS         : _Alu1Layout,
    OP_ADD         : _Alu2Layout,
    OP_MUL_IEEE    : _Alu2Layout,
    OP_MAX         : _Alu2Layout,
    OP_MIN         : _Alu2Layout,
    OP_SETGT       : _Alu2Layout,
    OP_SETE        : _Alu2Layout,
    OP_ADD_INT     : _Alu2Layout,
    OP_AND_INT     : _Alu2Layout,
    OP_MULADD      : _Alu3Layout,
    OP_CNDE        : _Alu3Layout,
    OP_CNDGT       : _Alu3Layout,
    OP_CNDGE       : _Alu3Layout,
    OP_CNDE_INT    : _Alu3Layout,
    OP_DOT_4       : _Dot4Layout,
    OP_PRED_X      : _PredLayout,
    OP_CLAMP_R600  : _UnaryLayout,
    OP_FABS_R600   : _UnaryLayout,
    OP_FNEG_R600   : _UnaryLayout,
    OP_MOV_IMM_F32 : _ImmLayout,
    OP_MOV_IMM_I32 : _ImmLayout,
    OP_CONST_COPY  : _ImmLayout,
}

// Names returns the operand names of op in operand order, or nil if the
// opcode has no fixed layout.
func Names(op OpCode) []OpName {
    if op < _OP_count && _Layouts[op] != nil {
        return _Layouts[op].names
    } else {
        return nil
    }
}
