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

type OpCode uint16

const (
    OP_invalid OpCode = iota

    /* ALU instructions */
    OP_MOV              // dst = src0
    OP_FRACT            // dst = src0 - floor(src0)
    OP_SIN              // dst = sin(src0 * 2pi)
    OP_COS              // dst = cos(src0 * 2pi)
    OP_ADD              // dst = src0 + src1
    OP_MUL_IEEE         // dst = src0 * src1
    OP_MAX              // dst = max(src0, src1)
    OP_MIN              // dst = min(src0, src1)
    OP_SETGT            // dst = src0 > src1 ? 1.0 : 0.0
    OP_SETE             // dst = src0 == src1 ? 1.0 : 0.0
    OP_ADD_INT          // dst = src0 + src1
    OP_AND_INT          // dst = src0 & src1
    OP_MULADD           // dst = src0 * src1 + src2
    OP_CNDE             // dst = src0 == 0.0 ? src1 : src2
    OP_CNDGT            // dst = src0 > 0.0 ? src1 : src2
    OP_CNDGE            // dst = src0 >= 0.0 ? src1 : src2
    OP_CNDE_INT         // dst = src0 == 0 ? src1 : src2
    OP_DOT_4            // dst = src0.xyzw . src1.xyzw
    OP_PRED_X           // dst = predicate(src0, cond), flags

    /* register groups */
    OP_REG_SEQUENCE     // dst = { src1 : sub2, src3 : sub4, ... }

    /* pseudo instructions that fold into their users */
    OP_CLAMP_R600       // dst = saturate(src0)
    OP_FABS_R600        // dst = |src0|
    OP_FNEG_R600        // dst = -src0
    OP_MOV_IMM_F32      // dst = fpimm
    OP_MOV_IMM_I32      // dst = imm
    OP_CONST_COPY       // dst = const[imm]
    OP_MASK_WRITE       // mark the producer of src0 as not writing its result

    /* memory */
    OP_RAT_WRITE_CACHELESS_32_eg
    OP_RAT_WRITE_CACHELESS_64_eg
    OP_RAT_WRITE_CACHELESS_128_eg

    /* local data share, with and without a returned value */
    OP_LDS_ADD_RET
    OP_LDS_SUB_RET
    OP_LDS_AND_RET
    OP_LDS_OR_RET
    OP_LDS_XOR_RET
    OP_LDS_MIN_INT_RET
    OP_LDS_MAX_INT_RET
    OP_LDS_MIN_UINT_RET
    OP_LDS_MAX_UINT_RET
    OP_LDS_WRXCHG_RET
    OP_LDS_ADD
    OP_LDS_SUB
    OP_LDS_AND
    OP_LDS_OR
    OP_LDS_XOR
    OP_LDS_MIN_INT
    OP_LDS_MAX_INT
    OP_LDS_MIN_UINT
    OP_LDS_MAX_UINT
    OP_LDS_WRXCHG

    /* texture */
    OP_TXD              // gradient sample
    OP_TXD_SHADOW       // gradient sample with comparison
    OP_TEX_SET_GRADIENTS_H
    OP_TEX_SET_GRADIENTS_V
    OP_TEX_SAMPLE_G
    OP_TEX_SAMPLE_C_G

    /* control flow */
    OP_BRANCH           // goto block
    OP_BRANCH_COND_f32  // if src1 != 0.0 goto block
    OP_BRANCH_COND_i32  // if src1 != 0 goto block
    OP_JUMP
    OP_JUMP_COND
    OP_RETURN

    /* exports */
    OP_EG_ExportSwz
    OP_R600_ExportSwz

    _OP_count
)

var _OpNames = [...]string {
    OP_invalid                    : "(invalid)",
    OP_MOV                        : "MOV",
    OP_FRACT                      : "FRACT",
    OP_SIN                        : "SIN",
    OP_COS                        : "COS",
    OP_ADD                        : "ADD",
    OP_MUL_IEEE                   : "MUL_IEEE",
    OP_MAX                        : "MAX",
    OP_MIN                        : "MIN",
    OP_SETGT                      : "SETGT",
    OP_SETE                       : "SETE",
    OP_ADD_INT                    : "ADD_INT",
    OP_AND_INT                    : "AND_INT",
    OP_MULADD                     : "MULADD",
    OP_CNDE                       : "CNDE",
    OP_CNDGT                      : "CNDGT",
    OP_CNDGE                      : "CNDGE",
    OP_CNDE_INT                   : "CNDE_INT",
    OP_DOT_4                      : "DOT_4",
    OP_PRED_X                     : "PRED_X",
    OP_REG_SEQUENCE               : "REG_SEQUENCE",
    OP_CLAMP_R600                 : "CLAMP_R600",
    OP_FABS_R600                  : "FABS_R600",
    OP_FNEG_R600                  : "FNEG_R600",
    OP_MOV_IMM_F32                : "MOV_IMM_F32",
    OP_MOV_IMM_I32                : "MOV_IMM_I32",
    OP_CONST_COPY                 : "CONST_COPY",
    OP_MASK_WRITE                 : "MASK_WRITE",
    OP_RAT_WRITE_CACHELESS_32_eg  : "RAT_WRITE_CACHELESS_32_eg",
    OP_RAT_WRITE_CACHELESS_64_eg  : "RAT_WRITE_CACHELESS_64_eg",
    OP_RAT_WRITE_CACHELESS_128_eg : "RAT_WRITE_CACHELESS_128_eg",
    OP_LDS_ADD_RET                : "LDS_ADD_RET",
    OP_LDS_SUB_RET                : "LDS_SUB_RET",
    OP_LDS_AND_RET                : "LDS_AND_RET",
    OP_LDS_OR_RET                 : "LDS_OR_RET",
    OP_LDS_XOR_RET                : "LDS_XOR_RET",
    OP_LDS_MIN_INT_RET            : "LDS_MIN_INT_RET",
    OP_LDS_MAX_INT_RET            : "LDS_MAX_INT_RET",
    OP_LDS_MIN_UINT_RET           : "LDS_MIN_UINT_RET",
    OP_LDS_MAX_UINT_RET           : "LDS_MAX_UINT_RET",
    OP_LDS_WRXCHG_RET             : "LDS_WRXCHG_RET",
    OP_LDS_ADD                    : "LDS_ADD",
    OP_LDS_SUB                    : "LDS_SUB",
    OP_LDS_AND                    : "LDS_AND",
    OP_LDS_OR                     : "LDS_OR",
    OP_LDS_XOR                    : "LDS_XOR",
    OP_LDS_MIN_INT                : "LDS_MIN_INT",
    OP_LDS_MAX_INT                : "LDS_MAX_INT",
    OP_LDS_MIN_UINT               : "LDS_MIN_UINT",
    OP_LDS_MAX_UINT               : "LDS_MAX_UINT",
    OP_LDS_WRXCHG                 : "LDS_WRXCHG",
    OP_TXD                        : "TXD",
    OP_TXD_SHADOW                 : "TXD_SHADOW",
    OP_TEX_SET_GRADIENTS_H        : "TEX_SET_GRADIENTS_H",
    OP_TEX_SET_GRADIENTS_V        : "TEX_SET_GRADIENTS_V",
    OP_TEX_SAMPLE_G               : "TEX_SAMPLE_G",
    OP_TEX_SAMPLE_C_G             : "TEX_SAMPLE_C_G",
    OP_BRANCH                     : "BRANCH",
    OP_BRANCH_COND_f32            : "BRANCH_COND_f32",
    OP_BRANCH_COND_i32            : "BRANCH_COND_i32",
    OP_JUMP                       : "JUMP",
    OP_JUMP_COND                  : "JUMP_COND",
    OP_RETURN                     : "RETURN",
    OP_EG_ExportSwz               : "EG_ExportSwz",
    OP_R600_ExportSwz             : "R600_ExportSwz",
}

var _OpValues = func() map[string]OpCode {
    ret := make(map[string]OpCode, len(_OpNames))
    for op, name := range _OpNames {
        if op != int(OP_invalid) {
            ret[name] = OpCode(op)
        }
    }
    return ret
}()

// ParseOpCode looks up an opcode by its mnemonic.
func ParseOpCode(name string) (OpCode, bool) {
    op, ok := _OpValues[name]
    return op, ok
}

func (self OpCode) String() string {
    if self < _OP_count {
        return _OpNames[self]
    } else {
        return fmt.Sprintf("OpCode(%d)", self)
    }
}

// IsLDSReturn reports whether the opcode is an LDS atomic that returns the
// previous memory value.
func (self OpCode) IsLDSReturn() bool {
    return self >= OP_LDS_ADD_RET && self <= OP_LDS_WRXCHG_RET
}

// LDSNoReturn maps an LDS atomic to its form without a returned value.
func (self OpCode) LDSNoReturn() OpCode {
    if !self.IsLDSReturn() {
        panic("not an LDS return instruction: " + self.String())
    } else {
        return self - OP_LDS_ADD_RET + OP_LDS_ADD
    }
}

// IsExport reports whether the opcode is an export with an explicit swizzle.
func (self OpCode) IsExport() bool {
    return self == OP_EG_ExportSwz || self == OP_R600_ExportSwz
}

// NeedsExpansion reports whether the opcode is a placeholder rewritten by
// the expander after selection.
func (self OpCode) NeedsExpansion() bool {
    switch self {
        case OP_CLAMP_R600                 : return true
        case OP_FABS_R600                  : return true
        case OP_FNEG_R600                  : return true
        case OP_MASK_WRITE                 : return true
        case OP_MOV_IMM_F32                : return true
        case OP_MOV_IMM_I32                : return true
        case OP_CONST_COPY                 : return true
        case OP_RAT_WRITE_CACHELESS_32_eg  : return true
        case OP_RAT_WRITE_CACHELESS_64_eg  : return true
        case OP_RAT_WRITE_CACHELESS_128_eg : return true
        case OP_TXD                        : return true
        case OP_TXD_SHADOW                 : return true
        case OP_BRANCH                     : return true
        case OP_BRANCH_COND_f32            : return true
        case OP_BRANCH_COND_i32            : return true
        case OP_EG_ExportSwz               : return true
        case OP_R600_ExportSwz             : return true
        case OP_RETURN                     : return true
        default                            : return self.IsLDSReturn()
    }
}
