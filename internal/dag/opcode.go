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
)

type Opcode uint16

const (
    OpInvalid Opcode = iota

    /* leaves */
    OpEntryToken
    OpUndef
    OpConstant
    OpConstantFP
    OpRegister

    /* glue */
    OpCopyFromReg
    OpCopyToReg
    OpTokenFactor
    OpMergeValues

    /* memory */
    OpLoad
    OpStore

    /* integer arithmetic */
    OpAdd
    OpSub
    OpMul
    OpAnd
    OpOr
    OpXor
    OpShl
    OpSrl
    OpSra

    /* floating point arithmetic */
    OpFAdd
    OpFSub
    OpFMul
    OpFNeg
    OpFAbs
    OpFSin
    OpFCos

    /* conversions */
    OpFpRound
    OpFpExtend
    OpFpToSint
    OpFpToUint
    OpSintToFp
    OpUintToFp
    OpZeroExtend
    OpSignExtend
    OpAnyExtend
    OpTruncate
    OpBitcast

    /* comparisons */
    OpSetCC
    OpSelectCC

    /* vectors */
    OpBuildVector
    OpExtractVectorElt
    OpInsertVectorElt

    /* intrinsics */
    OpIntrinsicVoid
    OpIntrinsicWOChain

    /* target nodes */
    OpDwordAddr
    OpStoreMskor
    OpConstAddress
    OpRegisterLoad
    OpRegisterStore
    OpFract
    OpCosHW
    OpSinHW
    OpExport
    OpTextureFetch
    OpDot4
    OpFMinLegacy
    OpFMaxLegacy

    _OpCount
)

var _OpNames = [...]string {
    OpInvalid          : "invalid",
    OpEntryToken       : "EntryToken",
    OpUndef            : "undef",
    OpConstant         : "Constant",
    OpConstantFP       : "ConstantFP",
    OpRegister         : "Register",
    OpCopyFromReg      : "CopyFromReg",
    OpCopyToReg        : "CopyToReg",
    OpTokenFactor      : "TokenFactor",
    OpMergeValues      : "merge_values",
    OpLoad             : "load",
    OpStore            : "store",
    OpAdd              : "add",
    OpSub              : "sub",
    OpMul              : "mul",
    OpAnd              : "and",
    OpOr               : "or",
    OpXor              : "xor",
    OpShl              : "shl",
    OpSrl              : "srl",
    OpSra              : "sra",
    OpFAdd             : "fadd",
    OpFSub             : "fsub",
    OpFMul             : "fmul",
    OpFNeg             : "fneg",
    OpFAbs             : "fabs",
    OpFSin             : "fsin",
    OpFCos             : "fcos",
    OpFpRound          : "fp_round",
    OpFpExtend         : "fp_extend",
    OpFpToSint         : "fp_to_sint",
    OpFpToUint         : "fp_to_uint",
    OpSintToFp         : "sint_to_fp",
    OpUintToFp         : "uint_to_fp",
    OpZeroExtend       : "zero_extend",
    OpSignExtend       : "sign_extend",
    OpAnyExtend        : "any_extend",
    OpTruncate         : "truncate",
    OpBitcast          : "bitcast",
    OpSetCC            : "setcc",
    OpSelectCC         : "select_cc",
    OpBuildVector      : "BUILD_VECTOR",
    OpExtractVectorElt : "extract_vector_elt",
    OpInsertVectorElt  : "insert_vector_elt",
    OpIntrinsicVoid    : "INTRINSIC_VOID",
    OpIntrinsicWOChain : "INTRINSIC_WO_CHAIN",
    OpDwordAddr        : "DWORDADDR",
    OpStoreMskor       : "STORE_MSKOR",
    OpConstAddress     : "CONST_ADDRESS",
    OpRegisterLoad     : "REGISTER_LOAD",
    OpRegisterStore    : "REGISTER_STORE",
    OpFract            : "FRACT",
    OpCosHW            : "COS_HW",
    OpSinHW            : "SIN_HW",
    OpExport           : "EXPORT",
    OpTextureFetch     : "TEXTURE_FETCH",
    OpDot4             : "DOT4",
    OpFMinLegacy       : "FMIN_LEGACY",
    OpFMaxLegacy       : "FMAX_LEGACY",
}

func ParseOpcode(s string) (Opcode, bool) {
    for i, v := range _OpNames {
        if i != int(OpInvalid) && v == s {
            return Opcode(i), true
        }
    }
    return OpInvalid, false
}

func (self Opcode) String() string {
    if self < _OpCount {
        return _OpNames[self]
    } else {
        return fmt.Sprintf("op(%d)", self)
    }
}

// IsTarget reports whether the opcode only exists after lowering.
func (self Opcode) IsTarget() bool {
    return self >= OpDwordAddr && self < _OpCount
}

// Intrinsic identifies the operation behind an intrinsic node, it is carried
// in the node's immediate.
type Intrinsic int64

const (
    IntrinsicNone Intrinsic = iota
    IntrinsicStoreOutput
    IntrinsicStoreSwizzle
    IntrinsicLoadInput
    IntrinsicTex
    IntrinsicTexc
    IntrinsicTxl
    IntrinsicTxlc
    IntrinsicTxb
    IntrinsicTxbc
    IntrinsicTxf
    IntrinsicTxq
    IntrinsicDdx
    IntrinsicDdy
    IntrinsicLdptr
    IntrinsicDp4
    IntrinsicNGroupsX
    IntrinsicNGroupsY
    IntrinsicNGroupsZ
    IntrinsicGlobalSizeX
    IntrinsicGlobalSizeY
    IntrinsicGlobalSizeZ
    IntrinsicLocalSizeX
    IntrinsicLocalSizeY
    IntrinsicLocalSizeZ
    IntrinsicTGIDX
    IntrinsicTGIDY
    IntrinsicTGIDZ
    IntrinsicTIDIGX
    IntrinsicTIDIGY
    IntrinsicTIDIGZ
)

var _IntrinsicNames = [...]string {
    IntrinsicNone         : "none",
    IntrinsicStoreOutput  : "store_output",
    IntrinsicStoreSwizzle : "store_swizzle",
    IntrinsicLoadInput    : "load_input",
    IntrinsicTex          : "tex",
    IntrinsicTexc         : "texc",
    IntrinsicTxl          : "txl",
    IntrinsicTxlc         : "txlc",
    IntrinsicTxb          : "txb",
    IntrinsicTxbc         : "txbc",
    IntrinsicTxf          : "txf",
    IntrinsicTxq          : "txq",
    IntrinsicDdx          : "ddx",
    IntrinsicDdy          : "ddy",
    IntrinsicLdptr        : "ldptr",
    IntrinsicDp4          : "dp4",
    IntrinsicNGroupsX     : "read_ngroups_x",
    IntrinsicNGroupsY     : "read_ngroups_y",
    IntrinsicNGroupsZ     : "read_ngroups_z",
    IntrinsicGlobalSizeX  : "read_global_size_x",
    IntrinsicGlobalSizeY  : "read_global_size_y",
    IntrinsicGlobalSizeZ  : "read_global_size_z",
    IntrinsicLocalSizeX   : "read_local_size_x",
    IntrinsicLocalSizeY   : "read_local_size_y",
    IntrinsicLocalSizeZ   : "read_local_size_z",
    IntrinsicTGIDX        : "read_tgid_x",
    IntrinsicTGIDY        : "read_tgid_y",
    IntrinsicTGIDZ        : "read_tgid_z",
    IntrinsicTIDIGX       : "read_tidig_x",
    IntrinsicTIDIGY       : "read_tidig_y",
    IntrinsicTIDIGZ       : "read_tidig_z",
}

func ParseIntrinsic(s string) (Intrinsic, bool) {
    for i, v := range _IntrinsicNames {
        if i != int(IntrinsicNone) && v == s {
            return Intrinsic(i), true
        }
    }
    return IntrinsicNone, false
}

func (self Intrinsic) String() string {
    if self >= 0 && int(self) < len(_IntrinsicNames) {
        return _IntrinsicNames[self]
    } else {
        return fmt.Sprintf("intrinsic(%d)", int64(self))
    }
}
