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

// CondCode is a comparison predicate. The bit layout is fixed:
//
//     bit 0: E (equal)
//     bit 1: G (greater)
//     bit 2: L (less)
//     bit 3: U (unordered, floating point only)
//     bit 4: N (don't care about ordering, integer forms)
//
type CondCode uint8

const (
    SETFALSE CondCode = iota
    SETOEQ
    SETOGT
    SETOGE
    SETOLT
    SETOLE
    SETONE
    SETO
    SETUO
    SETUEQ
    SETUGT
    SETUGE
    SETULT
    SETULE
    SETUNE
    SETTRUE
    SETFALSE2
    SETEQ
    SETGT
    SETGE
    SETLT
    SETLE
    SETNE
    SETTRUE2
)

var _CondNames = [...]string {
    SETFALSE  : "setfalse",
    SETOEQ    : "setoeq",
    SETOGT    : "setogt",
    SETOGE    : "setoge",
    SETOLT    : "setolt",
    SETOLE    : "setole",
    SETONE    : "setone",
    SETO      : "seto",
    SETUO     : "setuo",
    SETUEQ    : "setueq",
    SETUGT    : "setugt",
    SETUGE    : "setuge",
    SETULT    : "setult",
    SETULE    : "setule",
    SETUNE    : "setune",
    SETTRUE   : "settrue",
    SETFALSE2 : "setfalse2",
    SETEQ     : "seteq",
    SETGT     : "setgt",
    SETGE     : "setge",
    SETLT     : "setlt",
    SETLE     : "setle",
    SETNE     : "setne",
    SETTRUE2  : "settrue2",
}

func ParseCondCode(s string) (CondCode, bool) {
    for i, v := range _CondNames {
        if v == s {
            return CondCode(i), true
        }
    }
    return SETFALSE, false
}

func (self CondCode) String() string {
    if int(self) < len(_CondNames) {
        return _CondNames[self]
    } else {
        return fmt.Sprintf("cc(%d)", self)
    }
}

// Inverse returns the predicate that is true exactly when self is false.
func (self CondCode) Inverse(isInteger bool) CondCode {
    op := uint8(self)

    /* integer forms flip L, G and E, floating forms flip U as well */
    if isInteger {
        op ^= 7
    } else {
        op ^= 15
    }

    /* never let both N and U get set */
    if op > uint8(SETTRUE2) {
        op &^= 8
    }
    return CondCode(op)
}

// Swapped returns the predicate with the operands exchanged, (x op y) == (y op' x).
func (self CondCode) Swapped() CondCode {
    op := uint8(self)
    l := (op >> 2) & 1
    g := (op >> 1) & 1
    return CondCode((op &^ 6) | (l << 1) | (g << 2))
}

// IsNotEqual reports whether the predicate belongs to the not-equal family.
func (self CondCode) IsNotEqual() bool {
    switch self {
        case SETONE, SETUNE, SETNE : return true
        default                    : return false
    }
}
