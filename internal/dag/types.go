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

// VT is the value type of one node result. Other is the chain type.
type VT uint8

const (
    Other VT = iota
    I1
    I8
    I16
    I32
    I64
    F32
    F64
    V2I32
    V4I32
    V2F32
    V4F32
)

var _VTNames = [...]string {
    Other : "ch",
    I1    : "i1",
    I8    : "i8",
    I16   : "i16",
    I32   : "i32",
    I64   : "i64",
    F32   : "f32",
    F64   : "f64",
    V2I32 : "v2i32",
    V4I32 : "v4i32",
    V2F32 : "v2f32",
    V4F32 : "v4f32",
}

func ParseVT(s string) (VT, bool) {
    for i, v := range _VTNames {
        if v == s {
            return VT(i), true
        }
    }
    return Other, false
}

func (self VT) String() string {
    if int(self) < len(_VTNames) {
        return _VTNames[self]
    } else {
        return fmt.Sprintf("vt(%d)", self)
    }
}

func (self VT) IsVector() bool {
    return self >= V2I32
}

func (self VT) Lanes() int {
    switch self {
        case V2I32, V2F32 : return 2
        case V4I32, V4F32 : return 4
        default           : return 1
    }
}

// Elem returns the element type of a vector, or the type itself.
func (self VT) Elem() VT {
    switch self {
        case V2I32, V4I32 : return I32
        case V2F32, V4F32 : return F32
        default           : return self
    }
}

func (self VT) Bits() int {
    switch self {
        case I1            : return 1
        case I8            : return 8
        case I16           : return 16
        case I32, F32      : return 32
        case I64, F64      : return 64
        case V2I32, V2F32  : return 64
        case V4I32, V4F32  : return 128
        default            : return 0
    }
}

func (self VT) IsInteger() bool {
    switch self.Elem() {
        case I1, I8, I16, I32, I64 : return true
        default                    : return false
    }
}

func (self VT) IsFloat() bool {
    switch self.Elem() {
        case F32, F64 : return true
        default       : return false
    }
}

// Mask returns the all-ones bit pattern of a scalar integer type.
func (self VT) Mask() int64 {
    if n := self.Bits(); n >= 64 {
        return -1
    } else {
        return (1 << n) - 1
    }
}

// VectorOf returns the vector type with n lanes of elem.
func VectorOf(elem VT, n int) VT {
    switch {
        case n == 1                : return elem
        case elem == I32 && n == 2 : return V2I32
        case elem == I32 && n == 4 : return V4I32
        case elem == F32 && n == 2 : return V2F32
        case elem == F32 && n == 4 : return V4F32
        default                    : panic(fmt.Sprintf("no vector type of %d x %s", n, elem))
    }
}
