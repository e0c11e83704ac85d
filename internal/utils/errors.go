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

package utils

import (
    `fmt`
)

// InvariantError occurs when a lowering path meets a construct its opcode or
// type coverage tables claim can never reach it. It is raised with panic and
// only recovered by the public drivers, which abort the compilation unit.
type InvariantError struct {
    Where  string
    Reason string
}

func (self InvariantError) Error() string {
    return fmt.Sprintf("r600isel: invariant violated in %s: %s", self.Where, self.Reason)
}

func EInvariant(where string, reason string) InvariantError {
    return InvariantError {
        Where  : where,
        Reason : reason,
    }
}

// Fatalf raises an InvariantError, it never returns.
func Fatalf(where string, format string, args ...interface{}) {
    panic(EInvariant(where, fmt.Sprintf(format, args...)))
}

// AsInvariant converts a recovered panic value into an InvariantError. Any
// other value is reported as not being one.
func AsInvariant(v interface{}) (InvariantError, bool) {
    switch e := v.(type) {
        case InvariantError  : return e, true
        case *InvariantError : return *e, e != nil
        default              : return InvariantError{}, false
    }
}
