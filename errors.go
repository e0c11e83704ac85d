/*
 * Copyright 2021 ByteDance Inc.
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

package r600isel

import (
    `fmt`

    `github.com/cloudwego/r600isel/internal/utils`
)

// InvariantError occurs when lowering meets a construct that its opcode or
// type coverage tables claim can never happen.
type InvariantError = utils.InvariantError

// LoweringError aborts the compilation of one function.
type LoweringError struct {
    Function string
    Stage    string
    Cause    error
}

func (self LoweringError) Error() string {
    return fmt.Sprintf("LoweringError(%s, %s): %v", self.Function, self.Stage, self.Cause)
}

func (self LoweringError) Unwrap() error {
    return self.Cause
}
