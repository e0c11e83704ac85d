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
)

type ShaderType uint8

const (
    ShaderCompute ShaderType = iota
    ShaderPixel
    ShaderVertex
    ShaderGeometry
)

// Function holds the per-function state shared by lowering and expansion.
type Function struct {
    Name       string
    StackWidth int
    ShaderType ShaderType
    LiveOuts   []Reg
    LiveIns    []Reg
}

func NewFunction(name string, stackWidth int) *Function {
    switch stackWidth {
        case 1, 2, 4 : return &Function { Name: name, StackWidth: stackWidth }
        default      : panic(fmt.Sprintf("invalid stack width %d for function %s", stackWidth, name))
    }
}

// AddLiveOut records a register that must stay alive until the function returns.
func (self *Function) AddLiveOut(r Reg) {
    self.LiveOuts = append(self.LiveOuts, r)
}

// AddLiveIn records a register initialized before the function starts, once.
func (self *Function) AddLiveIn(r Reg) {
    for _, v := range self.LiveIns {
        if v == r {
            return
        }
    }
    self.LiveIns = append(self.LiveIns, r)
}
