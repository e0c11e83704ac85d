/*
 * Copyright 2022 CloudWeGo Authors
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

package opts

import (
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/r600isel/internal/target"
)

const (
	_DefaultStackWidth     = 1 // one sub-register per indirect slot
	_DefaultConstReadLimit = 2 // two constant read ports per ALU group
)

var (
	Generation     = parseGeneration("R600_GENERATION", target.R700)
	StackWidth     = parseStackWidth("R600_STACK_WIDTH", _DefaultStackWidth)
	ConstReadLimit = parseOrDefault("R600_CONST_READ_LIMIT", _DefaultConstReadLimit, 0)
	Debug          = os.Getenv("R600_DEBUG") == "yes"
)

func parseOrDefault(key string, def int, min int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("r600isel: invalid value for " + key)
	} else if ret := int(val); ret <= min {
		panic("r600isel: value too small for " + key)
	} else {
		return ret
	}
}

func parseStackWidth(key string, def int) int {
	switch ret := parseOrDefault(key, def, 0); ret {
	case 1, 2, 4:
		return ret
	default:
		panic("r600isel: stack width must be 1, 2 or 4 for " + key)
	}
}

func parseGeneration(key string, def target.Generation) target.Generation {
	if env := os.Getenv(key); env == "" {
		return def
	} else if gen, ok := target.ParseGeneration(strings.ToLower(env)); !ok {
		panic("r600isel: invalid generation for " + key)
	} else {
		return gen
	}
}
