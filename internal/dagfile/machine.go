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

package dagfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/r600isel/internal/machine"
	"github.com/cloudwego/r600isel/internal/target"
)

func buildMachine(fn *target.Function, ms *MachineSpec) (*machine.Func, error) {
	mf := machine.NewFunc(fn)
	for _, r := range ms.LiveOuts {
		reg, ok := target.ParseReg(r)
		if !ok {
			return nil, fmt.Errorf("invalid live-out register %q", r)
		}
		fn.AddLiveOut(reg)
	}

	/* one block per list */
	for i, b := range ms.Blocks {
		bb := mf.NewBlock()
		for j, line := range b {
			mi, err := ParseInstr(line)
			if err != nil {
				return nil, fmt.Errorf("bb.%d, instruction %d: %w", i, j, err)
			}
			mf.Append(bb, mi)
		}
	}
	return mf, nil
}

// ParseInstr parses an instruction in the form printed by machine.Instr,
// for example "ADD def %2, %0, killed %1, 0".
func ParseInstr(line string) (*machine.Instr, error) {
	line = strings.TrimSpace(line)
	name, rest, _ := strings.Cut(line, " ")

	op, ok := machine.ParseOpCode(name)
	if !ok {
		return nil, fmt.Errorf("unknown opcode %q", name)
	}

	/* no operands */
	mi := machine.NewInstr(op)
	if rest = strings.TrimSpace(rest); rest == "" {
		return mi, nil
	}

	for _, s := range strings.Split(rest, ",") {
		v, err := ParseOperand(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		mi.Ops = append(mi.Ops, v)
	}
	return mi, nil
}

// ParseOperand parses one operand in the form printed by machine.Operand.
func ParseOperand(s string) (machine.Operand, error) {
	switch {
	case strings.HasPrefix(s, "def "):
		return parseRegOperand(s[4:], machine.Def)
	case strings.HasPrefix(s, "implicit "):
		return parseRegOperand(s[9:], machine.ImplicitUse)
	case strings.HasPrefix(s, "killed "):
		return parseRegOperand(s[7:], machine.Kill)
	case strings.HasPrefix(s, "bb."):
		id, err := strconv.Atoi(s[3:])
		if err != nil || id < 0 {
			return machine.Operand{}, fmt.Errorf("invalid block %q", s)
		}
		return machine.Block(id), nil
	case strings.HasSuffix(s, "f"):
		v, err := strconv.ParseFloat(s[:len(s)-1], 32)
		if err != nil {
			return machine.Operand{}, fmt.Errorf("invalid float immediate %q", s)
		}
		return machine.FPImm(float32(v)), nil
	}

	/* integers, then registers */
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return machine.Imm(v), nil
	}
	return parseRegOperand(s, machine.Use)
}

func parseRegOperand(s string, mk func(target.Reg) machine.Operand) (machine.Operand, error) {
	if r, ok := target.ParseReg(s); !ok {
		return machine.Operand{}, fmt.Errorf("invalid register %q", s)
	} else {
		return mk(r), nil
	}
}
