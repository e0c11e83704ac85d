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
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/cloudwego/r600isel/internal/target`
    `github.com/cloudwego/r600isel/internal/utils`
)

func newTestFunc() (*Func, *BasicBlock) {
    fn := NewFunc(target.NewFunction("test", 1))
    return fn, fn.NewBlock()
}

func vreg(n int) target.Reg {
    return target.Virtual(n)
}

func operand(info *InstrInfo, mi *Instr, name OpName) Operand {
    return mi.Ops[info.OperandIdx(mi.Op, name)]
}

func requireInvariant(t *testing.T, fn func()) {
    t.Helper()
    defer func() {
        v := recover()
        _, ok := utils.AsInvariant(v)
        require.True(t, ok, "expected an invariant violation, got %v", v)
    }()
    fn()
}

func TestOpCode_Names(t *testing.T) {
    for op := OP_MOV; op < _OP_count; op++ {
        v, ok := ParseOpCode(op.String())
        require.True(t, ok, op.String())
        require.Equal(t, op, v)
    }
    _, ok := ParseOpCode("(invalid)")
    require.False(t, ok)
}

func TestOpCode_LDSNoReturn(t *testing.T) {
    require.Equal(t, OP_LDS_ADD, OP_LDS_ADD_RET.LDSNoReturn())
    require.Equal(t, OP_LDS_WRXCHG, OP_LDS_WRXCHG_RET.LDSNoReturn())
    require.Equal(t, OP_LDS_MAX_UINT, OP_LDS_MAX_UINT_RET.LDSNoReturn())
    require.False(t, OP_LDS_ADD.IsLDSReturn())
    require.Panics(t, func() { OP_LDS_ADD.LDSNoReturn() })
}

func TestFunc_Builder(t *testing.T) {
    fn, bb := newTestFunc()
    a := fn.Append(bb, NewInstr(OP_MOV_IMM_I32, Def(vreg(3)), Imm(1)))
    c := fn.Append(bb, NewInstr(OP_RETURN))
    b := fn.Builder(bb)

    /* insert before the current instruction */
    x := b.InsertBefore(NewInstr(OP_JUMP, Block(0)))
    require.Equal(t, []*Instr { x, a, c }, bb.Instrs)
    require.Equal(t, a, b.Current())
    require.Equal(t, OP_RETURN, b.NextOpcode())

    /* erase, then move on */
    b.Erase()
    require.Nil(t, b.Current())
    require.Equal(t, OP_RETURN, b.NextOpcode())
    require.True(t, b.Advance())
    require.Equal(t, c, b.Current())
    require.Equal(t, OP_invalid, b.NextOpcode())
    require.False(t, b.Advance())

    /* fresh registers never collide with existing ones */
    require.Equal(t, vreg(4), fn.NewVReg())
}

func TestFunc_DefsAndUses(t *testing.T) {
    fn, bb := newTestFunc()
    d := fn.Append(bb, NewInstr(OP_MOV_IMM_I32, Def(vreg(0)), Imm(1)))
    fn.Append(bb, NewInstr(OP_FNEG_R600, Def(vreg(1)), Use(vreg(0))))
    require.Equal(t, d, fn.DefOf(vreg(0)))
    require.Nil(t, fn.DefOf(vreg(2)))
    require.True(t, fn.HasUses(vreg(0)))
    require.False(t, fn.HasUses(vreg(1)))
    require.True(t, fn.Erase(d))
    require.False(t, fn.Erase(d))
}
