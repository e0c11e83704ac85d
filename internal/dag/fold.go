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

func isFoldableBinary(op Opcode) bool {
    switch op {
        case OpAdd : return true
        case OpSub : return true
        case OpMul : return true
        case OpAnd : return true
        case OpOr  : return true
        case OpXor : return true
        case OpShl : return true
        case OpSrl : return true
        case OpSra : return true
        default    : return false
    }
}

func evalBinary(op Opcode, x int64, y int64, vt VT) int64 {
    m := vt.Mask()
    switch op {
        case OpAdd : return x + y
        case OpSub : return x - y
        case OpMul : return x * y
        case OpAnd : return x & y
        case OpOr  : return x | y
        case OpXor : return x ^ y
        case OpShl : return x << uint64(y & 63)
        case OpSrl : return int64(uint64(x & m) >> uint64(y & 63))
        case OpSra : return x >> uint64(y & 63)
        default    : panic("unreachable")
    }
}

// fold evaluates scalar integer arithmetic over constants, and removes the
// identities (x + 0), (x - 0), (x | 0), (x ^ 0) and shifts by zero.
func (self *DAG) fold(n *Node) (Value, bool) {
    if !isFoldableBinary(n.Op) || len(n.Types) != 1 || len(n.Args) != 2 {
        return Value{}, false
    }

    /* only scalar integers are folded */
    vt := n.Types[0]
    if vt.IsVector() || !vt.IsInteger() {
        return Value{}, false
    }

    /* both operands are constants */
    x, okx := self.ConstValue(n.Args[0])
    y, oky := self.ConstValue(n.Args[1])
    if okx && oky {
        return self.Constant(evalBinary(n.Op, x, y, vt), vt), true
    }

    /* right hand side zero identities */
    if oky && y == 0 {
        switch n.Op {
            case OpAdd, OpSub, OpOr, OpXor, OpShl, OpSrl, OpSra: return n.Args[0], true
        }
    }

    /* left hand side zero identities */
    if okx && x == 0 {
        switch n.Op {
            case OpAdd, OpOr, OpXor: return n.Args[1], true
        }
    }
    return Value{}, false
}
