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
    `strconv`
    `strings`

    `github.com/oleiade/lane`
)

type walkFrame struct {
    id   NodeID
    next int
}

// Walk returns the live nodes reachable from roots, operands before users.
func (self *DAG) Walk(roots ...Value) []NodeID {
    var ret []NodeID
    seen := make(map[NodeID]struct{})
    stack := lane.NewStack()

    /* push every root */
    for i := len(roots) - 1; i >= 0; i-- {
        if id := self.Resolve(roots[i]).ID; id != 0 {
            if _, ok := seen[id]; !ok {
                seen[id] = struct{}{}
                stack.Push(&walkFrame { id: id })
            }
        }
    }

    /* iterative post-order DFS */
    for !stack.Empty() {
        fr := stack.Head().(*walkFrame)
        args := self.nodes[fr.id].Args

        /* descend into the next unvisited operand */
        if fr.next < len(args) {
            id := self.Resolve(args[fr.next]).ID
            fr.next++
            if _, ok := seen[id]; !ok {
                seen[id] = struct{}{}
                stack.Push(&walkFrame { id: id })
            }
            continue
        }

        /* all operands are done */
        stack.Pop()
        ret = append(ret, fr.id)
    }
    return ret
}

// Format renders one node in the form "t3: i32,ch = load<...> t0, t2".
func (self *DAG) Format(id NodeID) string {
    n := self.Node(id)
    tt := make([]string, len(n.Types))
    aa := make([]string, len(n.Args))

    /* result types */
    for i, t := range n.Types {
        tt[i] = t.String()
    }

    /* operands */
    for i, a := range n.Args {
        aa[i] = self.Resolve(a).String()
    }

    /* node attributes */
    op := n.Op.String()
    switch n.Op {
        case OpConstant         : op += "<" + strconv.FormatInt(n.Imm, 10) + ">"
        case OpConstantFP       : op += "<" + strconv.FormatFloat(n.Fp, 'g', -1, 64) + ">"
        case OpRegister         : op += fmt.Sprintf("<%%%d>", n.Imm)
        case OpCopyFromReg      : op += fmt.Sprintf("<%%%d>", n.Imm)
        case OpCopyToReg        : op += fmt.Sprintf("<%%%d>", n.Imm)
        case OpSetCC            : op += "<" + n.CC.String() + ">"
        case OpSelectCC         : op += "<" + n.CC.String() + ">"
        case OpIntrinsicVoid    : op += "<" + n.Intrinsic().String() + ">"
        case OpIntrinsicWOChain : op += "<" + n.Intrinsic().String() + ">"
    }

    /* memory operand */
    if n.Mem != nil {
        op += "<" + n.Mem.String() + ">"
    }

    /* join everything together */
    if len(aa) == 0 {
        return fmt.Sprintf("t%d: %s = %s", id, strings.Join(tt, ","), op)
    } else {
        return fmt.Sprintf("t%d: %s = %s %s", id, strings.Join(tt, ","), op, strings.Join(aa, ", "))
    }
}

// Dump renders every live node reachable from roots.
func (self *DAG) Dump(roots ...Value) string {
    ids := self.Walk(roots...)
    ret := make([]string, len(ids))
    for i, id := range ids {
        ret[i] = self.Format(id)
    }
    return strings.Join(ret, "\n")
}
