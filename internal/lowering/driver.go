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

package lowering

import (
    `github.com/oleiade/lane`
    `github.com/samber/lo`

    `github.com/cloudwego/r600isel/internal/dag`
    `github.com/cloudwego/r600isel/internal/target`
    `github.com/cloudwego/r600isel/internal/utils`
)

const _MaxCombineRounds = 8

type stepFunc func(v dag.Value) (dag.Value, bool)

// Run drives the whole graph rooted at roots through combining, custom
// legalization and combining again, and returns the resolved roots.
func (self *Lowering) Run(roots []dag.Value) []dag.Value {
    self.combineAll(roots)
    self.runPhase("legalize", roots, self.legalizeNode)
    self.combineAll(roots)

    /* resolve the roots */
    return lo.Map(roots, func(r dag.Value, _ int) dag.Value {
        return self.g.Resolve(r)
    })
}

func (self *Lowering) combineAll(roots []dag.Value) {
    for i := 0; i < _MaxCombineRounds; i++ {
        if self.runPhase("combine", roots, self.Combine) == 0 {
            break
        }
    }
}

func (self *Lowering) legalizeNode(v dag.Value) (dag.Value, bool) {
    if self.info.NodeAction(self.g.NodeOf(v)) != target.Custom {
        return dag.Value{}, false
    } else {
        return self.Legalize(v)
    }
}

// runPhase visits every live node once, operands first, and then every node
// created by a rewrite. It returns the number of rewritten nodes.
func (self *Lowering) runPhase(name string, roots []dag.Value, step stepFunc) int {
    nb := 0
    g := self.g
    q := lane.NewQueue()

    /* seed with the current graph */
    for _, id := range g.Walk(roots...) {
        q.Enqueue(id)
    }

    /* process until the queue drains */
    for !q.Empty() {
        id := q.Dequeue().(dag.NodeID)
        mark := dag.NodeID(g.Len())

        /* skip the nodes rewritten since they were queued */
        if g.IsReplaced(id) {
            continue
        }

        /* try the rewrite */
        r, ok := step(dag.Value { ID: id })
        if !ok || !self.replace(id, r) {
            continue
        }

        /* log the rewrite */
        nb++
        self.log.Debug("node rewritten",
            "phase" , name,
            "from"  , g.Format(id),
            "to"    , g.Resolve(r).String(),
        )

        /* the new nodes may need work too */
        for _, nid := range g.Walk(r) {
            if nid > mark {
                q.Enqueue(nid)
            }
        }
    }
    return nb
}

// replace redirects every result of the node id to the matching result of r.
func (self *Lowering) replace(id dag.NodeID, r dag.Value) bool {
    g := self.g
    n := g.Node(id)

    /* a single result takes r itself */
    if len(n.Types) == 1 && g.Op(r) != dag.OpMergeValues {
        return g.Replace(dag.Value { ID: id }, r)
    }

    /* one replacement value per result */
    ok := false
    res := g.Results(r)

    /* the replacement must cover every result */
    if len(res) < len(n.Types) {
        utils.Fatalf("replace", "%s replaced with %d values, needs %d", n.Op, len(res), len(n.Types))
    }

    /* redirect every result */
    for i := range n.Types {
        if g.Replace(dag.Value { ID: id, Res: uint8(i) }, res[i]) {
            ok = true
        }
    }
    return ok
}
