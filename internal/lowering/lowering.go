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
    `log/slog`

    `github.com/cloudwego/r600isel/internal/dag`
    `github.com/cloudwego/r600isel/internal/opts`
    `github.com/cloudwego/r600isel/internal/target`
    `github.com/cloudwego/r600isel/internal/utils`
)

// Handler rewrites the node producing v. It returns false when it has
// nothing to offer, in which case the node is left to generic expansion.
type Handler func(self *Lowering, v dag.Value) (dag.Value, bool)

// Table maps opcodes to their lowering and combining handlers. It is built
// once and never written afterwards.
type Table struct {
    legalize map[dag.Opcode]Handler
    combine  map[dag.Opcode]Handler
}

func NewTable() *Table {
    return &Table {
        legalize: map[dag.Opcode]Handler {
            dag.OpSelectCC         : (*Lowering).lowerSelectCC,
            dag.OpStore            : (*Lowering).lowerStore,
            dag.OpLoad             : (*Lowering).lowerLoad,
            dag.OpFSin             : (*Lowering).lowerTrig,
            dag.OpFCos             : (*Lowering).lowerTrig,
            dag.OpFpToUint         : (*Lowering).lowerFpToUint,
            dag.OpIntrinsicVoid    : (*Lowering).lowerIntrinsicVoid,
            dag.OpIntrinsicWOChain : (*Lowering).lowerIntrinsicWOChain,
        },
        combine: map[dag.Opcode]Handler {
            dag.OpFpRound          : (*Lowering).combineFpRound,
            dag.OpFpToSint         : (*Lowering).combineFpToSint,
            dag.OpInsertVectorElt  : (*Lowering).combineInsertVectorElt,
            dag.OpExtractVectorElt : (*Lowering).combineExtractVectorElt,
            dag.OpSelectCC         : (*Lowering).combineSelectCC,
            dag.OpExport           : (*Lowering).combineExport,
            dag.OpTextureFetch     : (*Lowering).combineTextureFetch,
        },
    }
}

// Handles reports whether op has a lowering handler.
func (self *Table) Handles(op dag.Opcode) bool {
    _, ok := self.legalize[op]
    return ok
}

// Lowering rewrites the nodes of one function. It must not be shared across
// functions, the table and the target info it refers to may.
type Lowering struct {
    g     *dag.DAG
    fn    *target.Function
    info  *target.Info
    legal target.Legality
    table *Table
    log   *slog.Logger
}

func New(g *dag.DAG, fn *target.Function, info *target.Info, table *Table) *Lowering {
    return &Lowering {
        g     : g,
        fn    : fn,
        info  : info,
        legal : info,
        table : table,
        log   : opts.DiscardLogger(),
    }
}

// SetLegality replaces the legality oracle, which defaults to the target info.
func (self *Lowering) SetLegality(l target.Legality) {
    self.legal = l
}

func (self *Lowering) SetLogger(l *slog.Logger) {
    if l != nil {
        self.log = l
    }
}

func (self *Lowering) DAG() *dag.DAG {
    return self.g
}

// Legalize rewrites a node the hardware cannot execute. Asking for an opcode
// outside the dispatch table is a coverage bug and raises an InvariantError.
func (self *Lowering) Legalize(v dag.Value) (dag.Value, bool) {
    n := self.g.NodeOf(v)
    h, ok := self.table.legalize[n.Op]

    /* the table must cover every custom lowered opcode */
    if !ok {
        utils.Fatalf("Legalize", "no lowering for opcode %s", n.Op)
    }

    /* call the handler */
    return h(self, self.g.Resolve(v))
}

// Combine applies the peephole rule registered for the node's opcode, if any.
func (self *Lowering) Combine(v dag.Value) (dag.Value, bool) {
    v = self.g.Resolve(v)
    h, ok := self.table.combine[self.g.Op(v)]

    /* no rule for this opcode */
    if !ok {
        return dag.Value{}, false
    }

    /* rules that rebuild an identical node did not match */
    if r, ok := h(self, v); !ok || self.g.Resolve(r) == v {
        return dag.Value{}, false
    } else {
        return r, true
    }
}

// isHWTrue reports whether v is the hardware true value, -1 or 1.0.
func (self *Lowering) isHWTrue(v dag.Value) bool {
    switch n := self.g.NodeOf(v); n.Op {
        case dag.OpConstant   : return n.Imm == -1
        case dag.OpConstantFP : return n.Fp == 1.0
        default               : return false
    }
}

// isHWFalse reports whether v is the hardware false value, 0 or 0.0.
func (self *Lowering) isHWFalse(v dag.Value) bool {
    return self.g.NodeOf(v).IsZero()
}

func (self *Lowering) isZero(v dag.Value) bool {
    return self.g.NodeOf(v).IsZero()
}
