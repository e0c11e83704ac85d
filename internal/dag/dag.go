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
    `math`
)

// DAG is the per-function node arena. Nodes are never mutated, rewriting a
// node records a redirect from its results to the replacement values, which
// every reader resolves through.
type DAG struct {
    nodes    []*Node
    cse      map[string]NodeID
    redirect map[Value]Value
    entry    NodeID
}

func New() *DAG {
    ret := &DAG {
        nodes    : []*Node { nil },
        cse      : make(map[string]NodeID),
        redirect : make(map[Value]Value),
    }
    ret.entry = ret.Make(Node { Op: OpEntryToken, Types: []VT { Other } }).ID
    return ret
}

// Len returns the number of nodes ever created, including the replaced ones.
func (self *DAG) Len() int {
    return len(self.nodes) - 1
}

func (self *DAG) Entry() Value {
    return Value { ID: self.entry }
}

func (self *DAG) Node(id NodeID) *Node {
    if id == 0 || int(id) >= len(self.nodes) {
        panic(fmt.Sprintf("invalid node id: %d", id))
    } else {
        return self.nodes[id]
    }
}

// NodeOf returns the node currently producing v.
func (self *DAG) NodeOf(v Value) *Node {
    return self.Node(self.Resolve(v).ID)
}

// Op returns the opcode of the node currently producing v.
func (self *DAG) Op(v Value) Opcode {
    return self.NodeOf(v).Op
}

func (self *DAG) TypeOf(v Value) VT {
    v = self.Resolve(v)
    n := self.Node(v.ID)

    /* check for result index */
    if int(v.Res) >= len(n.Types) {
        panic(fmt.Sprintf("result %d out of range for %s", v.Res, n.Op))
    } else {
        return n.Types[v.Res]
    }
}

// Resolve follows the redirect table until it reaches a live value.
func (self *DAG) Resolve(v Value) Value {
    for i := 0; ; i++ {
        if r, ok := self.redirect[v]; !ok {
            return v
        } else if i > len(self.redirect) {
            panic("redirect cycle at " + v.String())
        } else {
            v = r
        }
    }
}

// IsReplaced reports whether any result of the node has been redirected.
func (self *DAG) IsReplaced(id NodeID) bool {
    for i := range self.Node(id).Types {
        if _, ok := self.redirect[Value { ID: id, Res: uint8(i) }]; ok {
            return true
        }
    }
    return false
}

// Arg returns the i-th operand of the node producing v, resolved.
func (self *DAG) Arg(v Value, i int) Value {
    return self.Resolve(self.NodeOf(v).Args[i])
}

// ArgNode returns the node producing the i-th operand of v.
func (self *DAG) ArgNode(v Value, i int) *Node {
    return self.Node(self.Arg(v, i).ID)
}

// Args returns all the operands of the node producing v, resolved.
func (self *DAG) Args(v Value) []Value {
    args := self.NodeOf(v).Args
    ret := make([]Value, len(args))

    /* resolve every operand */
    for i, a := range args {
        ret[i] = self.Resolve(a)
    }
    return ret
}

// Replace redirects every reader of from to to. Replacing a value by itself,
// or by something that already resolves to it, is a no-op.
func (self *DAG) Replace(from Value, to Value) bool {
    from = self.Resolve(from)
    to = self.Resolve(to)

    /* nothing to do */
    if from == to {
        return false
    }

    /* record the redirect */
    self.redirect[from] = to
    return true
}

// Results returns the values produced by the node of v. A merge_values node
// produces its operands.
func (self *DAG) Results(v Value) []Value {
    v = self.Resolve(v)
    n := self.Node(v.ID)

    /* merge values are transparent */
    if n.Op == OpMergeValues {
        return self.Args(v)
    }

    /* one value per result type */
    ret := make([]Value, len(n.Types))
    for i := range n.Types {
        ret[i] = Value { ID: v.ID, Res: uint8(i) }
    }
    return ret
}

// Make creates a node, or returns an existing identical one.
func (self *DAG) Make(n Node) Value {
    args := make([]Value, len(n.Args))
    for i, a := range n.Args {
        args[i] = self.Resolve(a)
    }

    /* operands are always stored resolved */
    n.Args = args
    n.Types = append([]VT(nil), n.Types...)

    /* try folding first */
    if v, ok := self.fold(&n); ok {
        return v
    }

    /* hash-consing */
    key := n.key()
    if id, ok := self.cse[key]; ok {
        return Value { ID: id }
    }

    /* allocate a new node */
    id := NodeID(len(self.nodes))
    self.cse[key] = id
    self.nodes = append(self.nodes, &n)
    return Value { ID: id }
}

func (self *DAG) Get(op Opcode, vt VT, args ...Value) Value {
    return self.Make(Node { Op: op, Types: []VT { vt }, Args: args })
}

func (self *DAG) GetN(op Opcode, types []VT, args ...Value) Value {
    return self.Make(Node { Op: op, Types: types, Args: args })
}

func (self *DAG) Constant(v int64, vt VT) Value {
    if n := vt.Bits(); n > 0 && n < 64 {
        v = (v << (64 - n)) >> (64 - n)
    }
    return self.Make(Node { Op: OpConstant, Types: []VT { vt }, Imm: v })
}

func (self *DAG) ConstantFP(v float64, vt VT) Value {
    if vt == F32 {
        v = float64(float32(v))
    }
    return self.Make(Node { Op: OpConstantFP, Types: []VT { vt }, Fp: v })
}

func (self *DAG) Undef(vt VT) Value {
    return self.Make(Node { Op: OpUndef, Types: []VT { vt } })
}

func (self *DAG) Register(reg int64, vt VT) Value {
    return self.Make(Node { Op: OpRegister, Types: []VT { vt }, Imm: reg })
}

func (self *DAG) CopyFromReg(chain Value, reg int64, vt VT) Value {
    return self.Make(Node {
        Op    : OpCopyFromReg,
        Types : []VT { vt, Other },
        Args  : []Value { chain },
        Imm   : reg,
    })
}

func (self *DAG) CopyToReg(chain Value, reg int64, v Value) Value {
    return self.Make(Node {
        Op    : OpCopyToReg,
        Types : []VT { Other },
        Args  : []Value { chain, v },
        Imm   : reg,
    })
}

// TokenFactor joins several chains, a single chain is returned as it is.
func (self *DAG) TokenFactor(chains ...Value) Value {
    if len(chains) == 1 {
        return chains[0]
    } else {
        return self.Get(OpTokenFactor, Other, chains...)
    }
}

func (self *DAG) MergeValues(vals ...Value) Value {
    types := make([]VT, len(vals))
    for i, v := range vals {
        types[i] = self.TypeOf(v)
    }
    return self.GetN(OpMergeValues, types, vals...)
}

// Load creates a load, result 0 is the value and result 1 the output chain.
func (self *DAG) Load(vt VT, chain Value, ptr Value, mem MemOperand) Value {
    return self.Make(Node {
        Op    : OpLoad,
        Types : []VT { vt, Other },
        Args  : []Value { chain, ptr },
        Mem   : &mem,
    })
}

// IndexedLoad is a load with an explicit offset operand.
func (self *DAG) IndexedLoad(vt VT, chain Value, ptr Value, off Value, mem MemOperand) Value {
    mem.Indexed = true
    return self.Make(Node {
        Op    : OpLoad,
        Types : []VT { vt, Other },
        Args  : []Value { chain, ptr, off },
        Mem   : &mem,
    })
}

func (self *DAG) Store(chain Value, val Value, ptr Value, mem MemOperand) Value {
    return self.Make(Node {
        Op    : OpStore,
        Types : []VT { Other },
        Args  : []Value { chain, val, ptr },
        Mem   : &mem,
    })
}

func (self *DAG) IndexedStore(chain Value, val Value, ptr Value, off Value, mem MemOperand) Value {
    mem.Indexed = true
    return self.Make(Node {
        Op    : OpStore,
        Types : []VT { Other },
        Args  : []Value { chain, val, ptr, off },
        Mem   : &mem,
    })
}

func (self *DAG) SetCC(vt VT, lhs Value, rhs Value, cc CondCode) Value {
    return self.Make(Node {
        Op    : OpSetCC,
        Types : []VT { vt },
        Args  : []Value { lhs, rhs },
        CC    : cc,
    })
}

// SelectCC creates (lhs cc rhs) ? t : f.
func (self *DAG) SelectCC(vt VT, lhs Value, rhs Value, t Value, f Value, cc CondCode) Value {
    return self.Make(Node {
        Op    : OpSelectCC,
        Types : []VT { vt },
        Args  : []Value { lhs, rhs, t, f },
        CC    : cc,
    })
}

func (self *DAG) Bitcast(vt VT, v Value) Value {
    v = self.Resolve(v)
    n := self.Node(v.ID)

    /* same type, or bitcast of bitcast */
    if self.TypeOf(v) == vt {
        return v
    } else if n.Op == OpBitcast {
        return self.Bitcast(vt, n.Args[0])
    }

    /* 32-bit constants are reinterpreted directly */
    switch {
        case n.Op == OpConstant && self.TypeOf(v) == I32 && vt == F32:
            return self.ConstantFP(float64(math.Float32frombits(uint32(n.Imm))), F32)
        case n.Op == OpConstantFP && self.TypeOf(v) == F32 && vt == I32:
            return self.Constant(int64(math.Float32bits(float32(n.Fp))), I32)
        case n.Op == OpUndef:
            return self.Undef(vt)
    }
    return self.Get(OpBitcast, vt, v)
}

func (self *DAG) BuildVector(vt VT, lanes ...Value) Value {
    return self.Get(OpBuildVector, vt, lanes...)
}

func (self *DAG) ExtractElt(vt VT, vec Value, idx int) Value {
    return self.Get(OpExtractVectorElt, vt, vec, self.Constant(int64(idx), I32))
}

func (self *DAG) IntrinsicVoid(id Intrinsic, chain Value, args ...Value) Value {
    return self.Make(Node {
        Op    : OpIntrinsicVoid,
        Types : []VT { Other },
        Args  : append([]Value { chain }, args...),
        Imm   : int64(id),
    })
}

func (self *DAG) IntrinsicWOChain(id Intrinsic, vt VT, args ...Value) Value {
    return self.Make(Node {
        Op    : OpIntrinsicWOChain,
        Types : []VT { vt },
        Args  : args,
        Imm   : int64(id),
    })
}

// ConstValue returns the integer value of v if it is a constant.
func (self *DAG) ConstValue(v Value) (int64, bool) {
    if n := self.NodeOf(v); n.Op == OpConstant {
        return n.Imm, true
    } else {
        return 0, false
    }
}

// FPValue returns the floating point value of v if it is a constant.
func (self *DAG) FPValue(v Value) (float64, bool) {
    if n := self.NodeOf(v); n.Op == OpConstantFP {
        return n.Fp, true
    } else {
        return 0, false
    }
}

func (self *DAG) IsUndef(v Value) bool {
    return self.NodeOf(v).Op == OpUndef
}
