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
    `github.com/cloudwego/r600isel/internal/dag`
    `github.com/cloudwego/r600isel/internal/target`
    `github.com/cloudwego/r600isel/internal/utils`
)

// StackAddress returns the register channel of the idx-th vector element in
// the emulated indirect register file, and how much the register index must
// be incremented before accessing it.
func StackAddress(stackWidth int, idx int) (ch int, incr int) {
    switch stackWidth {
        case 2: {
            if idx == 2 {
                return idx % 2, 1
            } else {
                return idx % 2, 0
            }
        }

        /* every element uses its own channel */
        case 4: {
            return idx, 0
        }

        /* one channel per register */
        default: {
            if idx > 0 {
                return 0, 1
            } else {
                return 0, 0
            }
        }
    }
}

// stackPtrToRegIndex converts a byte address into an indirect register index.
// Each register holds 16 bytes, of which only stackWidth channels are used.
func (self *Lowering) stackPtrToRegIndex(ptr dag.Value) dag.Value {
    var pad int64

    /* 4 bytes per used channel */
    switch self.fn.StackWidth {
        case 1  : pad = 2
        case 2  : pad = 3
        case 4  : pad = 4
        default : utils.Fatalf("stackPtrToRegIndex", "invalid stack width %d", self.fn.StackWidth)
    }

    /* shift the pointer */
    return self.g.Get(dag.OpSrl, self.g.TypeOf(ptr), ptr, self.g.Constant(pad, dag.I32))
}

func (self *Lowering) lowerStore(v dag.Value) (dag.Value, bool) {
    g := self.g
    n := g.NodeOf(v)
    mem := *n.Mem
    chain, val, ptr := g.Arg(v, 0), g.Arg(v, 1), g.Arg(v, 2)
    vt := g.TypeOf(val)

    /* vector stores to local memory are split */
    if mem.Space == dag.Local && vt.IsVector() {
        return self.splitVectorStore(v), true
    }

    /* global memory is word addressed */
    if mem.Space == dag.Global {
        if mem.Trunc {
            return self.lowerStoreMskor(v), true
        }

        /* convert the byte address into a word address */
        if g.Op(ptr) != dag.OpDwordAddr && vt.Bits() >= 32 {
            if mem.Indexed {
                utils.Fatalf("lowerStore", "indexed global stores are not supported")
            }
            pvt := g.TypeOf(ptr)
            ptr = g.Get(dag.OpDwordAddr, pvt, g.Get(dag.OpSrl, pvt, ptr, g.Constant(2, dag.I32)))
            return g.Store(chain, val, ptr, mem), true
        }
    }

    /* only the private address space is left */
    if mem.Space != dag.Private {
        return dag.Value{}, false
    }

    /* indirect addressing */
    ptr = self.stackPtrToRegIndex(ptr)
    if !vt.IsVector() {
        if vt == dag.I8 {
            val = g.Get(dag.OpZeroExtend, dag.I32, val)
        }
        return g.Get(dag.OpRegisterStore, dag.Other, chain, val, ptr, g.Constant(0, dag.I32)), true
    }

    /* the vector must cover the used channels */
    nl := vt.Lanes()
    if nl < self.fn.StackWidth {
        utils.Fatalf("lowerStore", "stack width %d is wider than %s", self.fn.StackWidth, vt)
    }

    /* one register store per element */
    stores := make([]dag.Value, nl)
    for i := 0; i < nl; i++ {
        ch, incr := StackAddress(self.fn.StackWidth, i)
        ptr = g.Get(dag.OpAdd, dag.I32, ptr, g.Constant(int64(incr), dag.I32))
        elem := g.ExtractElt(vt.Elem(), val, i)
        stores[i] = g.Get(dag.OpRegisterStore, dag.Other, chain, elem, ptr, g.Constant(int64(ch), dag.I32))
    }
    return g.TokenFactor(stores...), true
}

// lowerStoreMskor turns a truncating global store into a masked
// read-modify-write of the enclosing word:
//
//     shift = (ptr & 3) * 8
//     STORE_MSKOR { (val & mask) << shift, 0, 0, mask << shift }, ptr >> 2
//
func (self *Lowering) lowerStoreMskor(v dag.Value) dag.Value {
    g := self.g
    n := g.NodeOf(v)
    mem := *n.Mem
    chain, val, ptr := g.Arg(v, 0), g.Arg(v, 1), g.Arg(v, 2)
    vt := g.TypeOf(val)

    /* truncating and indexed at the same time */
    if mem.Indexed {
        utils.Fatalf("lowerStore", "truncating indexed global stores are not supported")
    }

    /* must fit in a word */
    if vt.IsVector() || vt.Bits() > 32 {
        utils.Fatalf("lowerStore", "truncating store of %s", vt)
    }

    /* select the mask by memory type */
    var mask dag.Value
    switch mem.MemVT {
        case dag.I8  : mask = g.Constant(0xff, dag.I32)
        case dag.I16 : mask = g.Constant(0xffff, dag.I32)
        default      : utils.Fatalf("lowerStore", "truncating store to %s", mem.MemVT)
    }

    /* compute the word address and the shifted value and mask */
    dword := g.Get(dag.OpSrl, vt, ptr, g.Constant(2, dag.I32))
    index := g.Get(dag.OpAnd, g.TypeOf(ptr), ptr, g.Constant(3, vt))
    value := g.Get(dag.OpAnd, vt, val, mask)
    shift := g.Get(dag.OpShl, vt, index, g.Constant(3, vt))
    input := g.BuildVector(dag.V4I32,
        g.Get(dag.OpShl, vt, value, shift),
        g.Constant(0, dag.I32),
        g.Constant(0, dag.I32),
        g.Get(dag.OpShl, vt, mask, shift),
    )

    /* one masked store */
    return g.Make(dag.Node {
        Op    : dag.OpStoreMskor,
        Types : []dag.VT { dag.Other },
        Args  : []dag.Value { chain, input, dword },
        Mem   : &mem,
    })
}

func (self *Lowering) splitVectorStore(v dag.Value) dag.Value {
    g := self.g
    n := g.NodeOf(v)
    chain, val, ptr := g.Arg(v, 0), g.Arg(v, 1), g.Arg(v, 2)
    vt := g.TypeOf(val)
    ev := vt.Elem()
    stores := make([]dag.Value, vt.Lanes())

    /* one scalar store per element */
    for i := range stores {
        mem := *n.Mem
        mem.MemVT = ev
        addr := g.Get(dag.OpAdd, g.TypeOf(ptr), ptr, g.Constant(int64(i * ev.Bits() / 8), dag.I32))
        stores[i] = g.Store(chain, g.ExtractElt(ev, val, i), addr, mem)
    }
    return g.TokenFactor(stores...)
}

func (self *Lowering) splitVectorLoad(v dag.Value) dag.Value {
    g := self.g
    n := g.NodeOf(v)
    vt := n.Types[0]
    ev := vt.Elem()
    chain, ptr := g.Arg(v, 0), g.Arg(v, 1)
    vals := make([]dag.Value, vt.Lanes())
    chains := make([]dag.Value, vt.Lanes())

    /* one scalar load per element */
    for i := range vals {
        mem := *n.Mem
        mem.MemVT = ev
        addr := g.Get(dag.OpAdd, g.TypeOf(ptr), ptr, g.Constant(int64(i * ev.Bits() / 8), dag.I32))
        ld := g.Load(ev, chain, addr, mem)
        vals[i] = ld
        chains[i] = dag.Value { ID: ld.ID, Res: 1 }
    }
    return g.MergeValues(g.BuildVector(vt, vals...), g.TokenFactor(chains...))
}

func (self *Lowering) lowerLoad(v dag.Value) (dag.Value, bool) {
    g := self.g
    n := g.NodeOf(v)
    vt := n.Types[0]
    mem := *n.Mem
    chain, ptr := g.Arg(v, 0), g.Arg(v, 1)

    /* vector loads from local memory are split */
    if mem.Space == dag.Local && vt.IsVector() {
        return self.splitVectorLoad(v), true
    }

    /* constant banks, sign extension is already done when uploading */
    if bank, ok := mem.Space.ConstantBank(); ok {
        if mem.Ext == dag.NonExt || mem.Ext == dag.ZExt {
            return self.lowerConstantBankLoad(v, bank), true
        } else {
            return dag.Value{}, false
        }
    }

    /* sign extension is done with a pair of shifts */
    if mem.Ext == dag.SExt {
        return self.lowerSExtLoad(v), true
    }

    /* full word global loads use word addresses */
    if mem.Space == dag.Global && mem.Ext == dag.NonExt && vt.Bits() >= 32 && g.Op(ptr) != dag.OpDwordAddr {
        if mem.Indexed {
            utils.Fatalf("lowerLoad", "indexed global loads are not supported")
        }
        pvt := g.TypeOf(ptr)
        ptr = g.Get(dag.OpDwordAddr, pvt, g.Get(dag.OpSrl, pvt, ptr, g.Constant(2, dag.I32)))
        ld := g.Load(vt, chain, ptr, mem)
        return g.MergeValues(ld, dag.Value { ID: ld.ID, Res: 1 }), true
    }

    /* only the private address space is left */
    if mem.Space != dag.Private {
        return dag.Value{}, false
    }

    /* the offset operand of indexed loads is carried along */
    off := g.Undef(dag.I32)
    if mem.Indexed {
        off = g.Arg(v, 2)
    }

    /* indirect addressing */
    ptr = self.stackPtrToRegIndex(ptr)
    if !vt.IsVector() {
        ld := g.Get(dag.OpRegisterLoad, vt, chain, ptr, g.Constant(0, dag.I32), off)
        return g.MergeValues(ld, chain), true
    }

    /* the vector must cover the used channels */
    nl := vt.Lanes()
    if nl < self.fn.StackWidth {
        utils.Fatalf("lowerLoad", "stack width %d is wider than %s", self.fn.StackWidth, vt)
    }

    /* one register load per element, unused trailing lanes are undefined */
    ev := vt.Elem()
    loads := make([]dag.Value, 4)
    for i := range loads {
        if i >= nl {
            loads[i] = g.Undef(ev)
        } else {
            ch, incr := StackAddress(self.fn.StackWidth, i)
            ptr = g.Get(dag.OpAdd, dag.I32, ptr, g.Constant(int64(incr), dag.I32))
            loads[i] = g.Get(dag.OpRegisterLoad, ev, chain, ptr, g.Constant(int64(ch), dag.I32), off)
        }
    }
    return g.MergeValues(g.BuildVector(dag.VectorOf(ev, 4), loads...), chain), true
}

// lowerConstantBankLoad reads a constant bank. With a known address each lane
// is fetched from
//
//     ptr + 4 * lane + block * 16,  block = 512 + 4096 * bank
//
// otherwise a whole 16-byte slot is fetched at ptr >> 4.
func (self *Lowering) lowerConstantBankLoad(v dag.Value, bank int) dag.Value {
    var ret dag.Value
    g := self.g
    n := g.NodeOf(v)
    vt := n.Types[0]
    chain, ptr := g.Arg(v, 0), g.Arg(v, 1)
    _, isconst := g.ConstValue(ptr)

    /* fold the address into the constant index */
    if n.Mem.ConstSrc || isconst {
        rt := dag.V4I32
        nl := 4
        block := target.ConstantAddressBlock(bank)

        /* vector loads keep their width */
        if vt.IsVector() {
            nl = vt.Lanes()
            rt = dag.VectorOf(dag.I32, nl)
        }

        /* one constant fetch per lane */
        slots := make([]dag.Value, nl)
        for i := range slots {
            addr := g.Get(dag.OpAdd, g.TypeOf(ptr), ptr, g.Constant(4 * int64(i) + block * 16, dag.I32))
            slots[i] = g.Get(dag.OpConstAddress, dag.I32, addr)
        }
        ret = g.BuildVector(rt, slots...)
    } else {
        idx := g.Get(dag.OpSrl, dag.I32, ptr, g.Constant(4, dag.I32))
        ret = g.Get(dag.OpConstAddress, dag.V4I32, idx, g.Constant(int64(bank), dag.I32))
    }

    /* scalar loads use lane 0 */
    if !vt.IsVector() {
        ret = g.ExtractElt(dag.I32, ret, 0)
    }
    return g.MergeValues(g.Bitcast(vt, ret), chain)
}

// lowerSExtLoad rebuilds a sign extending load as
//
//     sra (shl (extload ptr), n), n,  n = bits(vt) - bits(memvt)
//
func (self *Lowering) lowerSExtLoad(v dag.Value) dag.Value {
    var ld dag.Value
    g := self.g
    n := g.NodeOf(v)
    vt := n.Types[0]
    mem := *n.Mem
    chain, ptr := g.Arg(v, 0), g.Arg(v, 1)

    /* only scalar sub-word loads */
    if mem.MemVT != dag.I8 && mem.MemVT != dag.I16 {
        utils.Fatalf("lowerSExtLoad", "sign extending load from %s", mem.MemVT)
    }

    /* load without extension semantics */
    mem.Ext = dag.AnyExt
    if mem.Indexed {
        ld = g.IndexedLoad(vt, chain, ptr, g.Arg(v, 2), mem)
    } else {
        ld = g.Load(vt, chain, ptr, mem)
    }

    /* reproduce the sign */
    amt := g.Constant(int64(vt.Bits() - mem.MemVT.Bits()), dag.I32)
    shl := g.Get(dag.OpShl, vt, ld, amt)
    sra := g.Get(dag.OpSra, vt, shl, amt)
    return g.MergeValues(sra, dag.Value { ID: ld.ID, Res: 1 })
}
