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

package r600isel

import (
    `github.com/cloudwego/r600isel/internal/dag`
    `github.com/cloudwego/r600isel/internal/lowering`
    `github.com/cloudwego/r600isel/internal/machine`
    `github.com/cloudwego/r600isel/internal/opts`
    `github.com/cloudwego/r600isel/internal/target`
    `github.com/cloudwego/r600isel/internal/utils`
)

type (
    DAG         = dag.DAG
    Value       = dag.Value
    Function    = target.Function
    Generation  = target.Generation
    MachineFunc = machine.Func
    Instr       = machine.Instr
    Builder     = machine.Builder
)

const (
    R600      = target.R600
    R700      = target.R700
    Evergreen = target.Evergreen
    Cayman    = target.Cayman
)

// Target lowers functions for one hardware configuration. Its tables are
// read-only, so a Target may be shared by goroutines lowering different
// functions.
type Target struct {
    opts  opts.Options
    info  *target.Info
    table *lowering.Table
    instr *machine.InstrInfo
    exp   *machine.Expander
    fold  *machine.Folder
}

func NewTarget(options ...Option) *Target {
    o := opts.GetDefaultOptions()
    for _, fn := range options {
        fn(&o)
    }

    /* build the tables */
    ret := &Target {
        opts  : o,
        info  : target.NewInfo(o.Generation, o.ConstReadLimit),
        table : lowering.NewTable(),
        instr : machine.NewInstrInfo(o.ConstReadLimit),
    }

    /* post-selection passes */
    ret.exp = machine.NewExpander(ret.instr)
    ret.fold = machine.NewFolder(ret.instr)
    ret.exp.SetLogger(o.Log())
    ret.fold.SetLogger(o.Log())
    return ret
}

func (self *Target) Generation() Generation {
    return self.opts.Generation
}

// NewFunction creates the per-function state using the configured stack width.
func (self *Target) NewFunction(name string) *Function {
    return target.NewFunction(name, self.opts.StackWidth)
}

func (self *Target) newLowering(g *DAG, fn *Function) *lowering.Lowering {
    l := lowering.New(g, fn, self.info, self.table)
    l.SetLogger(self.opts.Log())
    return l
}

// Legalize rewrites one node the hardware cannot execute natively.
func (self *Target) Legalize(g *DAG, fn *Function, v Value) (Value, bool) {
    return self.newLowering(g, fn).Legalize(v)
}

// Combine applies the target peephole rule matching v, if any.
func (self *Target) Combine(g *DAG, fn *Function, v Value) (Value, bool) {
    return self.newLowering(g, fn).Combine(v)
}

// LowerDAG combines and legalizes every node reachable from roots and
// returns the new roots.
func (self *Target) LowerDAG(g *DAG, fn *Function, roots []Value) (ret []Value, err error) {
    defer self.catch(fn.Name, "lower", &err)
    return self.newLowering(g, fn).Run(roots), nil
}

// Expand rewrites the placeholder mi, which is the current instruction of b.
func (self *Target) Expand(mi *Instr, b *Builder) {
    self.exp.Expand(mi, b)
}

// Fold tries to fold one helper instruction into mi.
func (self *Target) Fold(mf *MachineFunc, mi *Instr) (*Instr, bool) {
    return self.fold.Fold(mf, mi)
}

// FinalizeFunction folds, expands the remaining placeholders, and folds
// again what the expansion produced.
func (self *Target) FinalizeFunction(mf *MachineFunc) (err error) {
    defer self.catch(mf.Info.Name, "finalize", &err)
    self.fold.Run(mf)
    self.exp.Run(mf)
    self.fold.Run(mf)
    return nil
}

func (self *Target) catch(name string, stage string, err *error) {
    if v := recover(); v != nil {
        if e, ok := utils.AsInvariant(v); !ok {
            panic(v)
        } else {
            self.opts.Log().Debug("lowering aborted", "function", name, "stage", stage, "reason", e.Reason)
            *err = LoweringError { Function: name, Stage: stage, Cause: e }
        }
    }
}
