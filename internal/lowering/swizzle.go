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
    `fmt`

    `github.com/cloudwego/r600isel/internal/dag`
    `github.com/cloudwego/r600isel/internal/utils`
)

// Sel is a swizzle selector, either a source lane or a constant.
type Sel int64

const (
    SelX Sel = iota
    SelY
    SelZ
    SelW
    SelZero
    SelOne
)

const (
    SelMask Sel = 7
    selKeep Sel = -1
)

func (self Sel) String() string {
    switch self {
        case SelX    : return "x"
        case SelY    : return "y"
        case SelZ    : return "z"
        case SelW    : return "w"
        case SelZero : return "0"
        case SelOne  : return "1"
        case SelMask : return "_"
        case selKeep : return "="
        default      : return fmt.Sprintf("sel(%d)", int64(self))
    }
}

// Remap maps an old lane to its new selector, entries equal to selKeep
// leave the selector alone.
type Remap [4]Sel

func noRemap() Remap {
    return Remap { selKeep, selKeep, selKeep, selKeep }
}

func identityRemap() Remap {
    return Remap { SelX, SelY, SelZ, SelW }
}

// Lookup returns the new selector for sel, if sel is remapped.
func (self Remap) Lookup(sel Sel) (Sel, bool) {
    if sel < SelX || sel > SelW || self[sel] == selKeep {
        return sel, false
    } else {
        return self[sel], true
    }
}

func (self Remap) String() string {
    return fmt.Sprintf("[%s %s %s %s]", self[0], self[1], self[2], self[3])
}

func swizzleLanes(g *dag.DAG, vec dag.Value, where string) []dag.Value {
    if g.Op(vec) != dag.OpBuildVector {
        utils.Fatalf(where, "%s is not a build_vector", g.Op(vec))
    }
    if args := g.Args(vec); len(args) != 4 {
        utils.Fatalf(where, "swizzled vector has %d lanes", len(args))
        return nil
    } else {
        return args
    }
}

func isFPConst(g *dag.DAG, v dag.Value, x float64) bool {
    fv, ok := g.FPValue(v)
    return ok && fv == x
}

// CompactSwizzle blanks the lanes of a 4-lane build_vector which a selector
// can express on its own: undefined lanes, 0.0, 1.0 and duplicates of an
// earlier lane.
func CompactSwizzle(g *dag.DAG, vec dag.Value) (dag.Value, Remap) {
    rmp := noRemap()
    vt := g.TypeOf(vec)
    lanes := swizzleLanes(g, vec, "CompactSwizzle")

    /* scan every lane */
    for i, v := range lanes {
        et := g.TypeOf(v)

        /* constants and masked lanes */
        switch {
            case g.IsUndef(v)       : rmp[i] = SelMask
            case isFPConst(g, v, 0) : rmp[i], lanes[i] = SelZero, g.Undef(et)
            case isFPConst(g, v, 1) : rmp[i], lanes[i] = SelOne, g.Undef(et)
        }

        /* blanked lanes can't be duplicates */
        if g.IsUndef(lanes[i]) {
            continue
        }

        /* reuse an earlier identical lane */
        for j := 0; j < i; j++ {
            if lanes[j] == lanes[i] {
                rmp[i], lanes[i] = Sel(j), g.Undef(et)
                break
            }
        }
    }

    /* rebuild the vector */
    return g.BuildVector(vt, lanes...), rmp
}

// ReorganizeVector moves at most one lane extracted from another vector to
// the lane it was extracted from, so the selector becomes an identity. Only
// one swap happens per call, see CanonicalizeSwizzle.
func ReorganizeVector(g *dag.DAG, vec dag.Value) (dag.Value, Remap) {
    var fixed [4]bool
    rmp := identityRemap()
    vt := g.TypeOf(vec)
    lanes := swizzleLanes(g, vec, "ReorganizeVector")

    /* lanes already in place can't move */
    for i, v := range lanes {
        if idx, ok := extractIndex(g, v); ok && idx == i {
            fixed[idx] = true
        }
    }

    /* swap the first movable lane */
    for i, v := range lanes {
        if idx, ok := extractIndex(g, v); ok && !fixed[idx] {
            lanes[i], lanes[idx] = lanes[idx], lanes[i]
            rmp[i], rmp[idx] = rmp[idx], rmp[i]
            break
        }
    }

    /* rebuild the vector */
    return g.BuildVector(vt, lanes...), rmp
}

func extractIndex(g *dag.DAG, v dag.Value) (int, bool) {
    if g.Op(v) != dag.OpExtractVectorElt {
        return 0, false
    } else if idx, ok := g.ConstValue(g.Arg(v, 1)); !ok || idx < 0 || idx > 3 {
        return 0, false
    } else {
        return int(idx), true
    }
}

func (self *Lowering) remapSelectors(rmp Remap, swz []dag.Value) {
    for i, s := range swz {
        if c, ok := self.g.ConstValue(s); !ok {
            utils.Fatalf("OptimizeSwizzle", "selector %d is not a constant", i)
        } else if nv, ok := rmp.Lookup(Sel(c)); ok {
            swz[i] = self.g.Constant(int64(nv), dag.I32)
        }
    }
}

// OptimizeSwizzle runs compaction and then reordering over vec, and applies
// both remap tables to the selector operands swz, which are updated in place.
func (self *Lowering) OptimizeSwizzle(vec dag.Value, swz []dag.Value) dag.Value {
    vec, rmp := CompactSwizzle(self.g, vec)
    self.remapSelectors(rmp, swz)

    /* reorder pass */
    vec, rmp = ReorganizeVector(self.g, vec)
    self.remapSelectors(rmp, swz)
    return vec
}

const _MaxSwizzleRounds = 4

// CanonicalizeSwizzle repeats OptimizeSwizzle until the vector stops
// changing, for at most a few rounds since reordering can cycle between two
// lanes extracted from the same index.
func (self *Lowering) CanonicalizeSwizzle(vec dag.Value, swz []dag.Value) dag.Value {
    for i := 0; i < _MaxSwizzleRounds; i++ {
        if nv := self.OptimizeSwizzle(vec, swz); nv == vec {
            break
        } else {
            vec = nv
        }
    }
    return vec
}
