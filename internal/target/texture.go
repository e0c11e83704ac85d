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

package target

// TextureShape is the texture target id carried by gradient sample pseudos.
type TextureShape int64

const (
    TexRect          TextureShape = 5
    TexShadow1D      TextureShape = 6
    TexShadow2D      TextureShape = 7
    TexShadowRect    TextureShape = 8
    Tex1DArray       TextureShape = 9
    Tex2DArray       TextureShape = 10
    TexShadow1DArray TextureShape = 11
    TexShadow2DArray TextureShape = 12
)

// TextureLayout is the source channel for each of the X, Y, Z and W
// coordinates, and whether each axis uses normalized coordinates.
type TextureLayout struct {
    Src [4]int64
    CT  [4]int64
}

// LayoutOf returns the coordinate layout of a texture shape. Shapes not
// listed use the identity layout with every axis normalized.
func LayoutOf(shape TextureShape) TextureLayout {
    ret := TextureLayout {
        Src : [4]int64 { 0, 1, 2, 3 },
        CT  : [4]int64 { 1, 1, 1, 1 },
    }

    /* remap the channels */
    switch shape {
        case TexRect          : ret.CT[0], ret.CT[1] = 0, 0
        case TexShadow1D      : ret.Src[3] = ret.Src[2]
        case TexShadow2D      : ret.Src[3] = ret.Src[2]
        case TexShadowRect    : ret.CT[0], ret.CT[1], ret.Src[3] = 0, 0, ret.Src[2]
        case Tex1DArray       : ret.Src[2], ret.CT[2] = ret.Src[1], 0
        case Tex2DArray       : ret.CT[2] = 0
        case TexShadow1DArray : ret.Src[2], ret.CT[2] = ret.Src[1], 0
        case TexShadow2DArray : ret.CT[2] = 0
    }
    return ret
}

// ConstantAddressBlock returns the base constant index of a constant bank.
func ConstantAddressBlock(bank int) int64 {
    return 512 + 4096 * int64(bank)
}
