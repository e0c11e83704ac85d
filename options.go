/*
 * Copyright 2021 ByteDance Inc.
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
	"fmt"
	"log/slog"

	"github.com/cloudwego/r600isel/internal/opts"
	"github.com/cloudwego/r600isel/internal/target"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithGeneration selects the hardware generation.
//
// The default value is read from the `R600_GENERATION` environment variable,
// and is "r700" when it is not set.
func WithGeneration(gen Generation) Option {
	if gen > target.Cayman {
		panic(fmt.Sprintf("r600isel: invalid generation: %d", gen))
	} else {
		return func(o *opts.Options) { o.Generation = gen }
	}
}

// WithStackWidth sets the number of sub-registers of an indirect stack slot.
// It must be 1, 2 or 4.
//
// The default value of this option is "1".
func WithStackWidth(width int) Option {
	switch width {
	case 1, 2, 4:
		return func(o *opts.Options) { o.StackWidth = width }
	default:
		panic(fmt.Sprintf("r600isel: invalid stack width: %d", width))
	}
}

// WithConstReadLimit sets how many distinct constant-bank reads a single
// instruction group may perform.
//
// The default value of this option is "2".
func WithConstReadLimit(limit int) Option {
	if limit <= 0 {
		panic(fmt.Sprintf("r600isel: invalid constant read limit: %d", limit))
	} else {
		return func(o *opts.Options) { o.ConstReadLimit = limit }
	}
}

// WithLogger sets the logger receiving a debug record for every rewrite.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("r600isel: nil logger")
	} else {
		return func(o *opts.Options) { o.Logger = l }
	}
}

// SetDefaultStackWidth sets the default stack width for all targets created
// from now on.
//
// This value can also be configured with the `R600_STACK_WIDTH` environment
// variable.
//
// Returns the old opts.StackWidth value.
func SetDefaultStackWidth(width int) int {
	WithStackWidth(width)
	width, opts.StackWidth = opts.StackWidth, width
	return width
}
