/*
 * Copyright 2023 CloudWeGo Authors
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

package ossa

import (
    `io`

    `github.com/cloudwego/ossa/internal/opts`
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithPruneDebug enables tracking and rewriting of debug-value instructions
// as part of destroy placement.
//
// When disabled, debug-value observers behave like ordinary instantaneous
// uses and keep the observed value alive.
func WithPruneDebug(v bool) Option {
    return func(o *opts.Options) { o.PruneDebug = v }
}

// WithMaximizeLifetimes places final destroys at the latest position
// reachable across ignored instructions instead of the tightest boundary.
func WithMaximizeLifetimes(v bool) Option {
    return func(o *opts.Options) { o.MaximizeLifetimes = v }
}

// WithDebugWriter enables per-phase canonicalizer tracing on w.
func WithDebugWriter(w io.Writer) Option {
    return func(o *opts.Options) { o.DebugWriter = w }
}

// WithDebugSVGDir renders the pruned liveness of every canonicalized value
// as an SVG file under dir. Intended for debugging only.
func WithDebugSVGDir(dir string) Option {
    return func(o *opts.Options) { o.DebugSVGDir = dir }
}
