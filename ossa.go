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

// Package ossa implements lifetime canonicalization for an Ownership-SSA
// intermediate representation.
//
// The IR itself lives in internal/oir: a control-flow graph of basic blocks
// whose values carry a static ownership kind, with block parameters serving
// as phi nodes. The canonicalizer in internal/canon rewrites the extended
// lifetime of a single owned value (the value together with the transitive
// closure of its copies) so that every elidable copy is removed and the
// destroys sit on the tight pruned liveness boundary: an original destroy
// already at a boundary point is kept in place, every other original destroy
// is removed and fresh ones are inserted where needed. Copies are
// re-introduced only at uses that genuinely require independent ownership.
//
// This package only carries the user-facing configuration surface; the
// machinery is deliberately internal.
package ossa
