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

package canon

import (
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/cloudwego/ossa/internal/oir`
)

// interleaved scopes require iterative extension: hoisting over end_access A
// exposes an overlap with scope B.
//
//     %d
//     begin_access A
//     use %d
//     begin_access B
//     end_access A
//     end_access B
//     destroy %d
//
func TestExtend_InterleavedScopes(t *testing.T) {
    cfg := oir.CreateCFG("interleaved")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    ta := bb.BeginAccess("A")
    bb.Call("reader", oir.OwnNone, oir.Borrowed(d))
    tb := bb.BeginAccess("B")
    bb.EndAccess(ta)
    eb := bb.EndAccess(tb)
    dv := bb.Destroy(d)
    bb.Ret(nil)

    c := canonicalize(t, cfg, d)
    require.Equal(t, Stats{}, c.Stats())

    /* the original destroy is reused below both scope ends */
    require.Equal(t, 1, countDestroys(cfg))
    require.Greater(t, bb.IndexOf(dv), bb.IndexOf(eb))
}

// an access scope that opens in a live-out block overlaps wherever it ends.
func TestExtend_LiveOutBegin(t *testing.T) {
    cfg := oir.CreateCFG("liveout")
    b0 := cfg.Root
    b1 := cfg.CreateBlock()

    d := b0.Call("producer", oir.OwnOwned)
    tok := b0.BeginAccess("A")
    b0.Jump(b1)
    b1.Call("reader", oir.OwnNone, oir.Borrowed(d))
    ea := b1.EndAccess(tok)
    dv := b1.Destroy(d)
    b1.Ret(nil)

    canonicalize(t, cfg, d)
    require.Equal(t, 1, countDestroys(cfg))
    require.Greater(t, b1.IndexOf(dv), b1.IndexOf(ea))
}

// a scope fully past the boundary is unrelated, the destroy hoists over it.
func TestExtend_NonOverlapping(t *testing.T) {
    cfg := oir.CreateCFG("unrelated")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    use := bb.Call("reader", oir.OwnNone, oir.Borrowed(d))
    tok := bb.BeginAccess("A")
    ea := bb.EndAccess(tok)
    bb.Destroy(d)
    bb.Ret(nil)

    c := canonicalize(t, cfg, d)
    require.Equal(t, 1, countDestroys(cfg))
    require.Equal(t, 1, c.Stats().DestroysGenerated)
    require.Equal(t, 1, c.Stats().DestroysEliminated)

    /* the fresh destroy lands between the last use and the begin-access */
    dv := bb.Ins[bb.IndexOf(use.DefiningInst()) + 1].(*oir.IrDestroy)
    require.Equal(t, d, dv.V.Value())
    require.Less(t, bb.IndexOf(dv), bb.IndexOf(ea))
}

// end_unpaired_access is conservatively treated as overlapping.
func TestExtend_UnpairedAccess(t *testing.T) {
    cfg := oir.CreateCFG("unpaired")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    bb.Call("reader", oir.OwnNone, oir.Borrowed(d))
    ua := bb.EndUnpairedAccess()
    dv := bb.Destroy(d)
    bb.Ret(nil)

    c := canonicalize(t, cfg, d)
    require.Equal(t, Stats{}, c.Stats())
    require.Greater(t, bb.IndexOf(dv), bb.IndexOf(ua))
}

// the documented conservative corner: when the block's final consume is a
// destroy below an overlapping end-access, the interior copy consume keeps
// its copy instead of folding onto the def.
func TestExtend_TwoConsumesStraddlingScope(t *testing.T) {
    cfg := oir.CreateCFG("straddle")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    c0 := bb.Copy(d)
    tok := bb.BeginAccess("A")
    st := bb.Store(c0, "sink")
    ea := bb.EndAccess(tok)
    dv := bb.Destroy(d)
    bb.Ret(nil)

    canonicalize(t, cfg, d)

    /* lifetime extends below the end-access, so both consumes survive */
    require.Equal(t, 1, countCopies(cfg))
    require.Equal(t, 1, countDestroys(cfg))
    require.Equal(t, c0, st.V.Value())
    require.Greater(t, bb.IndexOf(dv), bb.IndexOf(ea))
}

// a scope that opens before the def in a dominating block and closes in a
// dead block overlaps: the destroy must not hoist above the scope end.
func TestExtend_DeadBlockDominance(t *testing.T) {
    cfg := oir.CreateCFG("deaddom")
    b0 := cfg.Root
    b1 := cfg.CreateBlock()
    b2 := cfg.CreateBlock()

    /* the scope opens in bb_0, the def lives in bb_1, the scope closes in
     * bb_2 before the original destroy */
    tok := b0.BeginAccess("A")
    b0.Jump(b1)
    d := b1.Call("producer", oir.OwnOwned)
    b1.Call("reader", oir.OwnNone, oir.Borrowed(d))
    b1.Jump(b2)
    ea := b2.EndAccess(tok)
    dv := b2.Destroy(d)
    b2.Ret(nil)

    c := canonicalize(t, cfg, d)

    /* begin_access properly dominates the def's block, so liveness extends
     * over the end_access and the original destroy is reused in place */
    require.Equal(t, Stats{}, c.Stats())
    require.Equal(t, 1, countDestroys(cfg))
    require.Greater(t, b2.IndexOf(dv), b2.IndexOf(ea))
}
