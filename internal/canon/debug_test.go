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
    `bytes`
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/cloudwego/ossa/internal/oir`
    `github.com/cloudwego/ossa/internal/opts`
)

func pruneDebugOptions() opts.Options {
    o := opts.GetDefaultOptions()
    o.PruneDebug = true
    return o
}

// without prune-debug mode, a debug observer is an ordinary use and keeps
// the value alive until after it.
func TestDebug_ObserverExtendsLiveness(t *testing.T) {
    cfg := oir.CreateCFG("dbgkeep")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    bb.Call("reader", oir.OwnNone, oir.Borrowed(d))
    dbg := bb.DebugValue(d, "x")
    dv := bb.Destroy(d)
    bb.Ret(nil)

    c := canonicalize(t, cfg, d)
    require.Equal(t, Stats{}, c.Stats())
    require.Greater(t, bb.IndexOf(dv), bb.IndexOf(dbg))
}

// in prune-debug mode an observer below the boundary survives only because
// the reused destroy stays below it.
func TestDebug_ObserverBeforeReusedDestroy(t *testing.T) {
    cfg := oir.CreateCFG("dbgreuse")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    bb.Call("reader", oir.OwnNone, oir.Borrowed(d))
    dbg := bb.DebugValue(d, "x")
    dv := bb.Destroy(d)
    bb.Ret(nil)

    c := testCanonicalizer(cfg, pruneDebugOptions())
    require.True(t, c.CanonicalizeValueLifetime(d))
    require.NoError(t, oir.Verify(cfg))

    /* observer retained, destroy reused in place */
    require.Equal(t, []oir.Inst { d.DefiningInst(), bb.Ins[1], dbg, dv }, bb.Ins)
}

// in prune-debug mode an observer in the dead region is deleted together
// with the dead destroy.
func TestDebug_DeadObserverPruned(t *testing.T) {
    cfg := oir.CreateCFG("dbgdead")
    b0 := cfg.Root
    b1 := cfg.CreateBlock()
    b2 := cfg.CreateBlock()
    b3 := cfg.CreateBlock()

    d := b0.Call("producer", oir.OwnOwned)
    cv := b0.Call("cond", oir.OwnNone)
    b0.CondBr(cv, b1, b2)
    b1.Store(d, "sink")
    b1.Ret(nil)
    b2.DebugValue(d, "x")
    b2.Jump(b3)
    b3.Destroy(d)
    b3.Ret(nil)

    c := testCanonicalizer(cfg, pruneDebugOptions())
    require.True(t, c.CanonicalizeValueLifetime(d))
    require.NoError(t, oir.Verify(cfg))

    /* the observer is gone, the edge destroy is the only bb_2 instruction */
    require.Len(t, b2.Ins, 1)
    dv := b2.Ins[0].(*oir.IrDestroy)
    require.Equal(t, d, dv.V.Value())
    require.Len(t, b3.Ins, 0)
}

// the debug writer receives per-phase tracing.
func TestDebug_Tracing(t *testing.T) {
    cfg := oir.CreateCFG("trace")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    c0 := bb.Copy(d)
    bb.Store(c0, "sink")
    bb.Destroy(d)
    bb.Ret(nil)

    buf := new(bytes.Buffer)
    o := opts.GetDefaultOptions()
    o.DebugWriter = buf

    c := testCanonicalizer(cfg, o)
    require.True(t, c.CanonicalizeValueLifetime(d))
    require.Contains(t, buf.String(), "canonicalizing")
    require.Contains(t, buf.String(), "removing")
    require.Contains(t, buf.String(), "live-within")
}
