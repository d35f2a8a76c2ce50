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
    `github.com/cloudwego/ossa/internal/opts`
)

func testCanonicalizer(cfg *oir.CFG, o opts.Options) *Canonicalizer {
    dom := oir.BuildDominatorTree(cfg)
    acc := oir.BuildAccessBlocks(cfg)
    return NewCanonicalizer(cfg, &dom, acc, o, Callbacks{})
}

func canonicalize(t *testing.T, cfg *oir.CFG, def *oir.Value) *Canonicalizer {
    c := testCanonicalizer(cfg, opts.GetDefaultOptions())
    require.True(t, c.CanonicalizeValueLifetime(def))
    require.NoError(t, oir.Verify(cfg))
    return c
}

// countInsts tallies instruction kinds over the whole function.
func countInsts(cfg *oir.CFG, match func(oir.Inst) bool) int {
    n := 0
    cfg.PostOrder().ForEach(func(bb *oir.BasicBlock) {
        for _, p := range bb.Ins {
            if match(p) {
                n++
            }
        }
    })
    return n
}

func countCopies(cfg *oir.CFG) int {
    return countInsts(cfg, func(p oir.Inst) bool { _, ok := p.(*oir.IrCopy); return ok })
}

func countDestroys(cfg *oir.CFG) int {
    return countInsts(cfg, func(p oir.Inst) bool { _, ok := p.(*oir.IrDestroy); return ok })
}

// S1: a single destroy is already canonical.
func TestCanonicalize_SingleUse(t *testing.T) {
    cfg := oir.CreateCFG("s1")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    bb.Destroy(d)
    bb.Ret(nil)

    before := cfg.String()
    c := canonicalize(t, cfg, d)
    require.Equal(t, before, cfg.String())
    require.Equal(t, Stats{}, c.Stats())
}

// S2: a copy whose consume is the last use folds onto the def, the original
// destroy dies with it.
func TestCanonicalize_RedundantCopy(t *testing.T) {
    cfg := oir.CreateCFG("s2")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    c0 := bb.Copy(d)
    st := bb.Store(c0, "sink")
    bb.Destroy(d)
    bb.Ret(nil)

    c := canonicalize(t, cfg, d)
    require.Equal(t, 0, countCopies(cfg))
    require.Equal(t, 0, countDestroys(cfg))
    require.Equal(t, d, st.V.Value())
    require.Equal(t, 1, c.Stats().CopiesEliminated)
    require.Equal(t, 1, c.Stats().DestroysEliminated)
    require.Equal(t, 0, c.Stats().CopiesGenerated)
}

// S3: of two consecutive consumes, the first receives a fresh copy and the
// second becomes the final lifetime end.
func TestCanonicalize_CopyRequired(t *testing.T) {
    cfg := oir.CreateCFG("s3")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    s1 := bb.Store(d, "first")
    s2 := bb.Store(d, "second")
    bb.Destroy(d)
    bb.Ret(nil)

    c := canonicalize(t, cfg, d)
    require.Equal(t, 1, countCopies(cfg))
    require.Equal(t, 0, countDestroys(cfg))
    require.Equal(t, 1, c.Stats().CopiesGenerated)
    require.Equal(t, 1, c.Stats().DestroysEliminated)

    /* the first store owns a fresh copy placed right before it */
    cp := s1.V.Value().DefiningInst().(*oir.IrCopy)
    require.Equal(t, d, cp.V.Value())
    require.Equal(t, bb.IndexOf(s1) - 1, bb.IndexOf(cp))
    require.Equal(t, d, s2.V.Value())
}

// S4: the destroy moves from the join block onto the edge that leaves the
// live region.
func TestCanonicalize_BranchBoundary(t *testing.T) {
    cfg := oir.CreateCFG("s4")
    b0 := cfg.Root
    b1 := cfg.CreateBlock()
    b2 := cfg.CreateBlock()
    b3 := cfg.CreateBlock()

    d := b0.Call("producer", oir.OwnOwned)
    cv := b0.Call("cond", oir.OwnNone)
    b0.CondBr(cv, b1, b2)
    st := b1.Store(d, "sink")
    b1.Ret(nil)
    b2.Jump(b3)
    b3.Destroy(d)
    b3.Ret(nil)

    c := canonicalize(t, cfg, d)
    require.Equal(t, 1, countDestroys(cfg))
    require.Len(t, b3.Ins, 0)
    require.Len(t, b2.Ins, 1)

    /* the new destroy sits at the entry of bb_2, the consume stays */
    dv := b2.Ins[0].(*oir.IrDestroy)
    require.Equal(t, d, dv.V.Value())
    require.Equal(t, d, st.V.Value())
    require.Equal(t, 1, c.Stats().DestroysGenerated)
    require.Equal(t, 1, c.Stats().DestroysEliminated)
}

// S5: the destroy must stay below the end-access of the scope containing
// the last use; here the original destroy is reused in place.
func TestCanonicalize_AccessScope(t *testing.T) {
    cfg := oir.CreateCFG("s5")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    tok := bb.BeginAccess("A")
    bb.Call("reader", oir.OwnNone, oir.Borrowed(d))
    ea := bb.EndAccess(tok)
    dv := bb.Destroy(d)
    bb.Ret(nil)

    c := canonicalize(t, cfg, d)
    require.Equal(t, Stats{}, c.Stats())
    require.Equal(t, 1, countDestroys(cfg))

    /* still the same destroy, still after the end-access */
    require.Greater(t, bb.IndexOf(dv), bb.IndexOf(ea))
}

// S6: pointer escapes bail out without touching the IR.
func TestCanonicalize_PointerEscapeBail(t *testing.T) {
    cfg := oir.CreateCFG("s6")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    bb.PointerEscape(d)
    bb.Destroy(d)
    bb.Ret(nil)

    before := cfg.String()
    c := testCanonicalizer(cfg, opts.GetDefaultOptions())
    require.False(t, c.CanonicalizeValueLifetime(d))
    require.Equal(t, before, cfg.String())
}

// skips: non-owned and lexical defs are left alone.
func TestCanonicalize_Skips(t *testing.T) {
    cfg := oir.CreateCFG("skips")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    g := bb.Borrow(d)
    bb.EndBorrow(g)
    lx := bb.Call("named", oir.OwnOwned).MarkLexical()
    bb.Destroy(lx)
    bb.Destroy(d)
    bb.Ret(nil)

    c := testCanonicalizer(cfg, opts.GetDefaultOptions())
    require.False(t, c.CanonicalizeValueLifetime(g))
    require.False(t, c.CanonicalizeValueLifetime(lx))
}

// forwarding to an unowned value is as opaque as a pointer escape.
func TestCanonicalize_UnownedForwardBail(t *testing.T) {
    cfg := oir.CreateCFG("unowned")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    bb.UnownedForward(d)
    bb.Destroy(d)
    bb.Ret(nil)

    before := cfg.String()
    c := testCanonicalizer(cfg, opts.GetDefaultOptions())
    require.False(t, c.CanonicalizeValueLifetime(d))
    require.Equal(t, before, cfg.String())
}

// idempotence: canonicalizing twice equals canonicalizing once.
func TestCanonicalize_Idempotent(t *testing.T) {
    cfg := oir.CreateCFG("twice")
    bb := cfg.Root
    d := bb.Call("producer", oir.OwnOwned)
    c0 := bb.Copy(d)
    bb.Store(c0, "sink")
    bb.Destroy(d)
    bb.Ret(nil)

    canonicalize(t, cfg, d)
    once := cfg.String()

    c := canonicalize(t, cfg, d)
    require.Equal(t, once, cfg.String())
    require.Equal(t, Stats{}, c.Stats())
}

// a dead owned phi: its destroy is reused at the top of the block.
func TestCanonicalize_DeadPhi(t *testing.T) {
    cfg := oir.CreateCFG("deadphi")
    b0 := cfg.Root
    b1 := cfg.CreateBlock()
    p := b1.AddParam(oir.OwnOwned)
    dv := b1.Destroy(p)
    b1.Ret(nil)

    d := b0.Call("producer", oir.OwnOwned)
    b0.Jump(b1, d)

    before := cfg.String()
    canonicalize(t, cfg, p)
    require.Equal(t, before, cfg.String())
    require.Equal(t, dv, b1.Ins[0])
}

// a consuming branch is itself the final consume of the def.
func TestCanonicalize_BranchConsume(t *testing.T) {
    cfg := oir.CreateCFG("brconsume")
    b0 := cfg.Root
    b1 := cfg.CreateBlock()
    p := b1.AddParam(oir.OwnOwned)
    b1.Destroy(p)
    b1.Ret(nil)

    d := b0.Call("producer", oir.OwnOwned)
    c0 := b0.Copy(d)
    b0.Destroy(c0)
    b0.Jump(b1, d)

    c := canonicalize(t, cfg, d)
    require.Equal(t, 0, countCopies(cfg))
    require.Equal(t, 1, c.Stats().CopiesEliminated)
    require.Equal(t, 1, c.Stats().DestroysEliminated)
}
