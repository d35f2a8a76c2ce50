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

// the default pipeline splits the critical edge, then moves the destroy
// onto the fresh edge block and folds the copy away.
func TestCopyPropagation_Pipeline(t *testing.T) {
    cfg := oir.CreateCFG("pipeline")
    b0 := cfg.Root
    b1 := cfg.CreateBlock()
    b3 := cfg.CreateBlock()

    d := b0.Call("producer", oir.OwnOwned)
    cv := b0.Call("cond", oir.OwnNone)
    b0.CondBr(cv, b1, b3)
    c0 := b1.Copy(d)
    st := b1.Store(c0, "sink")
    b1.Jump(b3)
    b3.Destroy(d)
    b3.Ret(nil)

    ExecutePasses(cfg)
    require.NoError(t, oir.Verify(cfg))

    /* the copy folded onto the def, the join destroy went away */
    require.Equal(t, 0, countCopies(cfg))
    require.Equal(t, 1, countDestroys(cfg))
    require.Equal(t, d, st.V.Value())
    require.Len(t, b3.Ins, 0)

    /* the destroy lives on the split bb_0 -> bb_3 edge */
    mid := b0.Term.(*oir.IrCondBr).Else
    require.NotEqual(t, b3, mid)
    dv := mid.Ins[0].(*oir.IrDestroy)
    require.Equal(t, d, dv.V.Value())
}

// every owned def in the function is canonicalized, including the ones only
// reachable through copies.
func TestCopyPropagation_AllDefs(t *testing.T) {
    cfg := oir.CreateCFG("alldefs")
    bb := cfg.Root
    d1 := bb.Call("producer", oir.OwnOwned)
    c1 := bb.Copy(d1)
    bb.Store(c1, "first")
    bb.Destroy(d1)
    d2 := bb.Call("producer", oir.OwnOwned)
    c2 := bb.Copy(d2)
    bb.Store(c2, "second")
    bb.Destroy(d2)
    bb.Ret(nil)

    CopyPropagation{}.Apply(cfg)
    require.NoError(t, oir.Verify(cfg))
    require.Equal(t, 0, countCopies(cfg))
    require.Equal(t, 0, countDestroys(cfg))
}
