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

package oir

import (
    `testing`

    `github.com/stretchr/testify/require`
)

// a diamond with a tail loop:
//
//     bb_0 -> bb_1, bb_2
//     bb_1 -> bb_3
//     bb_2 -> bb_3
//     bb_3 -> bb_4, bb_3
//
func buildDiamond(t *testing.T) (*CFG, []*BasicBlock) {
    cfg := CreateCFG("diamond")
    b0 := cfg.Root
    b1 := cfg.CreateBlock()
    b2 := cfg.CreateBlock()
    b3 := cfg.CreateBlock()
    b4 := cfg.CreateBlock()

    c0 := b0.Call("cond", OwnNone)
    b0.CondBr(c0, b1, b2)
    b1.Jump(b3)
    b2.Jump(b3)
    c3 := b3.Call("cond", OwnNone)
    b3.CondBr(c3, b4, b3)
    b4.Ret(nil)

    require.NotNil(t, cfg)
    return cfg, []*BasicBlock { b0, b1, b2, b3, b4 }
}

func TestDominator_Diamond(t *testing.T) {
    cfg, bb := buildDiamond(t)
    dt := BuildDominatorTree(cfg)

    require.Equal(t, bb[0], dt.DominatedBy[bb[1].Id])
    require.Equal(t, bb[0], dt.DominatedBy[bb[2].Id])
    require.Equal(t, bb[0], dt.DominatedBy[bb[3].Id])
    require.Equal(t, bb[3], dt.DominatedBy[bb[4].Id])

    require.True(t, dt.Dominates(bb[0], bb[0]))
    require.True(t, dt.ProperlyDominates(bb[0], bb[4]))
    require.True(t, dt.ProperlyDominates(bb[3], bb[4]))
    require.False(t, dt.ProperlyDominates(bb[1], bb[3]))
    require.False(t, dt.ProperlyDominates(bb[0], bb[0]))
}

func TestDominator_PostOrder(t *testing.T) {
    cfg, bb := buildDiamond(t)

    /* the entry comes last in post-order, first in reverse post-order */
    post := make([]*BasicBlock, 0, 5)
    cfg.PostOrder().ForEach(func(p *BasicBlock) {
        post = append(post, p)
    })
    require.Len(t, post, 5)
    require.Equal(t, bb[0], post[4])

    rpo := cfg.PostOrder().Reversed()
    require.Len(t, rpo, 5)
    require.Equal(t, bb[0], rpo[0])
}

func TestDominator_Rebuild(t *testing.T) {
    cfg, bb := buildDiamond(t)
    cfg.Rebuild()

    require.ElementsMatch(t, []*BasicBlock { bb[0] }, bb[1].Pred)
    require.ElementsMatch(t, []*BasicBlock { bb[1], bb[2], bb[3] }, bb[3].Pred)
    require.ElementsMatch(t, []*BasicBlock { bb[3] }, bb[4].Pred)
}
