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
    `fmt`
    `os`
    `path/filepath`
    `strings`

    `github.com/ajstarks/svgo`
)

const (
    _RowH  = 24
    _CharW = 9
)

var _LivenessFill = map[_BlockLiveness]string {
    _Dead       : "fill:#ececec",
    _LiveWithin : "fill:#ffe9a8",
    _LiveOut    : "fill:#cdeac0",
}

// drawLiveness renders one row per block, tinted by its liveness state,
// with interesting users marked. Debugging aid only.
func (self *Canonicalizer) drawLiveness() {
    fn := filepath.Join(self.opts.DebugSVGDir, fmt.Sprintf("%s_v%d.svg", self.cfg.Name, self.def.Id()))
    fp, err := os.OpenFile(fn, os.O_RDWR | os.O_CREATE | os.O_TRUNC, 0644)
    if err != nil {
        panic(err)
    }
    defer fp.Close()

    /* measure the text extent */
    maxw := 0
    rows := 0
    bbs := self.cfg.PostOrder().Reversed()
    for _, bb := range bbs {
        for _, s := range strings.Split(bb.String(), "\n") {
            if rows++; len(s) > maxw {
                maxw = len(s)
            }
        }
    }

    p := svg.New(fp)
    p.Start(maxw * _CharW + 220, rows * _RowH + 80)

    /* one tinted band per block, one text row per instruction */
    y := 40
    for _, bb := range bbs {
        lines := strings.Split(bb.String(), "\n")
        bl := self.liveness.blockLiveness(bb)
        p.Rect(10, y - 16, maxw * _CharW + 20, len(lines) * _RowH, _LivenessFill[bl])
        p.Text(maxw * _CharW + 40, y, bl.String(), "fill:gray;font-size:14px;font-family:monospace")
        for i, s := range lines {
            mark := "  "
            if i > 0 && i - 1 < len(bb.Ins) && self.liveness.interestingUser(bb.Ins[i - 1]) != _NonUser {
                mark = "* "
            }
            p.Text(16, y + i * _RowH, mark + s, "fill:black;font-size:14px;font-family:monospace")
        }
        y += len(lines) * _RowH + _RowH
    }
    p.End()
}
