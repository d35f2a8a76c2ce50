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

    `github.com/davecgh/go-spew/spew`
)

type _LivenessDump struct {
    Def    string
    Blocks map[string]string
    Users  map[string]string
}

// dumpLiveness renders the computed liveness for debugging, either as a
// textual dump on the debug writer or as an SVG file, or both.
func (self *Canonicalizer) dumpLiveness() {
    if self.opts.Tracing() {
        dump := _LivenessDump {
            Def   : self.def.String(),
            Blocks: make(map[string]string, len(self.liveness.blocks)),
            Users : make(map[string]string, len(self.liveness.users)),
        }
        for id, bl := range self.liveness.blocks {
            dump.Blocks[fmt.Sprintf("bb_%d", id)] = bl.String()
        }
        for p, ending := range self.liveness.users {
            if ending {
                dump.Users[p.String()] = "lifetime-ending"
            } else {
                dump.Users[p.String()] = "non-lifetime-ending"
            }
        }
        spew.Fdump(self.opts.DebugWriter, dump)
    }
    if self.opts.DebugSVGDir != "" {
        self.drawLiveness()
    }
}
