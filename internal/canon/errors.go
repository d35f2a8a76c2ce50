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
)

// InvariantError is the panic value raised on precondition violations. The
// canonicalizer never recovers from these: they cannot occur on well-formed
// input.
type InvariantError struct {
    Phase string
    Note  string
}

func (self InvariantError) Error() string {
    return fmt.Sprintf("canon: %s: %s", self.Phase, self.Note)
}

func invariant(phase string, format string, args ...interface{}) {
    panic(InvariantError {
        Phase: phase,
        Note : fmt.Sprintf(format, args...),
    })
}
