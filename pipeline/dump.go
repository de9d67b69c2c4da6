/*
Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements.  See the NOTICE file
distributed with this work for additional information
regarding copyright ownership.  The ASF licenses this file
to you under the Apache License, Version 2.0 (the
"License"); you may not use this file except in compliance
with the License.  You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied.  See the License for the
specific language governing permissions and limitations
under the License.
*/

package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"k8s.io/klog"
)

// EntriesBuffer collects the text form of flow entries and groups, one per
// line, in the order they were added.
type EntriesBuffer struct {
	buffer *bytes.Buffer
}

func NewEntriesBuffer() *EntriesBuffer {
	return &EntriesBuffer{
		buffer: bytes.NewBuffer(nil),
	}
}

func (e *EntriesBuffer) AddEntry(entry *FlowEntry) {
	e.buffer.WriteString(entry.String())
	e.buffer.WriteByte('\n')
}

func (e *EntriesBuffer) AddGroup(group *GroupEntry) {
	e.buffer.WriteString(group.String())
	e.buffer.WriteByte('\n')
}

func (e *EntriesBuffer) String() string {
	return e.buffer.String()
}

func (e *EntriesBuffer) Reset() {
	e.buffer.Reset()
}

// WriteTo writes the buffered entries to w. The buffer is left intact.
func (e *EntriesBuffer) WriteTo(w io.Writer) (int64, error) {
	startTime := time.Now()

	n, err := w.Write(e.buffer.Bytes())
	if err != nil {
		return int64(n), fmt.Errorf("error writing entries: %v", err)
	}

	klog.V(5).Infof("dumping entries took %s", time.Since(startTime).String())
	return int64(n), nil
}
