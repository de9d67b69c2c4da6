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

package translation

import (
	"fmt"

	"github.com/Kmotiko/gofc/ofprotocol/ofp13"
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedField is the kind of errors raised for match fields,
	// actions or instructions the negotiated version does not know.
	ErrUnsupportedField = errors.New("unsupported field")
	// ErrMalformedMessage is the kind of errors raised for messages with
	// missing or inconsistent content.
	ErrMalformedMessage = errors.New("malformed message")
)

// Error is a translation failure together with the OpenFlow error type and
// code the switch answers with.
type Error struct {
	Kind error
	Type uint16
	Code uint16
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s (type=%d code=%d)", e.Kind, e.Msg, e.Type, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// ErrorMsg builds the error reply of protocol version to the offending
// message. data should hold at least the first 64 bytes of that message.
func (e *Error) ErrorMsg(version uint8, data []byte) *ofp13.OfpErrorMsg {
	if len(data) > 64 {
		data = data[:64]
	}
	return &ofp13.OfpErrorMsg{
		Header: ofp13.OfpHeader{Version: version, Type: ofp13.OFPT_ERROR, Length: 8},
		Type:   e.Type,
		Code:   e.Code,
		Data:   append([]uint8(nil), data...),
	}
}

// AsError returns the *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func unsupported(errType, code uint16, format string, args ...interface{}) error {
	return &Error{Kind: ErrUnsupportedField, Type: errType, Code: code, Msg: fmt.Sprintf(format, args...)}
}

func malformed(errType, code uint16, format string, args ...interface{}) error {
	return &Error{Kind: ErrMalformedMessage, Type: errType, Code: code, Msg: fmt.Sprintf(format, args...)}
}
