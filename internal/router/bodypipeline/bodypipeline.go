// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bodypipeline reads and, where requested, decompresses an HTTP
// request body under a hard byte ceiling, rejecting bodies (compressed or
// not) that would exceed it rather than buffering them in full first.
package bodypipeline

import (
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"

	"coreingest/internal/ingesterr"
)

// ContentEncoding is the accepted set of request Content-Encoding values.
type ContentEncoding int

const (
	Identity ContentEncoding = iota
	Gzip
)

// ParseContentEncoding maps a Content-Encoding header value to a
// ContentEncoding. Empty is Identity; anything other than "gzip" is
// rejected.
func ParseContentEncoding(header string) (ContentEncoding, error) {
	switch header {
	case "":
		return Identity, nil
	case "gzip":
		return Gzip, nil
	default:
		return 0, ingesterr.New(ingesterr.KindInvalidContentEncoding, "unsupported Content-Encoding: "+header)
	}
}

// Read drains r under encoding, returning at most maxBytes of decoded body.
// A read of more than maxBytes (post-decompression, if gzip) is rejected as
// RequestSizeExceeded, including the gzip-bomb case where the compressed
// body is small but its decompressed content is not. Under Identity,
// transport errors surface as ClientHangup. Under Gzip, every read failure,
// a malformed stream or a transport error alike, surfaces as InvalidGzip.
func Read(r io.Reader, encoding ContentEncoding, maxBytes int64) ([]byte, error) {
	src := r
	if encoding == Gzip {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, ingesterr.Wrap(ingesterr.KindInvalidGzip, err, "invalid gzip stream")
		}
		defer gz.Close()
		src = gz
	}

	limited := io.LimitReader(src, maxBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		if encoding == Gzip {
			return nil, ingesterr.Wrap(ingesterr.KindInvalidGzip, err, "invalid gzip stream")
		}
		return nil, ingesterr.Wrap(ingesterr.KindClientHangup, err, "reading request body")
	}
	if int64(len(body)) > maxBytes {
		return nil, ingesterr.New(ingesterr.KindRequestSizeExceeded, "request body exceeds configured limit")
	}
	return body, nil
}

// DecodeUTF8 validates body is well-formed UTF-8 and returns it as a string.
func DecodeUTF8(body []byte) (string, error) {
	if !utf8.Valid(body) {
		return "", ingesterr.New(ingesterr.KindNonUtf8Body, "request body is not valid UTF-8")
	}
	return string(body), nil
}
