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

// Package ingesterr is the single typed-error taxonomy for the write router
// and the DML handler boundary. Router and DML error kinds share one Kind
// enum and one HTTP status mapping so the HTTP layer never has to know
// about DML internals beyond errors.As-ing out an *Error.
package ingesterr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind enumerates every distinguishable failure this service reports,
// spanning both the router's own error kinds and the DML handler's.
type Kind int

const (
	KindUnknown Kind = iota

	// Router kinds.
	KindNoHandler
	KindInvalidOrgBucketNotSpecified
	KindInvalidOrgBucketDecodeFail
	KindInvalidOrgBucketMappingFail
	KindNonUtf8Body
	KindNonUtf8ContentHeader
	KindInvalidContentEncoding
	KindClientHangup
	KindRequestSizeExceeded
	KindInvalidGzip
	KindParseLineProtocol
	KindParseDelete
	KindParseHttpDelete
	KindRequestLimit

	// DML kinds. The router reports these with their own Kind and status;
	// there is no separate wrapping kind for DML errors.
	KindDatabaseNotFound
	KindSchemaNamespaceLookup
	KindSchemaServiceLimit
	KindSchemaConflict
	KindSchemaUnexpectedCatalog
	KindInternal
	KindWriteBuffer
	KindNamespaceCreation
	KindPartitionBatchWrite
)

func (k Kind) String() string {
	switch k {
	case KindNoHandler:
		return "NoHandler"
	case KindInvalidOrgBucketNotSpecified:
		return "InvalidOrgBucket.NotSpecified"
	case KindInvalidOrgBucketDecodeFail:
		return "InvalidOrgBucket.DecodeFail"
	case KindInvalidOrgBucketMappingFail:
		return "InvalidOrgBucket.MappingFail"
	case KindNonUtf8Body:
		return "NonUtf8Body"
	case KindNonUtf8ContentHeader:
		return "NonUtf8ContentHeader"
	case KindInvalidContentEncoding:
		return "InvalidContentEncoding"
	case KindClientHangup:
		return "ClientHangup"
	case KindRequestSizeExceeded:
		return "RequestSizeExceeded"
	case KindInvalidGzip:
		return "InvalidGzip"
	case KindParseLineProtocol:
		return "ParseLineProtocol"
	case KindParseDelete:
		return "ParseDelete"
	case KindParseHttpDelete:
		return "ParseHttpDelete"
	case KindRequestLimit:
		return "RequestLimit"
	case KindDatabaseNotFound:
		return "DatabaseNotFound"
	case KindSchemaNamespaceLookup:
		return "Schema.NamespaceLookup"
	case KindSchemaServiceLimit:
		return "Schema.ServiceLimit"
	case KindSchemaConflict:
		return "Schema.Conflict"
	case KindSchemaUnexpectedCatalog:
		return "Schema.UnexpectedCatalog"
	case KindInternal:
		return "Internal"
	case KindWriteBuffer:
		return "WriteBuffer"
	case KindNamespaceCreation:
		return "NamespaceCreation"
	case KindPartitionBatchWrite:
		return "Partition.BatchWrite"
	default:
		return "Unknown"
	}
}

// HTTPStatus maps a Kind to the status code the write router must return.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNoHandler:
		return http.StatusNotFound
	case KindDatabaseNotFound:
		return http.StatusNotFound
	case KindInvalidOrgBucketNotSpecified, KindInvalidOrgBucketDecodeFail, KindInvalidOrgBucketMappingFail,
		KindNonUtf8Body, KindNonUtf8ContentHeader, KindInvalidGzip, KindParseLineProtocol,
		KindParseDelete, KindParseHttpDelete, KindSchemaConflict:
		return http.StatusBadRequest
	case KindInvalidContentEncoding:
		return http.StatusUnsupportedMediaType
	case KindRequestSizeExceeded:
		return http.StatusRequestEntityTooLarge
	case KindRequestLimit:
		return http.StatusServiceUnavailable
	case KindClientHangup:
		// The client is gone; status is academic, but pick a stable value.
		return 499
	case KindSchemaNamespaceLookup, KindSchemaServiceLimit, KindSchemaUnexpectedCatalog,
		KindInternal, KindWriteBuffer, KindNamespaceCreation, KindPartitionBatchWrite:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Error is the one error type the router and DML handler return. It carries
// a Kind, an optional wrapped cause, and a human-readable message.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		if e.Msg != "" {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
		}
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an *Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an *Error carrying cause as its Unwrap target.
func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// KindOf recovers the Kind from err, walking the Unwrap chain. Returns
// KindInternal if err is not (or does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatusOf is a convenience wrapper combining KindOf and Kind.HTTPStatus.
func HTTPStatusOf(err error) int {
	return KindOf(err).HTTPStatus()
}
