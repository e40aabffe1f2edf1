/*
 * Copyright The OpenTelemetry Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package werror

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way the concatenate/encode/batch
// pipeline reports failures: no library-specific type names, just the
// taxonomy a caller needs to decide whether to retry, nack, or treat as
// a startup-fatal configuration problem.
type Kind int

const (
	// TypeMismatch: a column's type doesn't match the expected type at
	// index- or encode/decode-time.
	TypeMismatch Kind = iota
	// DictionaryValueTypeMismatch: the same column was seen with
	// differing dictionary value types across batches.
	DictionaryValueTypeMismatch
	// UnsupportedDictionaryKeyType: a dictionary's key is neither u8 nor
	// u16.
	UnsupportedDictionaryKeyType
	// ColumnNotFound: a required column is absent.
	ColumnNotFound
	// InvalidDataTypeForStruct: a struct is nested beyond depth 1.
	InvalidDataTypeForStruct
	// Batching: a downstream columnar kernel failed (schema merge,
	// coalescer, take, sort).
	Batching
	// Format: a byte-level encoding is unknown or unrepresentable.
	Format
	// ValidationFailure: a configuration or query-time predicate
	// failed.
	ValidationFailure
	// Internal: an invariant breach; always fatal to the current flush.
	Internal
)

func (k Kind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case DictionaryValueTypeMismatch:
		return "DictionaryValueTypeMismatch"
	case UnsupportedDictionaryKeyType:
		return "UnsupportedDictionaryKeyType"
	case ColumnNotFound:
		return "ColumnNotFound"
	case InvalidDataTypeForStruct:
		return "InvalidDataTypeForStruct"
	case Batching:
		return "Batching"
	case Format:
		return "Format"
	case ValidationFailure:
		return "ValidationFailure"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// KindError is a werror.Wrapper-compatible error carrying a Kind. The
// New* constructors below build one and Wrap it, attaching
// file/line/function.
type KindError struct {
	kind    Kind
	message string
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

// Is supports errors.Is(err, werror.ErrTypeMismatch) by comparing kinds
// via a zero-message sentinel of the same kind.
func (e *KindError) Is(target error) bool {
	var other *KindError
	if errors.As(target, &other) {
		return e.kind == other.kind
	}
	return false
}

// KindOf unwraps err looking for a *KindError and returns its Kind.
func KindOf(err error) (Kind, bool) {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.kind, true
	}
	return 0, false
}

// Sentinel values for use with errors.Is, one per Kind. A wrapped
// KindError compares equal (via KindError.Is) to the sentinel of the
// same kind regardless of message.
var (
	ErrTypeMismatch                 = &KindError{kind: TypeMismatch}
	ErrDictionaryValueTypeMismatch  = &KindError{kind: DictionaryValueTypeMismatch}
	ErrUnsupportedDictionaryKeyType = &KindError{kind: UnsupportedDictionaryKeyType}
	ErrColumnNotFound               = &KindError{kind: ColumnNotFound}
	ErrInvalidDataTypeForStruct     = &KindError{kind: InvalidDataTypeForStruct}
	ErrBatching                     = &KindError{kind: Batching}
	ErrFormat                       = &KindError{kind: Format}
	ErrValidationFailure            = &KindError{kind: ValidationFailure}
	ErrInternal                     = &KindError{kind: Internal}
)

func newKind(kind Kind, format string, args ...interface{}) error {
	return Wrap(&KindError{kind: kind, message: fmt.Sprintf(format, args...)})
}

// NewTypeMismatch reports that column got a type that doesn't match
// want.
func NewTypeMismatch(column string, want, got fmt.Stringer) error {
	return newKind(TypeMismatch, "column %q: want %s, got %s", column, want, got)
}

// NewDictionaryValueTypeMismatch reports that column's dictionary value
// type differs across batches.
func NewDictionaryValueTypeMismatch(column string, first, second fmt.Stringer) error {
	return newKind(DictionaryValueTypeMismatch, "column %q: dictionary value type %s then %s", column, first, second)
}

// NewUnsupportedDictionaryKeyType reports a dictionary key width that is
// neither u8 nor u16.
func NewUnsupportedDictionaryKeyType(column string, keyType fmt.Stringer) error {
	return newKind(UnsupportedDictionaryKeyType, "column %q: unsupported dictionary key type %s", column, keyType)
}

// NewColumnNotFound reports a required column absent from a batch.
func NewColumnNotFound(column string) error {
	return newKind(ColumnNotFound, "column %q not found", column)
}

// NewInvalidDataTypeForStruct reports struct nesting beyond depth 1.
func NewInvalidDataTypeForStruct(column string) error {
	return newKind(InvalidDataTypeForStruct, "column %q: nested structs are not supported beyond depth 1", column)
}

// NewBatching wraps a downstream columnar kernel failure.
func NewBatching(err error) error {
	return newKind(Batching, "%v", err)
}

// NewFormat reports an unknown or unrepresentable byte-level encoding.
func NewFormat(format string) error {
	return newKind(Format, "%s", format)
}

// NewValidationFailure reports a configuration or predicate failure.
func NewValidationFailure(format string, args ...interface{}) error {
	return newKind(ValidationFailure, format, args...)
}

// NewInternal reports an invariant breach, always fatal to the current
// flush.
func NewInternal(format string, args ...interface{}) error {
	return newKind(Internal, format, args...)
}
