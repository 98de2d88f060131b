package binderr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType defines the category of the error.
type ErrorType string

const (
	TypeUnsupportedDeclaration ErrorType = "UnsupportedDeclarationForm"
	TypeIncompatibleMerge      ErrorType = "IncompatibleMerge"
	TypeCyclicReference        ErrorType = "CyclicReference"
	TypeMissingNestedType      ErrorType = "MissingNestedType"
	TypeNotAnObjectType        ErrorType = "NotAnObjectType"
	TypeMissingModuleScope     ErrorType = "MissingModuleScope"
	TypeUnresolvedName         ErrorType = "UnresolvedName"
	TypeDuplicateEntry         ErrorType = "DuplicateEntry"
	TypeLoad                   ErrorType = "LoadError"
)

// BindError is the interface for all errors raised while building an environment.
type BindError interface {
	error
	Type() ErrorType
}

// BaseError provides common fields for bind errors.
type BaseError struct {
	Msg     string
	ErrType ErrorType
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

func (e *BaseError) Type() ErrorType {
	return e.ErrType
}

// DeclarationError is raised by the binder for declaration forms it does not model.
type DeclarationError struct {
	BaseError
	Kind string // declaration or member kind as reported by the parser
	Path string // qualified path of the enclosing container
}

func (e *DeclarationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", e.ErrType, e.Path, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

// MergeError is raised when two fragments of one qualified name cannot be combined.
type MergeError struct {
	BaseError
	Name string
}

// CycleError is raised when resolution re-enters a reference that is still being resolved.
type CycleError struct {
	BaseError
	Cycle []string // references forming the cycle, first and last are the same
}

func (e *CycleError) Error() string {
	if len(e.Cycle) > 1 {
		return fmt.Sprintf("[%s] %s (%s)", e.ErrType, e.Msg, strings.Join(e.Cycle, " -> "))
	}
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

// LookupError covers failed scope and member lookups.
type LookupError struct {
	BaseError
	Name   string // the name that was looked up
	Target string // the qualified name of the object searched, if any
}

// LoadError is raised when a declaration document cannot be read or decoded.
type LoadError struct {
	BaseError
	FilePath string
	Line     int
}

func (e *LoadError) Error() string {
	if e.FilePath != "" {
		if e.Line > 0 {
			return fmt.Sprintf("[%s] %s:%d %s", e.ErrType, e.FilePath, e.Line, e.Msg)
		}
		return fmt.Sprintf("[%s] %s: %s", e.ErrType, e.FilePath, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

// MultiError collects multiple errors.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

func (m *MultiError) Type() ErrorType {
	if len(m.Errors) > 0 {
		if be, ok := m.Errors[0].(BindError); ok {
			return be.Type()
		}
	}
	return "MultiError"
}

func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Is reports whether err, or any error it wraps, is a BindError of the given type.
func Is(err error, t ErrorType) bool {
	var be BindError
	if !errors.As(err, &be) {
		return false
	}
	if be.Type() == t {
		return true
	}
	if m, ok := be.(*MultiError); ok {
		for _, e := range m.Errors {
			if Is(e, t) {
				return true
			}
		}
	}
	return false
}

// NewUnsupportedDeclaration creates an error for a declaration form the binder does not model.
func NewUnsupportedDeclaration(path, kind, msg string) *DeclarationError {
	return &DeclarationError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeUnsupportedDeclaration,
		},
		Kind: kind,
		Path: path,
	}
}

// NewIncompatibleMerge creates a MergeError for the given qualified name.
func NewIncompatibleMerge(name string) *MergeError {
	return &MergeError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("incompatible types for `%s`", name),
			ErrType: TypeIncompatibleMerge,
		},
		Name: name,
	}
}

// NewCyclicReference creates a CycleError naming the reference that was re-entered.
func NewCyclicReference(name string, cycle []string) *CycleError {
	return &CycleError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("cyclic reference to `%s`", name),
			ErrType: TypeCyclicReference,
		},
		Cycle: cycle,
	}
}

// NewMissingNestedType creates a LookupError for a nested type absent from target.
func NewMissingNestedType(target, name string) *LookupError {
	return &LookupError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("`%s` has no nested type `%s`", target, name),
			ErrType: TypeMissingNestedType,
		},
		Name:   name,
		Target: target,
	}
}

// NewNotAnObjectType creates a LookupError for a member lookup on a non-object value.
func NewNotAnObjectType(target, name string) *LookupError {
	return &LookupError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("cannot look up `%s` on `%s`: not an object type", name, target),
			ErrType: TypeNotAnObjectType,
		},
		Name:   name,
		Target: target,
	}
}

// NewMissingModuleScope creates a LookupError for a module scope with no environment entry.
func NewMissingModuleScope(qname string) *LookupError {
	return &LookupError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("module scope `%s` has no environment entry", qname),
			ErrType: TypeMissingModuleScope,
		},
		Target: qname,
	}
}

// NewUnresolvedName creates a LookupError for a name no scope defines.
func NewUnresolvedName(name string) *LookupError {
	return &LookupError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("cannot find name `%s`", name),
			ErrType: TypeUnresolvedName,
		},
		Name: name,
	}
}

// NewDuplicateEntry creates a MergeError for a qualified name registered twice.
func NewDuplicateEntry(name string) *MergeError {
	return &MergeError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("`%s` is already registered in the environment", name),
			ErrType: TypeDuplicateEntry,
		},
		Name: name,
	}
}

// NewLoadError creates a LoadError for a source document.
func NewLoadError(filePath string, line int, msg string) *LoadError {
	return &LoadError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeLoad,
		},
		FilePath: filePath,
		Line:     line,
	}
}
