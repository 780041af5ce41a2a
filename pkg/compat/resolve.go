package compat

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SupportStatement declares support for one platform.
type SupportStatement struct {
	VersionAdded VersionValue `json:"version_added" yaml:"version_added"`
}

// SupportDeclaration is either a single statement or an ordered list of
// statements (historical re-additions).
type SupportDeclaration struct {
	Statements []SupportStatement
	List       bool
}

// Single wraps one statement.
func Single(v VersionValue) *SupportDeclaration {
	return &SupportDeclaration{Statements: []SupportStatement{{VersionAdded: v}}}
}

// List wraps an ordered list of statements.
func List(values ...VersionValue) *SupportDeclaration {
	stmts := make([]SupportStatement, len(values))
	for i, v := range values {
		stmts[i] = SupportStatement{VersionAdded: v}
	}

	return &SupportDeclaration{Statements: stmts, List: true}
}

// UnmarshalJSON accepts a statement object or an array of them.
func (d *SupportDeclaration) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var stmts []SupportStatement

		err := json.Unmarshal(trimmed, &stmts)
		if err != nil {
			return fmt.Errorf("decode support list: %w", err)
		}

		*d = SupportDeclaration{Statements: stmts, List: true}

		return nil
	}

	var stmt SupportStatement

	err := json.Unmarshal(trimmed, &stmt)
	if err != nil {
		return fmt.Errorf("decode support statement: %w", err)
	}

	*d = SupportDeclaration{Statements: []SupportStatement{stmt}}

	return nil
}

// MarshalJSON writes the declaration back in its original shape.
func (d SupportDeclaration) MarshalJSON() ([]byte, error) {
	if d.List {
		return json.Marshal(d.Statements)
	}

	if len(d.Statements) == 0 {
		return []byte("null"), nil
	}

	return json.Marshal(d.Statements[0])
}

// Resolve returns the effective version_added of a declaration. A list
// yields its first supporting entry or false; a single statement yields its
// value unchanged; an absent declaration yields false.
func Resolve(decl *SupportDeclaration) VersionValue {
	if decl == nil || len(decl.Statements) == 0 {
		return Unsupported()
	}

	if !decl.List {
		return decl.Statements[0].VersionAdded
	}

	for _, stmt := range decl.Statements {
		if stmt.VersionAdded.IsSupported() {
			return stmt.VersionAdded
		}
	}

	return Unsupported()
}

// ResolvePlatform resolves one platform of a statement. A nil statement or
// a missing support map resolves to false.
func ResolvePlatform(stmt *CompatStatement, platform string) VersionValue {
	if stmt == nil || stmt.Support == nil {
		return Unsupported()
	}

	return Resolve(stmt.Support[platform])
}
