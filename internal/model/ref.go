package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/existflow/chantier/internal/logger"
)

// RefKind tells which representation a ProjectRef holds.
type RefKind int

const (
	RefNone RefKind = iota
	RefID
	RefEmbedded
)

// EmbeddedProject is a project populated inside a child record. The backend
// may carry the identifier under "id" or under "_id".
//
// Project is filled on a best-effort basis. When the object does not decode
// as a project, Incomplete is set and only the identifiers are reliable.
type EmbeddedProject struct {
	PrimaryID  string
	AltID      string
	Project    Project
	Incomplete bool
}

// ProjectRef is the project foreign key of quotes, payments and expenses:
// either a bare identifier or an embedded project object.
type ProjectRef struct {
	kind     RefKind
	id       string
	embedded *EmbeddedProject
}

// RefTo references a project by identifier.
func RefTo(id string) ProjectRef {
	return ProjectRef{kind: RefID, id: id}
}

// RefEmbed references a project by embedding it.
func RefEmbed(e EmbeddedProject) ProjectRef {
	return ProjectRef{kind: RefEmbedded, embedded: &e}
}

// Kind returns the stored representation.
func (r ProjectRef) Kind() RefKind {
	return r.kind
}

// Embedded returns the embedded project, if any.
func (r ProjectRef) Embedded() (EmbeddedProject, bool) {
	if r.kind != RefEmbedded || r.embedded == nil {
		return EmbeddedProject{}, false
	}
	return *r.embedded, true
}

// ResolveRef returns the canonical project identifier of ref. A bare
// identifier is returned unchanged; an embedded object yields its "id" value,
// else its "_id" value. ok is false when no identifier can be found.
func ResolveRef(ref ProjectRef) (id string, ok bool) {
	switch ref.kind {
	case RefID:
		return ref.id, ref.id != ""
	case RefEmbedded:
		if ref.embedded == nil {
			return "", false
		}
		if ref.embedded.PrimaryID != "" {
			return ref.embedded.PrimaryID, true
		}
		if ref.embedded.AltID != "" {
			return ref.embedded.AltID, true
		}
	}
	return "", false
}

// ID is ResolveRef without the ok flag.
func (r ProjectRef) ID() string {
	id, _ := ResolveRef(r)
	return id
}

// Matches reports whether r resolves to projectID. An unresolved reference
// matches nothing.
func (r ProjectRef) Matches(projectID string) bool {
	id, ok := ResolveRef(r)
	return ok && projectID != "" && id == projectID
}

func (r ProjectRef) MarshalJSON() ([]byte, error) {
	id, ok := ResolveRef(r)
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(id)
}

func (r *ProjectRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*r = ProjectRef{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RefTo(s)
		return nil
	case data[0] == '{':
		var keys struct {
			ID    json.RawMessage `json:"id"`
			AltID json.RawMessage `json:"_id"`
		}
		if err := json.Unmarshal(data, &keys); err != nil {
			return err
		}
		e := EmbeddedProject{
			PrimaryID: rawID(keys.ID),
			AltID:     rawID(keys.AltID),
		}
		// A partially populated object still resolves through its keys.
		if err := json.Unmarshal(data, &e.Project); err != nil {
			e.Incomplete = true
			logger.Warn("embedded project decoded partially",
				logger.F("id", e.PrimaryID),
				logger.F("_id", e.AltID),
				logger.F("error", err.Error()))
		}
		*r = RefEmbed(e)
		return nil
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err == nil {
			*r = RefTo(string(data))
			return nil
		}
		return fmt.Errorf("invalid project reference %s", data)
	}
}

// rawID reads an identifier that may be a JSON string or number.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
