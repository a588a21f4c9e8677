package models

import (
	"sort"
	"time"
)

// Occurrence is one sighting of a secret in delivered content
type Occurrence struct {
	ID            string        `json:"id"`
	SecretType    string        `json:"secret_type"`
	Fingerprint   string        `json:"fingerprint"`
	SecretValue   TaggedPayload `json:"secret_value"`
	FilePath      string        `json:"file_path"`
	URL           string        `json:"url"`
	SourceContent SourceContent `json:"source_content"`
	Type          string        `json:"type,omitempty"`
	Validity      Validity      `json:"validity,omitempty"`
	DiscoveredAt  time.Time     `json:"discovered_at"`
}

// SameLocation reports whether two occurrences were seen at the same page and file
func (o Occurrence) SameLocation(other Occurrence) bool {
	return o.URL == other.URL && o.FilePath == other.FilePath
}

// Finding is the deduplicated record of a secret, keyed by fingerprint
type Finding struct {
	Fingerprint    string                   `json:"fingerprint"`
	SecretType     string                   `json:"secret_type"`
	SecretValue    map[string]TaggedPayload `json:"secret_value"`
	Validity       Validity                 `json:"validity"`
	Error          string                   `json:"error,omitempty"`
	Metadata       map[string]string        `json:"metadata,omitempty"`
	DiscoveredAt   time.Time                `json:"discovered_at"`
	ValidatedAt    time.Time                `json:"validated_at"`
	NumOccurrences int                      `json:"num_occurrences"`
	Occurrences    []Occurrence             `json:"occurrences"`
}

// Payload returns the payload of the first recorded occurrence. All stored
// payloads of a finding share its fingerprint, so any of them would do.
func (f *Finding) Payload() Payload {
	for _, occ := range f.Occurrences {
		if tp, ok := f.SecretValue[occ.ID]; ok && tp.Payload != nil {
			return tp.Payload
		}
	}
	keys := make([]string, 0, len(f.SecretValue))
	for k := range f.SecretValue {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if p := f.SecretValue[k].Payload; p != nil {
			return p
		}
	}
	return nil
}

// HasLocation reports whether an occurrence at the same page and file exists
func (f *Finding) HasLocation(occ Occurrence) bool {
	for _, existing := range f.Occurrences {
		if existing.SameLocation(occ) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Payload values are immutable and shared.
func (f Finding) Clone() Finding {
	out := f
	if f.SecretValue != nil {
		out.SecretValue = make(map[string]TaggedPayload, len(f.SecretValue))
		for k, v := range f.SecretValue {
			out.SecretValue[k] = v
		}
	}
	if f.Metadata != nil {
		out.Metadata = make(map[string]string, len(f.Metadata))
		for k, v := range f.Metadata {
			out.Metadata[k] = v
		}
	}
	if f.Occurrences != nil {
		out.Occurrences = make([]Occurrence, len(f.Occurrences))
		for i, occ := range f.Occurrences {
			occ.SourceContent = occ.SourceContent.clone()
			out.Occurrences[i] = occ
		}
	}
	return out
}

// CloneFindings deep-copies a findings slice
func CloneFindings(findings []Finding) []Finding {
	if findings == nil {
		return nil
	}
	out := make([]Finding, len(findings))
	for i, f := range findings {
		out[i] = f.Clone()
	}
	return out
}
