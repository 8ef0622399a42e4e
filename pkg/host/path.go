package host

import (
	"bytes"
	"encoding/json"
)

// VirtualPath is a path as the host presents it to plugins (Virtual) together
// with its location on the real filesystem, when known (Real).
//
// On the wire it is either an object {"virtual": ..., "real": ...} or a plain
// string, which is taken as the virtual path with no real counterpart.
type VirtualPath struct {
	Virtual string `json:"virtual"`
	Real    string `json:"real,omitempty"`
}

// RealPath returns the real filesystem path, falling back to the virtual
// path when the host did not resolve one.
func (p VirtualPath) RealPath() string {
	if p.Real != "" {
		return p.Real
	}
	return p.Virtual
}

// IsZero reports whether neither path is set.
func (p VirtualPath) IsZero() bool {
	return p.Virtual == "" && p.Real == ""
}

// UnmarshalJSON accepts both the object and the plain string form.
func (p *VirtualPath) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = VirtualPath{Virtual: s}
		return nil
	}
	type plain VirtualPath
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = VirtualPath(v)
	return nil
}
