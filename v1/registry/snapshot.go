package registry

import (
	"maps"
	"slices"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

// Snapshot is an immutable name to descriptor index built from one
// descriptor set.
type Snapshot struct {
	byName    map[string]protoreflect.MessageDescriptor
	byPath    map[string]protoreflect.MessageDescriptor
	typeNames map[string]string
	types     *protoregistry.Types
}

// TypeResolver finds message and extension types by name or number. It is
// accepted by proto.UnmarshalOptions and protojson.UnmarshalOptions.
type TypeResolver interface {
	protoregistry.ExtensionTypeResolver
	protoregistry.MessageTypeResolver
}

// Get looks name up by exact key, then with a leading "." removed, then by
// package-less nested path.
func (s *Snapshot) Get(name string) (protoreflect.MessageDescriptor, bool) {
	if s == nil {
		return nil, false
	}
	if md, ok := s.byName[name]; ok {
		return md, true
	}
	trimmed := strings.TrimPrefix(name, ".")
	if trimmed != name {
		if md, ok := s.byName[trimmed]; ok {
			return md, true
		}
	}
	md, ok := s.byPath[trimmed]
	return md, ok
}

// All returns a copy of the key to descriptor index (canonical names and aliases).
func (s *Snapshot) All() map[string]protoreflect.MessageDescriptor {
	if s == nil {
		return map[string]protoreflect.MessageDescriptor{}
	}
	return maps.Clone(s.byName)
}

// TypeNames maps every dotted proto type name (".pkg.Outer") to the key it is
// best looked up by: the alias when one was registered, else the canonical name.
func (s *Snapshot) TypeNames() map[string]string {
	if s == nil {
		return map[string]string{}
	}
	return maps.Clone(s.typeNames)
}

// Types resolves the dynamic enum, message and extension types of the set.
// The returned registry must not be modified.
func (s *Snapshot) Types() *protoregistry.Types {
	if s == nil || s.types == nil {
		return new(protoregistry.Types)
	}
	return s.types
}

// Names returns every key, sorted.
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.byName))
}

// Len is the number of keys in the index.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byName)
}
