package client

import (
	"context"
	"strings"
	"sync"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	"github.com/Aleph-Alpha/schemacache/v1/registry"
)

// LocalResolver maps a name to a descriptor compiled into the program.
type LocalResolver func(name string) (protoreflect.MessageDescriptor, bool)

// GlobalResolver resolves names against protoregistry.GlobalFiles, where
// generated Go code registers its descriptors.
func GlobalResolver() LocalResolver {
	return func(name string) (protoreflect.MessageDescriptor, bool) {
		fullName := protoreflect.FullName(strings.TrimPrefix(name, "."))
		if !fullName.IsValid() {
			return nil, false
		}
		d, err := protoregistry.GlobalFiles.FindDescriptorByName(fullName)
		if err != nil {
			return nil, false
		}
		md, ok := d.(protoreflect.MessageDescriptor)
		return md, ok
	}
}

// StaticResolver resolves exactly the given descriptors by full name.
func StaticResolver(descriptors ...protoreflect.MessageDescriptor) LocalResolver {
	byName := make(map[string]protoreflect.MessageDescriptor, len(descriptors))
	for _, md := range descriptors {
		byName[string(md.FullName())] = md
	}
	return func(name string) (protoreflect.MessageDescriptor, bool) {
		md, ok := byName[strings.TrimPrefix(name, ".")]
		return md, ok
	}
}

// LocalClient serves descriptors linked into the program. Successful
// lookups are memoized. Only Get and Close are supported.
type LocalClient struct {
	resolve LocalResolver

	mu   sync.RWMutex
	memo map[string]protoreflect.MessageDescriptor
}

var _ Client = (*LocalClient)(nil)

// NewLocalClient returns a LocalClient over resolve; nil means GlobalResolver.
func NewLocalClient(resolve LocalResolver) *LocalClient {
	if resolve == nil {
		resolve = GlobalResolver()
	}
	return &LocalClient{
		resolve: resolve,
		memo:    make(map[string]protoreflect.MessageDescriptor),
	}
}

// Get implements Client. It never returns an error.
func (l *LocalClient) Get(_ context.Context, name string) (protoreflect.MessageDescriptor, bool, error) {
	l.mu.RLock()
	md, ok := l.memo[name]
	l.mu.RUnlock()
	if ok {
		return md, true, nil
	}

	md, ok = l.resolve(name)
	if !ok || md == nil {
		return nil, false, nil
	}

	l.mu.Lock()
	l.memo[name] = md
	l.mu.Unlock()
	return md, true, nil
}

// GetAll is not supported.
func (l *LocalClient) GetAll(context.Context) (map[string]protoreflect.MessageDescriptor, error) {
	return nil, ErrUnsupportedOperation
}

// GetTypeNameToPackageNameMap is not supported.
func (l *LocalClient) GetTypeNameToPackageNameMap(context.Context) (map[string]string, error) {
	return nil, ErrUnsupportedOperation
}

// GetTypeResolver returns protoregistry.GlobalTypes, where generated Go code
// registers its message and extension types.
func (l *LocalClient) GetTypeResolver(context.Context) (registry.TypeResolver, error) {
	return protoregistry.GlobalTypes, nil
}

// Refresh is not supported.
func (l *LocalClient) Refresh(context.Context) error {
	return ErrUnsupportedOperation
}

// Close does nothing.
func (l *LocalClient) Close() error {
	return nil
}
