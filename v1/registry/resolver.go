package registry

import (
	"errors"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

// ResolverChain consults its resolvers in order and returns the first hit.
// Errors other than protoregistry.NotFound stop the search.
type ResolverChain []TypeResolver

var _ TypeResolver = ResolverChain(nil)

func (c ResolverChain) FindExtensionByName(field protoreflect.FullName) (protoreflect.ExtensionType, error) {
	return first(c, func(r TypeResolver) (protoreflect.ExtensionType, error) {
		return r.FindExtensionByName(field)
	})
}

func (c ResolverChain) FindExtensionByNumber(message protoreflect.FullName, field protoreflect.FieldNumber) (protoreflect.ExtensionType, error) {
	return first(c, func(r TypeResolver) (protoreflect.ExtensionType, error) {
		return r.FindExtensionByNumber(message, field)
	})
}

func (c ResolverChain) FindMessageByName(message protoreflect.FullName) (protoreflect.MessageType, error) {
	return first(c, func(r TypeResolver) (protoreflect.MessageType, error) {
		return r.FindMessageByName(message)
	})
}

func (c ResolverChain) FindMessageByURL(url string) (protoreflect.MessageType, error) {
	return first(c, func(r TypeResolver) (protoreflect.MessageType, error) {
		return r.FindMessageByURL(url)
	})
}

func first[T any](c ResolverChain, find func(TypeResolver) (T, error)) (T, error) {
	var zero T
	for _, r := range c {
		t, err := find(r)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, protoregistry.NotFound) {
			return zero, err
		}
	}
	return zero, protoregistry.NotFound
}
