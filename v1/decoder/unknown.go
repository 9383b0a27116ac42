package decoder

import (
	"errors"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// hasUnknownFields reports whether m, or any message nested in it, holds
// fields its descriptor does not define.
func hasUnknownFields(m protoreflect.ProtoMessage) bool {
	return messageHasUnknown(m.ProtoReflect())
}

func messageHasUnknown(m protoreflect.Message) bool {
	if len(m.GetUnknown()) > 0 {
		return true
	}

	found := false
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		switch {
		case fd.IsMap():
			if fd.MapValue().Message() == nil {
				return true
			}
			v.Map().Range(func(_ protoreflect.MapKey, mv protoreflect.Value) bool {
				found = messageHasUnknown(mv.Message())
				return !found
			})
		case fd.IsList():
			if fd.Message() == nil {
				return true
			}
			list := v.List()
			for i := 0; i < list.Len() && !found; i++ {
				found = messageHasUnknown(list.Get(i).Message())
			}
		case fd.Message() != nil:
			found = messageHasUnknown(v.Message())
		}
		return !found
	})
	return found
}

func isInvalidMessage(err error) bool {
	return errors.Is(err, ErrInvalidMessage)
}
